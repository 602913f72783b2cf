package logger

import (
	"io"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var log = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init настраивает глобальный JSON логгер с полем service
func Init(serviceName string, level string) {
	log = build(os.Stdout, serviceName, level)
}

// InitWithWriter используется в тестах для перехвата вывода
func InitWithWriter(serviceName string, level string, w io.Writer) {
	log = build(w, serviceName, level)
}

// InitLogstash дублирует вывод в Logstash по TCP
func InitLogstash(addr string, serviceName string, level string) error {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return err
	}

	log = build(zerolog.MultiLevelWriter(os.Stdout, conn), serviceName, level)
	return nil
}

func build(w io.Writer, serviceName string, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}

// Component возвращает дочерний логгер с полем component (адаптеры, репозитории)
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
