package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"foodreview/analyzer-service/internal/app/analyzer/infrastructure"
	"foodreview/pkg/logger"
)

type adapterState int

const (
	stateUninitialized adapterState = iota
	stateReady
	stateUnavailable
)

func (s adapterState) String() string {
	switch s {
	case stateReady:
		return "ready"
	case stateUnavailable:
		return "unavailable"
	default:
		return "uninitialized"
	}
}

type adapterEntry struct {
	state    adapterState
	instance interface{}
	err      error // причина недоступности
}

// AdapterRegistry хранит лениво созданные адаптеры моделей по имени.
// Инициализация каждого адаптера выполняется не более одного раза за жизнь реестра,
// неудача кешируется как unavailable и не повторяется.
type AdapterRegistry struct {
	mu      sync.Mutex
	entries map[string]*adapterEntry
}

func NewAdapterRegistry() *AdapterRegistry {
	return &AdapterRegistry{entries: make(map[string]*adapterEntry)}
}

var defaultRegistry = NewAdapterRegistry()

// DefaultRegistry общий реестр процесса
func DefaultRegistry() *AdapterRegistry {
	return defaultRegistry
}

// Resolve возвращает готовый экземпляр или ErrAdapterUnavailable.
// Конкурентные вызовы ждут на мьютексе и видят только итоговое состояние.
func (r *AdapterRegistry) Resolve(ctx context.Context, name string, init func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[name]; ok {
		switch entry.state {
		case stateReady:
			return entry.instance, nil
		case stateUnavailable:
			return nil, infrastructure.ErrAdapterUnavailable
		}
	}

	// Отмена запроса не должна навсегда пометить адаптер недоступным
	instance, err := init(context.WithoutCancel(ctx))
	if err == nil && instance == nil {
		err = errors.New("adapter init returned nil instance")
	}
	if err != nil {
		r.entries[name] = &adapterEntry{state: stateUnavailable, err: err}

		event := logger.Warn()
		if errors.Is(err, infrastructure.ErrAdapterUnavailable) {
			event = logger.Info()
		}
		event.Err(err).Str("adapter", name).Msg("Adapter marked unavailable")
		return nil, infrastructure.ErrAdapterUnavailable
	}

	r.entries[name] = &adapterEntry{state: stateReady, instance: instance}
	logger.Info().Str("adapter", name).Msg("Adapter initialized")
	return instance, nil
}

// State сообщает текущее состояние адаптера: uninitialized, ready или unavailable
func (r *AdapterRegistry) State(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[name]; ok {
		return entry.state.String()
	}
	return stateUninitialized.String()
}

// States снимок состояний всех известных адаптеров
func (r *AdapterRegistry) States() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	states := make(map[string]string, len(r.entries))
	for name, entry := range r.entries {
		states[name] = entry.state.String()
	}
	return states
}

// resolveAs типизированная обёртка над Resolve
func resolveAs[T any](ctx context.Context, r *AdapterRegistry, name string, init func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	instance, err := r.Resolve(ctx, name, func(ctx context.Context) (interface{}, error) {
		v, err := init(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("adapter %s has unexpected type %T", name, instance)
	}
	return typed, nil
}
