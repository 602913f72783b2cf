package service

import (
	"context"
	"sync"
	"time"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
	"foodreview/analyzer-service/internal/app/analyzer/infrastructure"
)

type fakeSentimentModel struct {
	label    entity.ModelLabel
	err      error
	received string
}

func (f *fakeSentimentModel) Classify(ctx context.Context, text string) (entity.ModelLabel, error) {
	f.received = text
	return f.label, f.err
}

type fakeSummaryModel struct {
	summary string
	err     error
}

func (f *fakeSummaryModel) Summarize(ctx context.Context, text string) (string, error) {
	return f.summary, f.err
}

type fakeGenerator struct {
	out    string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.out, f.err
}

func classifierInit(m infrastructure.SentimentModel, err error) ClassifierInit {
	return func(ctx context.Context) (infrastructure.SentimentModel, error) { return m, err }
}

func summarizerInit(m infrastructure.SummaryModel, err error) SummarizerInit {
	return func(ctx context.Context) (infrastructure.SummaryModel, error) { return m, err }
}

func generatorInit(g infrastructure.TextGenerator, err error) GeneratorInit {
	return func(ctx context.Context) (infrastructure.TextGenerator, error) { return g, err }
}

// unavailablePipeline все продвинутые адаптеры недоступны
func unavailablePipeline(maxPoints int) *Pipeline {
	registry := NewAdapterRegistry()
	return NewPipeline(
		NewLocalClassifierAdapter(registry, classifierInit(nil, infrastructure.ErrAdapterUnavailable)),
		NewGenerativeStrategy(NewGenerativeAdapter(registry, generatorInit(nil, infrastructure.ErrAdapterUnavailable)), maxPoints),
		NewSummarizerStrategy(NewLocalSummarizerAdapter(registry, summarizerInit(nil, infrastructure.ErrAdapterUnavailable)), maxPoints),
		NewNaiveSplitStrategy(maxPoints),
	)
}

// memoryRepository хранилище в памяти. GetAll можно задержать после снимка.
type memoryRepository struct {
	mu      sync.Mutex
	reviews []entity.Review
	nextID  int64
	calls   int
	entered chan struct{}
	release chan struct{}
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{}
}

// holdNextGetAll следующий GetAll сообщит о снимке в entered и дождётся release
func (r *memoryRepository) holdNextGetAll() (entered chan struct{}, release chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entered = make(chan struct{})
	r.release = make(chan struct{})
	return r.entered, r.release
}

func (r *memoryRepository) getAllCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *memoryRepository) Migrate(ctx context.Context) error {
	return nil
}

func (r *memoryRepository) Create(ctx context.Context, review *entity.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	review.ID = r.nextID
	review.CreatedAt = time.Now().UTC()
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *memoryRepository) GetAll(ctx context.Context) ([]entity.Review, error) {
	r.mu.Lock()
	r.calls++
	snapshot := make([]entity.Review, 0, len(r.reviews))
	for i := len(r.reviews) - 1; i >= 0; i-- {
		snapshot = append(snapshot, r.reviews[i])
	}
	entered, release := r.entered, r.release
	r.entered, r.release = nil, nil
	r.mu.Unlock()

	if entered != nil {
		close(entered)
		<-release
	}
	return snapshot, nil
}

func (r *memoryRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.reviews)), nil
}

func (r *memoryRepository) CountBySentiment(ctx context.Context) (map[entity.Sentiment]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[entity.Sentiment]int64)
	for _, review := range r.reviews {
		counts[review.Sentiment]++
	}
	return counts, nil
}

func (r *memoryRepository) Ping(ctx context.Context) error {
	return nil
}
