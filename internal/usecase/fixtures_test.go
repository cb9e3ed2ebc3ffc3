package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/concierge/backend/internal/domain"
)

func strPtr(s string) *string { return &s }

func record(name, description string, price any) domain.Node {
	fields := []domain.Field{{Key: "name", Value: domain.ScalarNode(name)}}
	if description != "" {
		fields = append(fields, domain.Field{Key: "description", Value: domain.ScalarNode(description)})
	}
	if price != nil {
		fields = append(fields, domain.Field{Key: "price", Value: domain.ScalarNode(price)})
	}
	return domain.MapNode(fields...)
}

// sampleEntries covers every container shape
func sampleEntries() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		domain.NewCatalogEntry("Snoonu Gifts", strPtr("Music Hub"), domain.ListNode(
			record("Fender Strat", "Electric guitar for music lovers", 4500.0),
			record("Blueberry Cake", "Cake topped with fresh blueberries", 120.0),
		)),
		domain.NewCatalogEntry("Events", nil, record("Fällä Boat Trip", "Private boat event at sunset", 900.0)),
		domain.NewCatalogEntry("Snoonu Market", nil, domain.MapNode(
			domain.Field{Key: "Guitars", Value: domain.ListNode(record("Acoustic Guitar", "", 800.0))},
			domain.Field{Key: "Bakery", Value: record("Chocolate Cake", "Vanilla sponge with chocolate", 150.0)},
		)),
		domain.NewCatalogEntry("Laundry", nil, domain.ListNode(record("Thobe Wash", "Washing and ironing", nil))),
	}
}

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu        sync.Mutex
	data      map[string][]byte
	getError  error
	setError  error
	getCalled bool
	setCalled bool
	lastTTL   time.Duration
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalled = true
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalled = true
	m.lastTTL = ttl
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// MockAssistant is a mock implementation of domain.Assistant
type MockAssistant struct {
	response    *domain.ChatResponse
	err         error
	calls       int
	lastRequest domain.AssistantRequest
}

func (m *MockAssistant) Respond(ctx context.Context, request domain.AssistantRequest) (*domain.ChatResponse, error) {
	m.calls++
	m.lastRequest = request
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

// MockMetrics records observations
type MockMetrics struct {
	searches []int
	outcomes []string
	hits     int
	misses   int
}

func (m *MockMetrics) ObserveSearch(keywords, matches int, elapsed time.Duration) {
	m.searches = append(m.searches, matches)
}

func (m *MockMetrics) ObserveChat(outcome string, elapsed time.Duration) {
	m.outcomes = append(m.outcomes, outcome)
}

func (m *MockMetrics) ObserveCache(hit bool) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}
