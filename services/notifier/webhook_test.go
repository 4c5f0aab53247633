package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sjmori/vacancywatcher/internal/checker"
	"sjmori/vacancywatcher/services/cache"
)

// MockLogger implements helpers.LoggerInterface for testing
type MockLogger struct{}

func (m *MockLogger) LogError(component string, err error)       {}
func (m *MockLogger) LogInfo(format string, args ...interface{}) {}

// MockCache implements cache.CacheService in memory for testing
type MockCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

var _ cache.CacheService = (*MockCache)(nil)

func NewMockCache() *MockCache {
	return &MockCache{items: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.items[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return value, nil
}

func (m *MockCache) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MockCache) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func testRecord() checker.AvailabilityRecord {
	return checker.AvailabilityRecord{
		Accommodation: "Magoemon",
		RoomType:      "8 Japanese Tatami mats (1 night stay (2025/7/1 - 2025/9/30))",
		Date:          "2025-08-01",
		Status:        checker.StatusAvailable,
		Price:         "JPY17,050",
		BookingURL:    "https://www3.489pro.com/asp/489/menu.asp?id=21450001&ty=ser",
		DiscoveredAt:  time.Now(),
	}
}

func TestWebhookNotifierDelivers(t *testing.T) {
	var received checker.AvailabilityRecord
	var calls int
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		err := json.NewDecoder(r.Body).Decode(&received)
		assert.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, NewMockCache(), time.Hour, 3, &MockLogger{})

	record := testRecord()
	err := notifier.Notify(context.Background(), record)
	assert.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
	assert.Equal(t, record.Accommodation, received.Accommodation)
	assert.Equal(t, record.Date, received.Date)
	assert.Equal(t, record.Price, received.Price)
}

func TestWebhookNotifierSuppressesDuplicates(t *testing.T) {
	var calls int
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, NewMockCache(), time.Hour, 3, &MockLogger{})

	record := testRecord()
	assert.NoError(t, notifier.Notify(context.Background(), record))
	assert.NoError(t, notifier.Notify(context.Background(), record))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "second identical alert should be suppressed")
}

func TestWebhookNotifierRetriesOnServerError(t *testing.T) {
	var calls int
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, NewMockCache(), time.Hour, 3, &MockLogger{})

	err := notifier.Notify(context.Background(), testRecord())
	assert.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, calls)
}

func TestWebhookNotifierFailsAfterMaxRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, NewMockCache(), time.Hour, 1, &MockLogger{})

	err := notifier.Notify(context.Background(), testRecord())
	assert.Error(t, err)
}

func TestWebhookNotifierEmptyEndpoint(t *testing.T) {
	notifier := NewWebhookNotifier("", NewMockCache(), time.Hour, 3, &MockLogger{})
	assert.NoError(t, notifier.Notify(context.Background(), testRecord()))
}

func TestWebhookNotifierBatchContinuesPastFailures(t *testing.T) {
	var delivered []string
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var record checker.AvailabilityRecord
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&record))
		if record.Date == "2025-08-01" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		mu.Lock()
		delivered = append(delivered, record.Date)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, NewMockCache(), time.Hour, 1, &MockLogger{})

	first := testRecord()
	second := testRecord()
	second.Date = "2025-08-02"

	err := notifier.NotifyBatch(context.Background(), []checker.AvailabilityRecord{first, second})
	assert.Error(t, err, "first record fails")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"2025-08-02"}, delivered)
}
