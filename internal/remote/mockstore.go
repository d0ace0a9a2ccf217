package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
)

// MockStore is an in-memory Store used by tests across packages. Listing is
// paginated with a configurable page size so pagination handling can be
// exercised without a bucket.
type MockStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	PageSize int

	// GetCalls counts Get invocations per key, for idempotency assertions.
	GetCalls map[string]int

	// ListErr and GetErr, when set, are returned verbatim.
	ListErr error
	GetErr  error
}

// NewMockStore returns an empty store with the given listing page size.
func NewMockStore(pageSize int) *MockStore {
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &MockStore{
		objects:  make(map[string][]byte),
		PageSize: pageSize,
		GetCalls: make(map[string]int),
	}
}

// Put stores an object.
func (m *MockStore) Put(key string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), body...)
}

// Delete removes an object.
func (m *MockStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
}

func (m *MockStore) List(_ context.Context, prefix, continuationToken string) (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return Page{}, m.ListErr
	}

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if continuationToken != "" {
		n, err := strconv.Atoi(continuationToken)
		if err != nil {
			return Page{}, fmt.Errorf("bad continuation token %q", continuationToken)
		}
		start = n
	}
	if start >= len(keys) {
		return Page{}, nil
	}

	end := start + m.PageSize
	if end > len(keys) {
		end = len(keys)
	}

	page := Page{Keys: keys[start:end]}
	if end < len(keys) {
		page.NextToken = strconv.Itoa(end)
	}
	return page, nil
}

func (m *MockStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}

	body, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key: %s", key)
	}
	m.GetCalls[key]++
	return io.NopCloser(bytes.NewReader(body)), nil
}
