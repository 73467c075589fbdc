package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/mdchunk/internal/pathstore"
)

// memStore is an in-memory Store. Keys are reported back with '.'
// separators the way pathstore does.
type memStore struct {
	mu    sync.Mutex
	nodes map[string]json.RawMessage
	links []pathstore.LinkRequest

	// fail maps a key to the errors returned by successive PutNode calls.
	fail map[string][]error
	puts map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		nodes: make(map[string]json.RawMessage),
		fail:  make(map[string][]error),
		puts:  make(map[string]int),
	}
}

func (m *memStore) PutNode(_ context.Context, key string, req pathstore.NodeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts[key]++
	if errs := m.fail[key]; len(errs) > 0 {
		m.fail[key] = errs[1:]
		return errs[0]
	}
	b, err := json.Marshal(req.Value)
	if err != nil {
		return err
	}
	m.nodes[key] = b
	return nil
}

func (m *memStore) GetNode(_ context.Context, key string) (*pathstore.NodeResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.nodes[key]
	if !ok {
		return nil, nil
	}
	return &pathstore.NodeResponse{Key: dotted(key), Value: v}, nil
}

func (m *memStore) DeleteNode(_ context.Context, key string, recursive bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.nodes, key)
	if recursive {
		for k := range m.nodes {
			if strings.HasPrefix(k, key+"/") {
				delete(m.nodes, k)
			}
		}
	}
	return nil
}

func (m *memStore) ListChildren(_ context.Context, key string, limit int) ([]pathstore.ListChildrenResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.nodes {
		if strings.HasPrefix(k, key+"/") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	out := make([]pathstore.ListChildrenResponse, 0, len(keys))
	for _, k := range keys {
		out = append(out, pathstore.ListChildrenResponse{Key: dotted(k), Value: m.nodes[k]})
	}
	return out, nil
}

func (m *memStore) PutLink(_ context.Context, req pathstore.LinkRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, req)
	return nil
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.nodes[key]
	return ok
}

func dotted(key string) string {
	return strings.ReplaceAll(key, "/", ".")
}

func unavailable(key string) error {
	return &pathstore.StatusError{Op: "put node", Key: key, Code: http.StatusServiceUnavailable}
}

func rejected(key string) error {
	return &pathstore.StatusError{Op: "put node", Key: key, Code: http.StatusBadRequest}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestPublisher(store Store) *Publisher {
	p := NewPublisher(store, 4, discardLogger())
	p.backoff = func(int) time.Duration { return 0 }
	return p
}
