package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xlml/bench-metrics/internal/abstractions"
	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/internal/tfevents"
)

// memStore is an in-memory object store keyed by full location.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) put(location string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[location] = data
}

func (m *memStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (m *memStore) Open(_ context.Context, location string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[location]
	if !ok {
		return nil, fmt.Errorf("%s: %w", location, abstractions.ErrObjectNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type sample struct {
	tag   string
	step  int64
	value float32
}

func eventFile(t *testing.T, samples ...sample) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := tfevents.NewWriter(&buf)
	for _, s := range samples {
		require.NoError(t, w.WriteScalar(s.tag, s.step, float64(1700000000+s.step), s.value))
	}
	return buf.Bytes()
}

func newContext() *executioncontext.ExecutionContext {
	return executioncontext.NewExecutionContext(context.Background(), "test", slog.New(slog.DiscardHandler))
}
