// Package memkv is an in-process kv.Medium, used for tests and the "memory" storage driver.
package memkv

import (
	"context"
	"sync"

	"github.com/365cent/grade-tracker/storage/kv"
)

type Medium struct {
	mu    sync.RWMutex
	table map[string][]byte
}

var _ kv.Medium = (*Medium)(nil)

func New() *Medium {
	return &Medium{table: make(map[string][]byte)}
}

func (m *Medium) Get(_ context.Context, keys ...string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if val, ok := m.table[key]; ok {
			res[key] = val
		}
	}
	return kv.Clone(res), nil
}

func (m *Medium) Put(_ context.Context, entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, val := range kv.Clone(entries) {
		m.table[key] = val
	}
	return nil
}

func (m *Medium) Close() error { return nil }
