package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is a Store kept in a map. Values are stored encoded so that
// callers never share memory with the store.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
	sets map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string][]byte),
		sets: make(map[string]int),
	}
}

func (m *Memory) Get(ctx context.Context, key string, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("failed to decode key '%v': %w", key, err)
	}
	return true, nil
}

func (m *Memory) Set(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode key '%v': %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	m.sets[key]++
	return nil
}

func (m *Memory) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// SetCount returns how many times key has been written.
func (m *Memory) SetCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[key]
}
