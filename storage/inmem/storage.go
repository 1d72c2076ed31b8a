package inmemstore

import (
	"context"
	"sync"

	"github.com/trezcool/gyaanbuddy/core"
)

type Storage struct {
	mutex sync.RWMutex
	table map[string]string
}

var _ core.LocalStorage = (*Storage)(nil)

func New() *Storage {
	return &Storage{table: make(map[string]string)}
}

func (s *Storage) Get(_ context.Context, key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.table[key], nil
}

func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.table[key] = value
	return nil
}

func (s *Storage) Remove(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.table, key)
	return nil
}

func (s *Storage) Close() error { return nil }
