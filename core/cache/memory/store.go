// Package memory is an in-process LRU cache.Store.
package memory

import (
	"container/list"
	"context"
	"sync"

	"github.com/gaurav-prasanna/texpipe/core"
)

// DefaultCapacity is used when New gets a non-positive capacity.
const DefaultCapacity = 1024

// Store evicts the least recently used entry once full. It is safe for
// concurrent use.
type Store struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	lru      *list.List // front = most recent
}

type entry struct {
	key string
	out core.Typeset
}

// New creates a store holding at most capacity entries.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

func (s *Store) Get(_ context.Context, key string) (core.Typeset, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return core.Typeset{}, false, nil
	}
	s.lru.MoveToFront(el)
	return el.Value.(*entry).out, true, nil
}

func (s *Store) Put(_ context.Context, key string, out core.Typeset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		el.Value.(*entry).out = out
		s.lru.MoveToFront(el)
		return nil
	}
	s.entries[key] = s.lru.PushFront(&entry{key: key, out: out})
	for s.lru.Len() > s.capacity {
		oldest := s.lru.Back()
		s.lru.Remove(oldest)
		delete(s.entries, oldest.Value.(*entry).key)
	}
	return nil
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

func (s *Store) Close() error { return nil }
