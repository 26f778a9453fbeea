package item

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when an item ID is not present in a store.
var ErrNotFound = errors.New("item not found")

// Store is the item persistence boundary consumed by the scheduler. It only
// needs read-all, read-by-topic and per-item partial update. Concurrent
// writers are not coordinated: the last write to an item wins.
type Store interface {
	// GetAll returns every item in the pool.
	GetAll(ctx context.Context) ([]Item, error)

	// GetByTopic returns the items of a single topic.
	GetByTopic(ctx context.Context, topic string) ([]Item, error)

	// Update applies a partial update to one item.
	Update(ctx context.Context, id string, patch Patch) error
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	TimesAttempted  *int
	CorrectAttempts *int
	LastAttemptedAt *time.Time
	State           *State
}

// Apply writes the non-nil patch fields onto it.
func (p Patch) Apply(it *Item) {
	if p.TimesAttempted != nil {
		it.TimesAttempted = *p.TimesAttempted
	}
	if p.CorrectAttempts != nil {
		it.CorrectAttempts = *p.CorrectAttempts
	}
	if p.LastAttemptedAt != nil {
		it.LastAttemptedAt = cloneTime(p.LastAttemptedAt)
	}
	if p.State != nil {
		it.State = p.State.Normalize().clone()
	}
}

// MemStore is an in-memory Store. It keeps items in insertion order.
type MemStore struct {
	mu    sync.RWMutex
	items map[string]*Item
	order []string
}

// NewMemStore creates a MemStore seeded with items.
func NewMemStore(items ...Item) *MemStore {
	s := &MemStore{items: make(map[string]*Item)}
	s.Put(items...)
	return s
}

// Put inserts or replaces items.
func (s *MemStore) Put(items ...Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		c := it.Clone()
		c.State = c.State.OrDefault()
		if _, ok := s.items[it.ID]; !ok {
			s.order = append(s.order, it.ID)
		}
		s.items[it.ID] = &c
	}
}

// Get returns one item by ID.
func (s *MemStore) Get(id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return Item{}, false
	}
	return it.Clone(), true
}

func (s *MemStore) GetAll(_ context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out, nil
}

func (s *MemStore) GetByTopic(_ context.Context, topic string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Item
	for _, id := range s.order {
		if it := s.items[id]; it.Topic == topic {
			out = append(out, it.Clone())
		}
	}
	return out, nil
}

func (s *MemStore) Update(_ context.Context, id string, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}
	patch.Apply(it)
	return nil
}

// ResetStates clears every item's aggregates and learning state.
func (s *MemStore) ResetStates(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		it.TimesAttempted = 0
		it.CorrectAttempts = 0
		it.LastAttemptedAt = nil
		it.State = DefaultState()
	}
	return nil
}

// SortByID orders items by ID in place.
func SortByID(items []Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
