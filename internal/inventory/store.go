// Package inventory owns the household's grocery items and answers expiry
// questions about them.
package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"smart-grocery/internal/datemath"
	"smart-grocery/internal/shared"
)

// Store is the authoritative in-memory view of the inventory, written
// through to a Repository. Mutations hold the write lock for the whole
// repository round trip, so readers never observe a half-applied change and
// a failed write leaves the store untouched.
type Store struct {
	mu    sync.RWMutex
	repo  Repository
	clock datemath.Clock
	items map[int64]Item
	order []int64
}

// NewStore creates an empty Store. Call Load to pick up persisted items.
func NewStore(repo Repository, clock datemath.Clock) *Store {
	if clock == nil {
		clock = datemath.SystemClock{}
	}
	return &Store{
		repo:  repo,
		clock: clock,
		items: make(map[int64]Item),
	}
}

// Load replaces the in-memory state with the repository contents.
func (s *Store) Load(ctx context.Context) error {
	items, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[int64]Item, len(items))
	s.order = make([]int64, 0, len(items))
	for _, it := range items {
		s.items[it.ID] = it
		s.order = append(s.order, it.ID)
	}
	return nil
}

// Add validates and stores a new item and returns it with its id and
// expiry date filled in.
func (s *Store) Add(ctx context.Context, name, category string, purchaseDate datemath.Date, shelfLifeDays int) (Item, error) {
	it := Item{
		Name:          strings.TrimSpace(name),
		Category:      strings.TrimSpace(category),
		PurchaseDate:  purchaseDate,
		ShelfLifeDays: shelfLifeDays,
	}
	if err := validate(it); err != nil {
		return Item{}, err
	}
	it.recompute()

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.repo.Insert(ctx, it)
	if err != nil {
		return Item{}, fmt.Errorf("failed to add item: %w", err)
	}
	it.ID = id
	s.items[id] = it
	s.order = append(s.order, id)
	return it, nil
}

// Get returns the item with the given id.
func (s *Store) Get(id int64) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return Item{}, shared.NewNotFoundError("item", id)
	}
	return it, nil
}

// Update applies a partial change to an existing item. The id never
// changes and the expiry date is recomputed.
func (s *Store) Update(ctx context.Context, id int64, patch Patch) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[id]
	if !ok {
		return Item{}, shared.NewNotFoundError("item", id)
	}
	updated := patch.apply(current)
	if err := validate(updated); err != nil {
		return Item{}, err
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return Item{}, fmt.Errorf("failed to update item: %w", err)
	}
	s.items[id] = updated
	return updated, nil
}

// Remove deletes the item with the given id. Removing an unknown or already
// removed id fails with a NotFoundError.
func (s *Store) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return shared.NewNotFoundError("item", id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns every item in insertion order.
func (s *Store) List() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.items[id])
	}
	return items
}

// ExpiringWithin returns the items whose expiry date falls in
// [today, today+days], earliest expiry first. Items expiring on the same day
// keep insertion order.
func (s *Store) ExpiringWithin(days int) ([]Item, error) {
	if days < 0 {
		return nil, shared.NewValidationError("days", "must not be negative")
	}
	today := s.clock.Today()

	var expiring []Item
	for _, it := range s.List() {
		if datemath.WithinHorizon(it.ExpiryDate, today, days) {
			expiring = append(expiring, it)
		}
	}
	sort.SliceStable(expiring, func(i, j int) bool {
		return expiring[i].ExpiryDate.Before(expiring[j].ExpiryDate)
	})
	return expiring, nil
}

// DaysLeft returns the number of days until it expires, negative once
// expired.
func (s *Store) DaysLeft(it Item) int {
	return s.clock.Today().DaysUntil(it.ExpiryDate)
}

// Today returns the store's notion of the current date.
func (s *Store) Today() datemath.Date {
	return s.clock.Today()
}
