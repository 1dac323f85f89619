package inventory

import (
	"context"
	"sort"
	"sync"

	"smart-grocery/internal/shared"
)

// Repository persists inventory items. Implementations assign ids on Insert
// and must never hand out an id twice.
type Repository interface {
	Insert(ctx context.Context, item Item) (int64, error)
	Update(ctx context.Context, item Item) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Item, error)
}

// MemoryRepository keeps items in process memory.
type MemoryRepository struct {
	mu     sync.Mutex
	items  map[int64]Item
	nextID int64
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[int64]Item)}
}

// Verify interface compliance
var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) Insert(_ context.Context, item Item) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	return item.ID, nil
}

func (r *MemoryRepository) Update(_ context.Context, item Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return shared.NewNotFoundError("item", item.ID)
	}
	r.items[item.ID] = item
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return shared.NewNotFoundError("item", id)
	}
	delete(r.items, id)
	return nil
}

// List returns all items ordered by id.
func (r *MemoryRepository) List(_ context.Context) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]Item, 0, len(r.items))
	for _, it := range r.items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}
