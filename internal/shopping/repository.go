package shopping

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"smart-grocery/internal/shared"
)

// Store persists shopping list entries.
type Store interface {
	Save(ctx context.Context, e Entry) (int64, error)
	List(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, id int64) error
}

// Repository handles persistence of shopping list entries in SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Verify interface compliance
var _ Store = (*Repository)(nil)

// Save inserts an entry and returns its id.
func (r *Repository) Save(ctx context.Context, e Entry) (int64, error) {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO shopping_list (name, requested, created_at) VALUES (?, ?, ?)`,
		e.Name, e.Requested, createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shopping list entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read shopping list entry id: %w", err)
	}
	return id, nil
}

// List returns all entries in insertion order.
func (r *Repository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, requested, created_at FROM shopping_list ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping list: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Requested, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shopping list entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes an entry by id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shopping_list WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shopping list entry %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return shared.NewNotFoundError("shopping list entry", id)
	}
	return nil
}

// MemoryRepository keeps the shopping list in process memory.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []Entry
	nextID  int64
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Verify interface compliance
var _ Store = (*MemoryRepository)(nil)

func (r *MemoryRepository) Save(_ context.Context, e Entry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	e.ID = r.nextID
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	r.entries = append(r.entries, e)
	return e.ID, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return shared.NewNotFoundError("shopping list entry", id)
}
