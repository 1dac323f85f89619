package inventory

import (
	"context"
	"database/sql"
	"fmt"

	"smart-grocery/internal/shared"
)

// SQLRepository is a database-backed repository for inventory items.
// Ids come from an AUTOINCREMENT column, so a deleted id is never reused.
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository creates a new SQLRepository.
func NewSQLRepository(d *sql.DB) *SQLRepository {
	return &SQLRepository{db: d}
}

// Verify interface compliance
var _ Repository = (*SQLRepository)(nil)

// Insert stores a new item and returns its id.
func (r *SQLRepository) Insert(ctx context.Context, item Item) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO items (name, category, purchase_date, shelf_life_days, expiry_date) VALUES (?, ?, ?, ?, ?)`,
		item.Name, item.Category, item.PurchaseDate, item.ShelfLifeDays, item.ExpiryDate,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted item id: %w", err)
	}
	return id, nil
}

// Update overwrites every mutable column of an existing item.
func (r *SQLRepository) Update(ctx context.Context, item Item) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE items SET name = ?, category = ?, purchase_date = ?, shelf_life_days = ?, expiry_date = ? WHERE id = ?`,
		item.Name, item.Category, item.PurchaseDate, item.ShelfLifeDays, item.ExpiryDate, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, err)
	}
	return expectOneRow(res, item.ID)
}

// Delete removes an item by id.
func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

// List retrieves all items in insertion order.
func (r *SQLRepository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, category, purchase_date, shelf_life_days, expiry_date FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Category, &it.PurchaseDate, &it.ShelfLifeDays, &it.ExpiryDate); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		// The stored expiry is a cache; the derived value is authoritative.
		it.recompute()
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return shared.NewNotFoundError("item", id)
	}
	return nil
}
