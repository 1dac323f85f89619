package cooccurrence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MemoryBasketRepository keeps basket history in process memory.
type MemoryBasketRepository struct {
	mu      sync.Mutex
	baskets [][]string
}

// NewMemoryBasketRepository creates an empty MemoryBasketRepository.
func NewMemoryBasketRepository() *MemoryBasketRepository {
	return &MemoryBasketRepository{}
}

func (r *MemoryBasketRepository) Append(_ context.Context, basket []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baskets = append(r.baskets, append([]string(nil), basket...))
	return int64(len(r.baskets)), nil
}

func (r *MemoryBasketRepository) All(_ context.Context) ([][]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([][]string, len(r.baskets))
	for i, b := range r.baskets {
		out[i] = append([]string(nil), b...)
	}
	return out, nil
}

// SQLBasketRepository stores baskets as JSON arrays in the baskets table.
type SQLBasketRepository struct {
	db     *sql.DB
	logger logrus.FieldLogger
}

// NewSQLBasketRepository creates a new SQLBasketRepository. Undecodable rows
// are reported to logger.
func NewSQLBasketRepository(d *sql.DB, logger logrus.FieldLogger) *SQLBasketRepository {
	return &SQLBasketRepository{db: d, logger: logger}
}

// Append inserts a basket and returns its id.
func (r *SQLBasketRepository) Append(ctx context.Context, basket []string) (int64, error) {
	basketJSON, err := json.Marshal(basket)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal basket: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO baskets (basket_json, recorded_at) VALUES (?, ?)`,
		string(basketJSON), time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert basket: %w", err)
	}
	return res.LastInsertId()
}

// All returns every stored basket. Rows that fail to decode are skipped.
func (r *SQLBasketRepository) All(ctx context.Context) ([][]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, basket_json FROM baskets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list baskets: %w", err)
	}
	defer rows.Close()

	var baskets [][]string
	for rows.Next() {
		var (
			id  int64
			raw string
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan basket: %w", err)
		}
		var basket []string
		if err := json.Unmarshal([]byte(raw), &basket); err != nil {
			r.logger.WithError(err).WithField("basketID", id).Warn("skipping undecodable basket")
			continue
		}
		baskets = append(baskets, basket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate baskets: %w", err)
	}
	return baskets, nil
}
