package cooccurrence

import (
	"context"
	"fmt"
	"sync"

	"smart-grocery/internal/shared"
)

// BasketRepository stores the append-only basket history.
type BasketRepository interface {
	Append(ctx context.Context, basket []string) (int64, error)
	All(ctx context.Context) ([][]string, error)
}

// Journal records baskets durably and feeds them into a Model.
type Journal struct {
	mu    sync.Mutex
	repo  BasketRepository
	model *Model
}

// NewJournal creates a Journal writing to repo and updating model.
func NewJournal(repo BasketRepository, model *Model) *Journal {
	return &Journal{repo: repo, model: model}
}

// Model returns the affinity table fed by this journal.
func (j *Journal) Model() *Model {
	return j.model
}

// Record normalizes, stores and observes a basket. A basket that is empty
// after normalization is rejected. Nothing is observed if storing fails.
func (j *Journal) Record(ctx context.Context, basket []string) (int64, error) {
	names := NormalizeBasket(basket)
	if len(names) == 0 {
		return 0, shared.NewValidationError("basket", "must contain at least one item name")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	id, err := j.repo.Append(ctx, names)
	if err != nil {
		return 0, fmt.Errorf("failed to record basket: %w", err)
	}
	j.model.Observe(names)
	return id, nil
}

// Replay rebuilds the model from every stored basket and returns how many
// were read.
func (j *Journal) Replay(ctx context.Context) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	baskets, err := j.repo.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read basket history: %w", err)
	}
	j.model.Rebuild(baskets)
	return len(baskets), nil
}
