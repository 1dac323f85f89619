package shopping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smart-grocery/internal/shared"
	"smart-grocery/internal/substitution"
)

// Suggester finds a healthier alternative for an item.
type Suggester interface {
	Suggest(ctx context.Context, itemName string) (substitution.Suggestion, error)
}

// List is the shopping list service. Every added item is checked for a
// healthier alternative first.
type List struct {
	store     Store
	suggester Suggester
	now       func() time.Time
}

// NewList creates a List over store.
func NewList(store Store, suggester Suggester) *List {
	return &List{
		store:     store,
		suggester: suggester,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Add puts name on the list. When acceptAlternative is true and an
// alternative exists, the alternative is stored instead.
func (l *List) Add(ctx context.Context, name string, acceptAlternative bool) (AddResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return AddResult{}, shared.NewValidationError("name", "must not be empty")
	}

	suggestion, err := l.suggester.Suggest(ctx, name)
	if err != nil {
		return AddResult{}, err
	}

	entry := Entry{Name: name, Requested: name, CreatedAt: l.now()}
	if acceptAlternative && suggestion.Alternative != nil {
		entry.Name = *suggestion.Alternative
	}

	id, err := l.store.Save(ctx, entry)
	if err != nil {
		return AddResult{}, fmt.Errorf("failed to save shopping list entry: %w", err)
	}
	entry.ID = id

	return AddResult{Entry: entry, Alternative: suggestion.Alternative}, nil
}

// Entries returns the list in insertion order.
func (l *List) Entries(ctx context.Context) ([]Entry, error) {
	return l.store.List(ctx)
}

// Remove deletes an entry; unknown ids yield a NotFoundError.
func (l *List) Remove(ctx context.Context, id int64) error {
	return l.store.Delete(ctx, id)
}
