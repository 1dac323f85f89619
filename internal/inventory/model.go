package inventory

import (
	"strings"

	"smart-grocery/internal/datemath"
	"smart-grocery/internal/shared"
)

// Item is a single grocery record in the household inventory.
// ExpiryDate is always derived from PurchaseDate and ShelfLifeDays.
type Item struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Category      string        `json:"category"`
	PurchaseDate  datemath.Date `json:"purchaseDate"`
	ShelfLifeDays int           `json:"shelfLifeDays"`
	ExpiryDate    datemath.Date `json:"expiryDate"`
}

// Patch describes a partial update. Nil fields are left unchanged.
type Patch struct {
	Name          *string
	Category      *string
	PurchaseDate  *datemath.Date
	ShelfLifeDays *int
}

func (it *Item) recompute() {
	it.ExpiryDate = datemath.Expiry(it.PurchaseDate, it.ShelfLifeDays)
}

func validate(it Item) error {
	if it.Name == "" {
		return shared.NewValidationError("name", "must not be empty")
	}
	if it.ShelfLifeDays < 0 {
		return shared.NewValidationError("shelfLifeDays", "must not be negative")
	}
	if it.PurchaseDate.IsZero() {
		return shared.NewValidationError("purchaseDate", "is required")
	}
	return nil
}

// apply returns a copy of it with the patch applied and expiry recomputed.
func (p Patch) apply(it Item) Item {
	if p.Name != nil {
		it.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		it.Category = strings.TrimSpace(*p.Category)
	}
	if p.PurchaseDate != nil {
		it.PurchaseDate = *p.PurchaseDate
	}
	if p.ShelfLifeDays != nil {
		it.ShelfLifeDays = *p.ShelfLifeDays
	}
	it.recompute()
	return it
}
