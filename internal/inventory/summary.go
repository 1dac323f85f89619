package inventory

import (
	"smart-grocery/internal/datemath"
	"smart-grocery/internal/shared"
)

// Summary is the dashboard overview of the inventory.
type Summary struct {
	Total        int            `json:"total"`
	Expired      int            `json:"expired"`
	ExpiringSoon int            `json:"expiringSoon"`
	ByCategory   map[string]int `json:"byCategory"`
}

// UncategorizedLabel groups items with an empty category.
const UncategorizedLabel = "uncategorized"

// Summarize counts items that already expired and items expiring within the
// given horizon.
func (s *Store) Summarize(days int) (Summary, error) {
	if days < 0 {
		return Summary{}, shared.NewValidationError("days", "must not be negative")
	}
	today := s.clock.Today()

	sum := Summary{ByCategory: make(map[string]int)}
	for _, it := range s.List() {
		sum.Total++
		switch {
		case it.ExpiryDate.Before(today):
			sum.Expired++
		case datemath.WithinHorizon(it.ExpiryDate, today, days):
			sum.ExpiringSoon++
		}
		category := it.Category
		if category == "" {
			category = UncategorizedLabel
		}
		sum.ByCategory[category]++
	}
	return sum, nil
}
