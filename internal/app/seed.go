package app

import (
	"context"
	"fmt"

	"smart-grocery/internal/datemath"
)

type sampleItem struct {
	name          string
	category      string
	purchaseDate  string
	shelfLifeDays int
}

var sampleItems = []sampleItem{
	{"milk", "dairy", "2025-10-30", 10},
	{"white bread", "bakery", "2025-11-01", 4},
	{"cereal", "breakfast", "2025-11-02", 180},
}

var sampleBaskets = [][]string{
	{"milk", "cereal", "banana"},
	{"white bread", "jam", "butter"},
	{"milk", "cookies"},
	{"white bread", "peanut butter"},
	{"milk", "cereal"},
}

// SeedReport counts what Seed inserted.
type SeedReport struct {
	Items   int
	Baskets int
}

// Seed loads the sample inventory and basket history. Each part is skipped
// when it already holds data, so running it twice is harmless.
func (a *App) Seed(ctx context.Context) (SeedReport, error) {
	var report SeedReport

	if len(a.Inventory.List()) == 0 {
		for _, s := range sampleItems {
			if _, err := a.Inventory.Add(ctx, s.name, s.category, datemath.MustParseDate(s.purchaseDate), s.shelfLifeDays); err != nil {
				return report, fmt.Errorf("failed to seed item %q: %w", s.name, err)
			}
			report.Items++
		}
	} else {
		a.logger.Info("inventory not empty, skipping sample items")
	}

	if a.Journal.Model().Baskets() == 0 {
		for _, b := range sampleBaskets {
			if _, err := a.Journal.Record(ctx, b); err != nil {
				return report, fmt.Errorf("failed to seed basket %v: %w", b, err)
			}
			report.Baskets++
		}
	} else {
		a.logger.Info("basket history not empty, skipping sample baskets")
	}

	return report, nil
}
