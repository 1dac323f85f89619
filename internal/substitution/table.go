package substitution

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// backendDefaults is the curated table served by the API.
var backendDefaults = map[string]string{
	"white bread":     "brown bread",
	"brown bread":     "whole grain bread",
	"full cream milk": "low fat milk",
	"sugar":           "honey",
	"white rice":      "brown rice",
	"fried chicken":   "grilled chicken",
}

// assistantDefaults is the broader snack and fast-food table. Entries that
// also appear in backendDefaults are overridden by it.
var assistantDefaults = map[string]string{
	"white bread":     "whole wheat bread",
	"soda":            "fresh juice",
	"burger":          "salad wrap",
	"chips":           "air-popped popcorn",
	"coke":            "fresh lime juice",
	"ice cream":       "frozen yogurt",
	"biscuits":        "oat cookies",
	"candy":           "fruit salad",
	"chocolate":       "dark chocolate",
	"french fries":    "baked sweet potato fries",
	"pizza":           "whole wheat veggie pizza",
	"donuts":          "banana pancakes",
	"margarine":       "olive oil",
	"cream":           "low-fat yogurt",
	"mayonnaise":      "avocado spread",
	"sugar":           "honey",
	"white rice":      "brown rice",
	"instant noodles": "whole grain pasta",
	"energy drinks":   "green tea",
}

// Normalize trims and lower-cases an item name for lookup.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Table is an immutable name -> alternative mapping. Keys are normalized on
// construction so lookups never lock.
type Table struct {
	entries map[string]string
}

// Verify interface compliance
var _ Source = (*Table)(nil)

// NewTable builds a Table from entries. Later maps override earlier ones.
// Entries whose key or alternative is blank after trimming are skipped.
func NewTable(maps ...map[string]string) *Table {
	entries := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			key := Normalize(k)
			alt := strings.TrimSpace(v)
			if key == "" || alt == "" {
				continue
			}
			entries[key] = alt
		}
	}
	return &Table{entries: entries}
}

// DefaultTable returns the built-in substitutions.
func DefaultTable() *Table {
	return NewTable(assistantDefaults, backendDefaults)
}

// LoadTableFile reads a JSON object of name -> alternative from path and
// merges it over base. The file wins on conflicts.
func LoadTableFile(path string, base *Table) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read substitutions file: %w", err)
	}

	var overrides map[string]string
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse substitutions file %s: %w", path, err)
	}

	if base == nil {
		return NewTable(overrides), nil
	}
	return NewTable(base.entries, overrides), nil
}

// Lookup implements Source. It never fails.
func (t *Table) Lookup(_ context.Context, normalized string) (string, bool, error) {
	alt, ok := t.entries[normalized]
	return alt, ok, nil
}

// Len reports the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the table.
func (t *Table) Entries() map[string]string {
	out := make(map[string]string, len(t.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}
