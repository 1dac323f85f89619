// Package substitution maps grocery items to healthier alternatives.
//
// A Resolver consults an ordered list of Sources. The built-in Table is
// static and lock free; slower sources such as an LLM sit behind it and are
// only asked when the table has no entry.
package substitution

import (
	"context"
	"strings"

	"smart-grocery/internal/shared"
)

// Source looks up an alternative for an already normalized name. A miss is
// reported with ok=false and a nil error.
type Source interface {
	Lookup(ctx context.Context, normalized string) (alternative string, ok bool, err error)
}

// Suggestion is the result of a lookup. Alternative is nil when no source
// knows a substitute.
type Suggestion struct {
	Item        string  `json:"item"`
	Alternative *string `json:"alternative"`
}

// Resolver walks its sources in order; the first hit wins.
type Resolver struct {
	sources []Source

	// OnSourceError observes failures of individual sources. A failing
	// source is treated as a miss.
	OnSourceError func(source int, err error)
}

// NewResolver creates a Resolver over sources.
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// Suggest returns the alternative for itemName. The returned Item echoes the
// caller's input trimmed of surrounding whitespace.
func (r *Resolver) Suggest(ctx context.Context, itemName string) (Suggestion, error) {
	key := Normalize(itemName)
	if key == "" {
		return Suggestion{}, shared.NewValidationError("item", "must not be empty")
	}

	res := Suggestion{Item: strings.TrimSpace(itemName)}
	for i, src := range r.sources {
		alt, ok, err := src.Lookup(ctx, key)
		if err != nil {
			if r.OnSourceError != nil {
				r.OnSourceError(i, err)
			}
			continue
		}
		if ok && alt != "" {
			res.Alternative = &alt
			return res, nil
		}
	}
	return res, nil
}
