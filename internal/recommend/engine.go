// Package recommend ranks items that are likely missing from a partial
// basket by their co-purchase affinity to it.
package recommend

import (
	"sort"

	"smart-grocery/internal/cooccurrence"
	"smart-grocery/internal/shared"
)

// DefaultTopK is the number of recommendations returned when the caller
// does not ask for a specific count.
const DefaultTopK = 5

// Recommendation is a candidate item and its score. The score is the sum of
// raw co-occurrence counts with the current items, not a probability.
type Recommendation struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Engine scores candidates against a cooccurrence.Model.
type Engine struct {
	model *cooccurrence.Model
}

// NewEngine creates an Engine reading from model.
func NewEngine(model *cooccurrence.Model) *Engine {
	return &Engine{model: model}
}

// Recommend returns up to topK items not in current, ordered by descending
// score and then by name. Candidates with no affinity to any current item
// are never returned, so an empty current set yields an empty result.
func (e *Engine) Recommend(current []string, topK int) ([]Recommendation, error) {
	if topK <= 0 {
		return nil, shared.NewValidationError("topK", "must be positive")
	}

	names := cooccurrence.NormalizeBasket(current)
	if len(names) == 0 {
		return []Recommendation{}, nil
	}
	present := make(map[string]struct{}, len(names))
	for _, n := range names {
		present[n] = struct{}{}
	}

	// Summing each current item's neighbor row gives, for every candidate c,
	// the sum over current items of similarity(i, c). Candidates outside
	// every row score 0 and are excluded anyway.
	scores := make(map[string]int)
	e.model.View(func(r cooccurrence.Reader) {
		for _, n := range names {
			r.Neighbors(n, func(other string, count int) {
				if _, skip := present[other]; skip {
					return
				}
				scores[other] += count
			})
		}
	})

	recs := make([]Recommendation, 0, len(scores))
	for name, score := range scores {
		if score > 0 {
			recs = append(recs, Recommendation{Name: name, Score: score})
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Name < recs[j].Name
	})

	if len(recs) > topK {
		recs = recs[:topK]
	}
	return recs, nil
}
