// Package cooccurrence counts how often grocery items are bought together.
//
// The affinity table is symmetric: every observed basket increments the
// count of each unordered pair of distinct names in it. Counting is
// commutative, so replaying stored baskets in any order rebuilds the same
// table.
package cooccurrence

import (
	"sort"
	"strings"
	"sync"
)

// Pair is an unordered pair of item names, stored with A < B.
type Pair struct {
	A string
	B string
}

// NewPair orders a and b.
func NewPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Reader is a read-only view of the affinity table.
type Reader interface {
	// Similarity returns the co-occurrence count of a and b, 0 when the pair
	// was never observed together or a == b.
	Similarity(a, b string) int
	// Neighbors calls fn for every name observed together with name.
	Neighbors(name string, fn func(other string, count int))
	// Known reports whether name appeared in at least one observed basket.
	Known(name string) bool
}

// Model is the in-memory affinity table.
type Model struct {
	mu      sync.RWMutex
	adj     map[string]map[string]int
	baskets int
}

// NewModel creates an empty Model.
func NewModel() *Model {
	return &Model{adj: make(map[string]map[string]int)}
}

// Normalize trims and lower-cases an item name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeBasket normalizes every name, drops empty ones and duplicates,
// and returns the remaining names sorted.
func NormalizeBasket(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = Normalize(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Observe records one basket. Baskets with fewer than two distinct names
// leave the model unchanged.
func (m *Model) Observe(basket []string) {
	names := NormalizeBasket(basket)
	if len(names) < 2 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, a := range names {
		for _, b := range names[i+1:] {
			m.increment(a, b)
			m.increment(b, a)
		}
	}
	m.baskets++
}

func (m *Model) increment(a, b string) {
	row, ok := m.adj[a]
	if !ok {
		row = make(map[string]int)
		m.adj[a] = row
	}
	row[b]++
}

// Similarity returns the affinity of a and b. Unknown names score 0.
func (m *Model) Similarity(a, b string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.similarity(Normalize(a), Normalize(b))
}

func (m *Model) similarity(a, b string) int {
	if a == b {
		return 0
	}
	return m.adj[a][b]
}

// View runs fn with the read lock held, so every lookup fn makes sees the
// same table. fn must not call back into the Model's mutating methods.
func (m *Model) View(fn func(r Reader)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(view{m})
}

// Baskets returns how many multi-item baskets have been observed.
func (m *Model) Baskets() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.baskets
}

// Pairs returns a copy of the table keyed by ordered pair.
func (m *Model) Pairs() map[Pair]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pairs := make(map[Pair]int)
	for a, row := range m.adj {
		for b, n := range row {
			if a < b {
				pairs[Pair{A: a, B: b}] = n
			}
		}
	}
	return pairs
}

// Reset empties the table.
func (m *Model) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adj = make(map[string]map[string]int)
	m.baskets = 0
}

type view struct {
	m *Model
}

func (v view) Similarity(a, b string) int {
	return v.m.similarity(Normalize(a), Normalize(b))
}

func (v view) Neighbors(name string, fn func(other string, count int)) {
	for other, n := range v.m.adj[Normalize(name)] {
		fn(other, n)
	}
}

func (v view) Known(name string) bool {
	_, ok := v.m.adj[Normalize(name)]
	return ok
}

// Rebuild replaces the table with one built from baskets. The new table is
// built off-lock and swapped in, so readers see either the old or the new
// table.
func (m *Model) Rebuild(baskets [][]string) {
	fresh := NewModel()
	for _, b := range baskets {
		fresh.Observe(b)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.adj = fresh.adj
	m.baskets = fresh.baskets
}
