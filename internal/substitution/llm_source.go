package substitution

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"smart-grocery/internal/llm"
)

const substitutionPrompt = `
You are a nutrition assistant for a grocery app. Suggest ONE healthier everyday
grocery alternative for the item below. If the item is already a healthy staple
or you are not sure, answer with null.
Return the result strictly as a JSON object with this structure:
{"alternative": "item name" }
or
{"alternative": null}

Item: %s
`

// LLMSource asks a language model for a substitute.
type LLMSource struct {
	textGen llm.TextGenerator
}

// Verify interface compliance
var _ Source = (*LLMSource)(nil)

// NewLLMSource creates a Source backed by textGen.
func NewLLMSource(textGen llm.TextGenerator) *LLMSource {
	return &LLMSource{textGen: textGen}
}

func (s *LLMSource) Lookup(ctx context.Context, normalized string) (string, bool, error) {
	resp, err := s.textGen.GenerateContent(ctx, fmt.Sprintf(substitutionPrompt, normalized))
	if err != nil {
		return "", false, fmt.Errorf("ai substitution failed: %w", err)
	}

	var parsed struct {
		Alternative *string `json:"alternative"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &parsed); err != nil {
		return "", false, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, resp.Content)
	}
	if parsed.Alternative == nil {
		return "", false, nil
	}

	alt := strings.TrimSpace(*parsed.Alternative)
	if alt == "" || Normalize(alt) == normalized {
		return "", false, nil
	}
	return alt, true, nil
}

// stripCodeFence removes a markdown ```json fence some models wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

type cacheEntry struct {
	alternative string
	ok          bool
}

// CachedSource memoizes the answers of a slow source, misses included.
// Errors are not cached. When the cache holds maxEntries it is cleared.
type CachedSource struct {
	next       Source
	maxEntries int

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// Verify interface compliance
var _ Source = (*CachedSource)(nil)

// NewCachedSource wraps next. maxEntries <= 0 selects 1024.
func NewCachedSource(next Source, maxEntries int) *CachedSource {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &CachedSource{
		next:       next,
		maxEntries: maxEntries,
		cache:      make(map[string]cacheEntry),
	}
}

func (c *CachedSource) Lookup(ctx context.Context, normalized string) (string, bool, error) {
	c.mu.RLock()
	e, hit := c.cache[normalized]
	c.mu.RUnlock()
	if hit {
		return e.alternative, e.ok, nil
	}

	alt, ok, err := c.next.Lookup(ctx, normalized)
	if err != nil {
		return "", false, err
	}

	c.mu.Lock()
	if len(c.cache) >= c.maxEntries {
		c.cache = make(map[string]cacheEntry)
	}
	c.cache[normalized] = cacheEntry{alternative: alt, ok: ok}
	c.mu.Unlock()

	return alt, ok, nil
}

// Len reports the number of cached answers.
func (c *CachedSource) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
