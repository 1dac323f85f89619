package substitution

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"smart-grocery/internal/llm"
	"smart-grocery/internal/shared"
)

func TestResolverSuggest(t *testing.T) {
	r := NewResolver(DefaultTable())
	ctx := context.Background()

	tests := []struct {
		name    string
		input   string
		want    string
		wantNil bool
	}{
		{name: "BackendEntry", input: "white rice", want: "brown rice"},
		{name: "BackendWinsConflict", input: "white bread", want: "brown bread"},
		{name: "AssistantEntry", input: "soda", want: "fresh juice"},
		{name: "NormalizesCaseAndSpace", input: "  Fried CHICKEN\t", want: "grilled chicken"},
		{name: "Chain", input: "brown bread", want: "whole grain bread"},
		{name: "Unknown", input: "broccoli", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Suggest(ctx, tt.input)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got.Item != strings.TrimSpace(tt.input) {
				t.Errorf("Expected item %q, got %q", strings.TrimSpace(tt.input), got.Item)
			}
			if tt.wantNil {
				if got.Alternative != nil {
					t.Errorf("Expected no alternative, got %q", *got.Alternative)
				}
				return
			}
			if got.Alternative == nil || *got.Alternative != tt.want {
				t.Errorf("Expected alternative %q, got %v", tt.want, got.Alternative)
			}
		})
	}

	t.Run("EmptyName", func(t *testing.T) {
		for _, in := range []string{"", "   ", "\t\n"} {
			if _, err := r.Suggest(ctx, in); !shared.IsValidation(err) {
				t.Errorf("Expected ValidationError for %q, got %v", in, err)
			}
		}
	})
}

func TestResolverNormalizationIsIdentical(t *testing.T) {
	r := NewResolver(NewTable(map[string]string{"whole milk": "skim milk"}))
	a, _ := r.Suggest(context.Background(), "  WHOLE MILK ")
	b, _ := r.Suggest(context.Background(), "whole milk")
	if a.Alternative == nil || b.Alternative == nil || *a.Alternative != *b.Alternative {
		t.Errorf("Expected identical alternatives, got %v and %v", a.Alternative, b.Alternative)
	}
}

type fakeSource struct {
	mu    sync.Mutex
	calls int
	alt   string
	ok    bool
	err   error
}

func (f *fakeSource) Lookup(ctx context.Context, normalized string) (string, bool, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.alt, f.ok, f.err
}

func TestResolverSourceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstHitWins", func(t *testing.T) {
		fallback := &fakeSource{alt: "kale", ok: true}
		r := NewResolver(DefaultTable(), fallback)

		got, _ := r.Suggest(ctx, "sugar")
		if *got.Alternative != "honey" {
			t.Errorf("Expected table hit 'honey', got %q", *got.Alternative)
		}
		if fallback.calls != 0 {
			t.Errorf("Expected fallback not to be called, got %d calls", fallback.calls)
		}

		got, _ = r.Suggest(ctx, "lettuce")
		if got.Alternative == nil || *got.Alternative != "kale" {
			t.Errorf("Expected fallback 'kale', got %v", got.Alternative)
		}
	})

	t.Run("FailingSourceIsAMiss", func(t *testing.T) {
		var reported []int
		r := NewResolver(&fakeSource{err: errors.New("quota exceeded")}, NewTable(map[string]string{"jam": "fruit spread"}))
		r.OnSourceError = func(i int, err error) { reported = append(reported, i) }

		got, err := r.Suggest(ctx, "jam")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got.Alternative == nil || *got.Alternative != "fruit spread" {
			t.Errorf("Expected 'fruit spread', got %v", got.Alternative)
		}
		if len(reported) != 1 || reported[0] != 0 {
			t.Errorf("Expected source 0 failure to be reported, got %v", reported)
		}
	})
}

func TestTable(t *testing.T) {
	t.Run("DefaultTableMerge", func(t *testing.T) {
		table := DefaultTable()
		if table.Len() != 22 {
			t.Errorf("Expected 22 default entries, got %d", table.Len())
		}
		if alt, _, _ := table.Lookup(context.Background(), "white bread"); alt != "brown bread" {
			t.Errorf("Expected backend entry to win, got %q", alt)
		}
	})

	t.Run("SkipsBlankEntries", func(t *testing.T) {
		table := NewTable(map[string]string{" ": "x", "tea": " ", " Coffee ": " green tea "})
		if table.Len() != 1 {
			t.Errorf("Expected 1 entry, got %v", table.Entries())
		}
		if alt, ok, _ := table.Lookup(context.Background(), "coffee"); !ok || alt != "green tea" {
			t.Errorf("Expected 'green tea', got %q", alt)
		}
	})

	t.Run("LoadTableFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "subs.json")
		os.WriteFile(path, []byte(`{"White Rice": "quinoa", "butter": "olive oil spread"}`), 0644)

		table, err := LoadTableFile(path, DefaultTable())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if alt, _, _ := table.Lookup(context.Background(), "white rice"); alt != "quinoa" {
			t.Errorf("Expected file override 'quinoa', got %q", alt)
		}
		if alt, _, _ := table.Lookup(context.Background(), "butter"); alt != "olive oil spread" {
			t.Errorf("Expected new entry, got %q", alt)
		}
		if alt, _, _ := table.Lookup(context.Background(), "soda"); alt != "fresh juice" {
			t.Errorf("Expected built-in entry kept, got %q", alt)
		}
	})

	t.Run("LoadTableFileErrors", func(t *testing.T) {
		if _, err := LoadTableFile(filepath.Join(t.TempDir(), "missing.json"), nil); err == nil {
			t.Error("Expected error for missing file")
		}
		path := filepath.Join(t.TempDir(), "bad.json")
		os.WriteFile(path, []byte(`["not", "an", "object"]`), 0644)
		if _, err := LoadTableFile(path, nil); err == nil {
			t.Error("Expected error for malformed file")
		}
	})
}

type mockTextGenerator struct {
	content string
	err     error
	prompts []string
}

func (m *mockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.prompts = append(m.prompts, prompt)
	return llm.ContentResponse{Content: m.content}, m.err
}

func TestLLMSource(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
		err     error
		want    string
		wantOK  bool
		wantErr bool
	}{
		{name: "Alternative", content: `{"alternative": "Sparkling Water"}`, want: "Sparkling Water", wantOK: true},
		{name: "Fenced", content: "```json\n{\"alternative\": \"oat milk\"}\n```", want: "oat milk", wantOK: true},
		{name: "Null", content: `{"alternative": null}`},
		{name: "SameAsInput", content: `{"alternative": "Lemonade"}`},
		{name: "Garbage", content: `I think water`, wantErr: true},
		{name: "GeneratorError", err: errors.New("timeout"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockTextGenerator{content: tt.content, err: tt.err}
			alt, ok, err := NewLLMSource(gen).Lookup(ctx, "lemonade")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if ok != tt.wantOK || alt != tt.want {
				t.Errorf("Expected (%q, %v), got (%q, %v)", tt.want, tt.wantOK, alt, ok)
			}
			if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "Item: lemonade") {
				t.Errorf("Expected prompt to name the item, got %v", gen.prompts)
			}
		})
	}
}

func TestCachedSource(t *testing.T) {
	ctx := context.Background()

	t.Run("MemoizesHitsAndMisses", func(t *testing.T) {
		inner := &fakeSource{alt: "kale", ok: true}
		c := NewCachedSource(inner, 0)
		for i := 0; i < 3; i++ {
			alt, ok, err := c.Lookup(ctx, "lettuce")
			if err != nil || !ok || alt != "kale" {
				t.Fatalf("Unexpected lookup result (%q, %v, %v)", alt, ok, err)
			}
		}
		if inner.calls != 1 {
			t.Errorf("Expected 1 inner call, got %d", inner.calls)
		}

		miss := &fakeSource{}
		c = NewCachedSource(miss, 0)
		c.Lookup(ctx, "water")
		c.Lookup(ctx, "water")
		if miss.calls != 1 {
			t.Errorf("Expected misses to be cached, got %d calls", miss.calls)
		}
	})

	t.Run("DoesNotCacheErrors", func(t *testing.T) {
		inner := &fakeSource{err: errors.New("down")}
		c := NewCachedSource(inner, 0)
		c.Lookup(ctx, "x")
		c.Lookup(ctx, "x")
		if inner.calls != 2 {
			t.Errorf("Expected errors to be retried, got %d calls", inner.calls)
		}
		if c.Len() != 0 {
			t.Errorf("Expected empty cache, got %d", c.Len())
		}
	})

	t.Run("BoundedSize", func(t *testing.T) {
		c := NewCachedSource(&fakeSource{}, 2)
		for _, k := range []string{"a", "b", "c"} {
			c.Lookup(ctx, k)
		}
		if c.Len() > 2 {
			t.Errorf("Expected at most 2 entries, got %d", c.Len())
		}
	})

	t.Run("Concurrent", func(t *testing.T) {
		c := NewCachedSource(&fakeSource{alt: "y", ok: true}, 0)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if alt, _, _ := c.Lookup(ctx, "x"); alt != "y" {
					t.Errorf("Expected 'y', got %q", alt)
				}
			}()
		}
		wg.Wait()
	})
}
