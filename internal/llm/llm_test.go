package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smart-grocery/internal/config"
	"smart-grocery/internal/shared"
)

func TestGroqClient(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("Expected bearer auth header, got %q", got)
			}
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode request: %v", err)
			}
			if body["model"] != groqModel {
				t.Errorf("Expected model %s, got %v", groqModel, body["model"])
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"model": "llama-test",
				"choices": [{"message": {"content": "{\"alternative\":\"brown rice\"}"}}],
				"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
			}`))
		}))
		defer server.Close()

		client := newGroqClient("test-key", server.URL)
		resp, err := client.GenerateContent(context.Background(), "white rice")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if resp.Content != `{"alternative":"brown rice"}` {
			t.Errorf("Unexpected content: %s", resp.Content)
		}
		want := shared.TokenUsage{PromptTokens: 12, CompletionTokens: 5, TotalTokens: 17, Model: "llama-test"}
		if resp.Usage != want {
			t.Errorf("Expected usage %+v, got %+v", want, resp.Usage)
		}
	})

	t.Run("APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := newGroqClient("k", server.URL).GenerateContent(context.Background(), "x")
		if err == nil || !strings.Contains(err.Error(), "status=429") {
			t.Errorf("Expected status error, got %v", err)
		}
	})

	t.Run("NoChoices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices": []}`))
		}))
		defer server.Close()

		_, err := newGroqClient("k", server.URL).GenerateContent(context.Background(), "x")
		if err == nil || err.Error() != "no content generated" {
			t.Errorf("Expected 'no content generated', got %v", err)
		}
	})
}

func TestNewFromConfig(t *testing.T) {
	client, err := NewFromConfig(context.Background(), &config.Config{})
	if err != nil || client != nil {
		t.Errorf("Expected nil client without provider, got %v, %v", client, err)
	}

	client, err = NewFromConfig(context.Background(), &config.Config{LLMProvider: config.ProviderGroq, GroqAPIKey: "k"})
	if err != nil || client == nil {
		t.Fatalf("Expected groq client, got %v, %v", client, err)
	}
	client.Close()

	if _, err := NewFromConfig(context.Background(), &config.Config{LLMProvider: "other"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

type stubGenerator struct {
	resp ContentResponse
	err  error
}

func (s *stubGenerator) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	return s.resp, s.err
}

type recorderFunc func(shared.AgentMeta) error

func (f recorderFunc) RecordMeta(meta shared.AgentMeta) error { return f(meta) }

func TestMeteredGenerator(t *testing.T) {
	t.Run("RecordsUsage", func(t *testing.T) {
		var got []shared.AgentMeta
		gen := NewMeteredGenerator(&stubGenerator{resp: ContentResponse{
			Content: "ok",
			Usage:   shared.TokenUsage{PromptTokens: 3, CompletionTokens: 2, Model: "m"},
		}}, "substitution", recorderFunc(func(m shared.AgentMeta) error {
			got = append(got, m)
			return nil
		}))

		if _, err := gen.GenerateContent(context.Background(), "p"); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(got) != 1 || got[0].AgentName != "substitution" || got[0].Usage.PromptTokens != 3 {
			t.Errorf("Unexpected recorded meta: %+v", got)
		}
	})

	t.Run("SkipsFailedCalls", func(t *testing.T) {
		called := false
		gen := NewMeteredGenerator(&stubGenerator{err: errors.New("down")}, "a", recorderFunc(func(shared.AgentMeta) error {
			called = true
			return nil
		}))
		if _, err := gen.GenerateContent(context.Background(), "p"); err == nil {
			t.Error("Expected error to propagate")
		}
		if called {
			t.Error("Expected no metric for a failed call")
		}
	})

	t.Run("RecorderErrorIsReported", func(t *testing.T) {
		var reported error
		gen := NewMeteredGenerator(&stubGenerator{resp: ContentResponse{Content: "ok"}}, "a", recorderFunc(func(shared.AgentMeta) error {
			return errors.New("db locked")
		}))
		gen.OnError = func(err error) { reported = err }

		resp, err := gen.GenerateContent(context.Background(), "p")
		if err != nil || resp.Content != "ok" {
			t.Fatalf("Expected success despite recorder error, got %v", err)
		}
		if reported == nil {
			t.Error("Expected recorder error to be reported")
		}
	})
}
