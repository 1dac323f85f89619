package llm

import (
	"context"
	"time"

	"smart-grocery/internal/shared"
)

// MetaRecorder persists per-call usage metadata.
type MetaRecorder interface {
	RecordMeta(meta shared.AgentMeta) error
}

// MeteredGenerator wraps a TextGenerator and records the usage and latency of
// every successful call under a fixed agent name. Recording failures are
// passed to OnError when set and never fail the call.
type MeteredGenerator struct {
	next     TextGenerator
	agent    string
	recorder MetaRecorder
	OnError  func(error)
}

// Verify interface compliance
var _ TextGenerator = (*MeteredGenerator)(nil)

// NewMeteredGenerator wraps next.
func NewMeteredGenerator(next TextGenerator, agent string, recorder MetaRecorder) *MeteredGenerator {
	return &MeteredGenerator{next: next, agent: agent, recorder: recorder}
}

func (m *MeteredGenerator) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	start := time.Now()
	resp, err := m.next.GenerateContent(ctx, prompt)
	if err != nil {
		return resp, err
	}

	meta := shared.AgentMeta{
		AgentName: m.agent,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if rerr := m.recorder.RecordMeta(meta); rerr != nil && m.OnError != nil {
		m.OnError(rerr)
	}
	return resp, nil
}
