package service

import (
	"context"
	"strings"
	"sync"

	"github.com/set-night/gptdesk/internal/domain"
)

// wordCounter counts whitespace separated words, one token each.
type wordCounter struct{}

func (wordCounter) Count(text, _ string) int {
	return len(strings.Fields(text))
}

func (w wordCounter) CountMessages(msgs []domain.Message, model string) int {
	total := 0
	for _, m := range msgs {
		total += TokensPerMessage + w.Count(string(m.Role), model) + w.Count(m.Content, model)
		if m.Name != "" {
			total += TokensPerName + w.Count(m.Name, model)
		}
	}
	return total + TokensAssistantPrime
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("a ", n))
}

type fakeCompleter struct {
	mu          sync.Mutex
	deltas      []string
	err         error
	validateErr error
	calls       int
	sent        [][]domain.Message

	started chan struct{}
	release chan struct{}
	// cancel, when set, cancels the caller's context mid-stream.
	cancel context.CancelFunc
}

func (f *fakeCompleter) Stream(ctx context.Context, apiKey, model string, msgs []domain.Message, onDelta func(string)) (string, error) {
	f.mu.Lock()
	f.calls++
	f.sent = append(f.sent, append([]domain.Message(nil), msgs...))
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	for _, d := range f.deltas {
		onDelta(d)
	}
	return strings.Join(f.deltas, ""), nil
}

func (f *fakeCompleter) ValidateKey(ctx context.Context, apiKey, model string) error {
	return f.validateErr
}

func (f *fakeCompleter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeCompleter) LastSent() []domain.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

// countingIngestor records how often extraction actually ran.
type countingIngestor struct {
	inner FileIngestor
	calls int
}

func (c *countingIngestor) Ingest(name string, data []byte, mimeType, model string) (*domain.FileInfo, error) {
	c.calls++
	return c.inner.Ingest(name, data, mimeType, model)
}
