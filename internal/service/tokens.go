package service

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
	"github.com/set-night/gptdesk/internal/domain"
)

// Chat accounting constants of the completion API: every message costs a
// fixed overhead, a name field costs one more token, and every reply is
// primed with <|start|>assistant<|message|>.
const (
	TokensPerMessage     = 3
	TokensPerName        = 1
	TokensAssistantPrime = 3

	fallbackEncoding = "cl100k_base"
)

// TokenCounter counts tokens the way the selected model's tokenizer does.
type TokenCounter interface {
	Count(text, model string) int
	CountMessages(msgs []domain.Message, model string) int
}

var loaderOnce sync.Once

// TiktokenCounter selects a BPE encoding per model and falls back to
// cl100k_base for models tiktoken does not know. Encoders are loaded from
// embedded assets, never from the network.
type TiktokenCounter struct {
	mu   sync.Mutex
	encs map[string]*tiktoken.Tiktoken
}

func NewTiktokenCounter() *TiktokenCounter {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
	return &TiktokenCounter{encs: make(map[string]*tiktoken.Tiktoken)}
}

func (c *TiktokenCounter) Count(text, model string) int {
	if text == "" {
		return 0
	}
	enc := c.encoder(model)
	if enc == nil {
		// ~4 bytes per token; only reached when no encoding could be loaded.
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

func (c *TiktokenCounter) CountMessages(msgs []domain.Message, model string) int {
	total := 0
	for _, m := range msgs {
		total += TokensPerMessage
		total += c.Count(string(m.Role), model)
		total += c.Count(m.Content, model)
		if m.Name != "" {
			total += TokensPerName + c.Count(m.Name, model)
		}
	}
	return total + TokensAssistantPrime
}

func (c *TiktokenCounter) encoder(model string) *tiktoken.Tiktoken {
	c.mu.Lock()
	defer c.mu.Unlock()

	if enc, ok := c.encs[model]; ok {
		return enc
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		slog.Debug("no tokenizer for model, using fallback", "model", model, "encoding", fallbackEncoding)
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			slog.Warn("load fallback tokenizer", "error", err)
			enc = nil
		}
	}
	c.encs[model] = enc
	return enc
}
