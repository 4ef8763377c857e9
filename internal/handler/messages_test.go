package handler

import (
	"fmt"
	"testing"

	"github.com/set-night/gptdesk/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseLogin(t *testing.T) {
	tests := []struct {
		text, key, model string
	}{
		{"/login", "", ""},
		{"/login sk-abc", "sk-abc", ""},
		{"/login   sk-abc   gpt-4 ", "sk-abc", "gpt-4"},
	}
	for _, tt := range tests {
		key, model := parseLogin(tt.text)
		assert.Equal(t, tt.key, key, tt.text)
		assert.Equal(t, tt.model, model, tt.text)
	}
}

func TestUserError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"empty key", domain.ErrEmptyAPIKey, loginHint},
		{"busy", domain.ErrTurnInProgress, "⏳ Wait for the answer to the previous message."},
		{"remote", &domain.RemoteError{Kind: domain.RemoteRateLimited, Message: "Rate limit reached"}, "❌ Rate limit reached"},
		{"file type", &domain.UnsupportedFileTypeError{Extension: "exe"}, "❌ Unsupported file type: exe"},
		{"prompt", &domain.PromptTooLargeError{Tokens: 3200, Limit: 3096}, "❌ Total input too large: 3200 tokens (limit: 3096 tokens)"},
		{"wrapped", fmt.Errorf("submit: %w", domain.ErrModelNotFound), "❌ Unknown model. Use /models to choose one."},
		{"other", fmt.Errorf("boom"), "❌ Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userError(tt.err))
		})
	}
}

func TestUsageText(t *testing.T) {
	u := domain.Usage{PromptTokens: 1500, CompletionTokens: 200, Turns: 3, Cost: decimal.RequireFromString("0.0123")}

	text := usageText("gpt-4", u)
	assert.Contains(t, text, "`gpt-4`")
	assert.Contains(t, text, "Turns: 3")
	assert.Contains(t, text, "Prompt tokens: 1.5k")
	assert.Contains(t, text, "Total: 1.7k tokens")
	assert.Contains(t, text, "$0.0123")
}

func TestFilesText(t *testing.T) {
	assert.Contains(t, filesText(nil, nil), "No files")

	files := []domain.FileInfo{
		{Name: "a.py", Language: "Python", Tokens: 10},
		{Name: "b.txt", Language: "Plain Text", Tokens: 4},
	}
	text := filesText(files, &files[1])
	assert.Contains(t, text, "• a.py (Python, 10 tokens)")
	assert.Contains(t, text, "📎 b.txt (Plain Text, 4 tokens)")
}

func TestHelpTextListsFileTypes(t *testing.T) {
	text := helpText("Ada")
	assert.Contains(t, text, "*Ada*")
	assert.Contains(t, text, "/login")
	assert.Contains(t, text, "py (Python source code)")
}
