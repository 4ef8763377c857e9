package service

import (
	"errors"
	"testing"

	"github.com/set-night/gptdesk/internal/config"
	"github.com/set-night/gptdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePromptBoundary(t *testing.T) {
	counter := wordCounter{}

	for _, m := range config.Models {
		t.Run(m.ID, func(t *testing.T) {
			limit := m.ContextLength - config.ReservedResponseTokens

			tokens, err := ValidatePrompt(counter, words(limit), m.ID)
			require.NoError(t, err)
			assert.Equal(t, limit, tokens)

			tokens, err = ValidatePrompt(counter, words(limit+1), m.ID)
			require.Error(t, err)
			assert.Equal(t, limit+1, tokens)

			var tooLarge *domain.PromptTooLargeError
			require.True(t, errors.As(err, &tooLarge))
			assert.Equal(t, limit+1, tooLarge.Tokens)
			assert.Equal(t, limit, tooLarge.Limit)
		})
	}
}

func TestValidatePromptRejectsOverBudget(t *testing.T) {
	tokens, err := ValidatePrompt(wordCounter{}, words(3200), "gpt-3.5-turbo")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPromptTooLarge))
	assert.Equal(t, 3200, tokens)

	var tooLarge *domain.PromptTooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.Equal(t, 3200, tooLarge.Tokens)
	assert.Equal(t, 3096, tooLarge.Limit)
	assert.Equal(t, "Total input too large: 3200 tokens (limit: 3096 tokens)", err.Error())
}

func TestValidatePromptUnknownModelUsesDefaultLimit(t *testing.T) {
	limit := config.DefaultModelLimit - config.ReservedResponseTokens

	_, err := ValidatePrompt(wordCounter{}, words(limit), "mystery-model")
	assert.NoError(t, err)

	_, err = ValidatePrompt(wordCounter{}, words(limit+1), "mystery-model")
	assert.ErrorIs(t, err, domain.ErrPromptTooLarge)
}

func TestValidateTranscriptSumsEveryEntry(t *testing.T) {
	msgs := []domain.Message{
		{Role: domain.RoleUser, Content: words(2000)},
		{Role: domain.RoleAssistant, Content: words(1000)},
		{Role: domain.RoleUser, Content: words(96)},
	}

	tokens, err := validateTranscript(wordCounter{}, msgs, "gpt-3.5-turbo")
	require.NoError(t, err)
	assert.Equal(t, 3096, tokens)

	msgs = append(msgs, domain.Message{Role: domain.RoleUser, Content: "one"})
	_, err = validateTranscript(wordCounter{}, msgs, "gpt-3.5-turbo")
	assert.ErrorIs(t, err, domain.ErrPromptTooLarge)
}
