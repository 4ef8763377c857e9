package service

import (
	"github.com/set-night/gptdesk/internal/config"
	"github.com/set-night/gptdesk/internal/domain"
)

// ValidatePrompt counts text under model and rejects it when it exceeds the
// model's usable budget (context window minus the reply allowance). The
// returned count is exactly counter.Count(text, model).
func ValidatePrompt(counter TokenCounter, text, model string) (int, error) {
	tokens := counter.Count(text, model)
	if limit := config.UsableTokens(model); tokens > limit {
		return tokens, &domain.PromptTooLargeError{Tokens: tokens, Limit: limit}
	}
	return tokens, nil
}

// validateTranscript applies the prompt budget to a whole candidate
// transcript: the sum of each entry's content tokens.
func validateTranscript(counter TokenCounter, msgs []domain.Message, model string) (int, error) {
	tokens := 0
	for _, m := range msgs {
		tokens += counter.Count(m.Content, model)
	}
	if limit := config.UsableTokens(model); tokens > limit {
		return tokens, &domain.PromptTooLargeError{Tokens: tokens, Limit: limit}
	}
	return tokens, nil
}

func validateFileSize(counter TokenCounter, text, model string) (int, error) {
	tokens := counter.Count(text, model)
	if limit := config.UsableTokens(model); tokens > limit {
		return tokens, &domain.FileTooLargeError{Tokens: tokens, Limit: limit}
	}
	return tokens, nil
}
