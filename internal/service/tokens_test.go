package service

import (
	"testing"

	"github.com/set-night/gptdesk/internal/config"
	"github.com/set-night/gptdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTiktokenCounterCount(t *testing.T) {
	counter := NewTiktokenCounter()

	assert.Zero(t, counter.Count("", "gpt-4"))

	n := counter.Count("The quick brown fox jumps over the lazy dog.", "gpt-4")
	assert.Positive(t, n)
	assert.Equal(t, n, counter.Count("The quick brown fox jumps over the lazy dog.", "gpt-4"), "counting must be deterministic")

	longer := counter.Count("The quick brown fox jumps over the lazy dog. And then it runs away.", "gpt-4")
	assert.Greater(t, longer, n)
}

func TestTiktokenCounterUnknownModelFallsBack(t *testing.T) {
	counter := NewTiktokenCounter()
	text := "func main() { fmt.Println(\"hello\") }"

	// gpt-4 uses cl100k_base, the fallback encoding.
	assert.Equal(t, counter.Count(text, "gpt-4"), counter.Count(text, "some-unreleased-model"))
}

func TestTiktokenCounterEveryRegistryModel(t *testing.T) {
	counter := NewTiktokenCounter()
	for _, m := range config.Models {
		assert.Positive(t, counter.Count("hello world", m.ID), m.ID)
	}
}

func TestTiktokenCounterCountMessages(t *testing.T) {
	counter := NewTiktokenCounter()
	model := "gpt-3.5-turbo"

	msgs := []domain.Message{
		{Role: domain.RoleUser, Content: "What is the capital of France?"},
		{Role: domain.RoleAssistant, Content: "Paris."},
	}

	want := TokensAssistantPrime
	for _, m := range msgs {
		want += TokensPerMessage + counter.Count(string(m.Role), model) + counter.Count(m.Content, model)
	}
	assert.Equal(t, want, counter.CountMessages(msgs, model))

	named := []domain.Message{{Role: domain.RoleUser, Content: "hi", Name: "alice"}}
	unnamed := []domain.Message{{Role: domain.RoleUser, Content: "hi"}}
	assert.Equal(t,
		counter.CountMessages(unnamed, model)+TokensPerName+counter.Count("alice", model),
		counter.CountMessages(named, model),
	)

	require.Equal(t, TokensAssistantPrime, counter.CountMessages(nil, model))
}
