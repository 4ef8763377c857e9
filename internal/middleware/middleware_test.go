package middleware

import (
	"context"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/gptdesk/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatLimiterIsPerChat(t *testing.T) {
	l := NewChatLimiter(1, 2)

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))
	assert.True(t, l.Allow(2))
}

func TestChatID(t *testing.T) {
	msg := &models.Update{Message: &models.Message{Chat: models.Chat{ID: 10}}}
	assert.Equal(t, int64(10), ChatID(msg))

	cb := &models.Update{CallbackQuery: &models.CallbackQuery{
		Message: models.MaybeInaccessibleMessage{Message: &models.Message{Chat: models.Chat{ID: 11}}},
	}}
	assert.Equal(t, int64(11), ChatID(cb))
	assert.Equal(t, "callback_query", updateType(cb))

	assert.Zero(t, ChatID(&models.Update{}))
}

func TestSessionLoader(t *testing.T) {
	reg := service.NewSessionRegistry()
	created := reg.Create(SessionID(10), "sk-test", "gpt-4")

	var got *service.Session
	h := SessionLoader(reg)(func(ctx context.Context, _ *bot.Bot, _ *models.Update) {
		got = GetSession(ctx)
	})

	h(context.Background(), nil, &models.Update{Message: &models.Message{Chat: models.Chat{ID: 10}}})
	require.NotNil(t, got)
	assert.Same(t, created, got)

	h(context.Background(), nil, &models.Update{Message: &models.Message{Chat: models.Chat{ID: 12}}})
	assert.Nil(t, got)
}
