package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/gptdesk/internal/config"
	"github.com/set-night/gptdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	sent        []*bot.SendMessageParams
	edits       []*bot.EditMessageTextParams
	rejectMarkV bool
}

func (f *fakeMessenger) SendMessage(_ context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	if f.rejectMarkV && p.ParseMode != "" {
		return nil, errors.New("can't parse entities")
	}
	f.sent = append(f.sent, p)
	return &models.Message{ID: len(f.sent)}, nil
}

func (f *fakeMessenger) EditMessageText(_ context.Context, p *bot.EditMessageTextParams) (*models.Message, error) {
	if f.rejectMarkV && p.ParseMode != "" {
		return nil, errors.New("can't parse entities")
	}
	f.edits = append(f.edits, p)
	return &models.Message{ID: p.MessageID}, nil
}

func TestSendLongMessageRepliesOnce(t *testing.T) {
	m := &fakeMessenger{}
	reply := 7

	text := strings.Repeat("line of text\n", 700)
	require.NoError(t, SendLongMessage(context.Background(), m, 42, text, &reply))

	require.Greater(t, len(m.sent), 1)
	require.NotNil(t, m.sent[0].ReplyParameters)
	assert.Equal(t, 7, m.sent[0].ReplyParameters.MessageID)
	for _, p := range m.sent[1:] {
		assert.Nil(t, p.ReplyParameters)
	}
}

func TestSendLongMessageFallsBackToPlain(t *testing.T) {
	m := &fakeMessenger{rejectMarkV: true}

	require.NoError(t, SendLongMessage(context.Background(), m, 1, "a *b", nil))
	require.Len(t, m.sent, 1)
	assert.Equal(t, models.ParseMode(""), m.sent[0].ParseMode)
	assert.Equal(t, "a *b", m.sent[0].Text)
}

func TestStreamReplyEditsAndFinishes(t *testing.T) {
	m := &fakeMessenger{}
	ctx := context.Background()

	s := NewStreamReply(m, 1, 99, 0)
	s.Append(ctx, "Hello")
	s.Append(ctx, " world")
	assert.Equal(t, "Hello world", s.Text())
	require.Len(t, m.edits, 2)
	assert.Equal(t, "Hello world", m.edits[1].Text)

	require.NoError(t, s.Finish(ctx, "Hello world"))
	assert.Len(t, m.edits, 2, "unchanged text is not edited again")
	assert.Empty(t, m.sent)
}

func TestStreamReplyThrottlesAndOverflows(t *testing.T) {
	m := &fakeMessenger{}
	ctx := context.Background()

	s := NewStreamReply(m, 1, 99, time.Hour)
	s.Append(ctx, "partial")
	assert.Empty(t, m.edits)

	final := strings.Repeat("word ", config.MaxTelegramMessageLen/2)
	require.NoError(t, s.Finish(ctx, final))
	require.Len(t, m.edits, 1)
	assert.Equal(t, 99, m.edits[0].MessageID)
	assert.NotEmpty(t, m.sent)
}

func TestModelKeyboard(t *testing.T) {
	list := []domain.AIModel{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C"},
	}

	kb := ModelKeyboard(list, "b")
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[0], 2)
	assert.Len(t, kb.InlineKeyboard[1], 1)
	assert.Equal(t, "✅ B", kb.InlineKeyboard[0][1].Text)
	assert.Equal(t, ModelCallbackPrefix+"c", kb.InlineKeyboard[1][0].CallbackData)
}
