package middleware

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/gptdesk/internal/service"
)

type ctxKey string

const SessionKey ctxKey = "session"

// SessionID is the registry id used for a Telegram chat.
func SessionID(chatID int64) string {
	return fmt.Sprintf("tg-%d", chatID)
}

// GetSession extracts the chat's session from context, nil when the chat
// has not logged in.
func GetSession(ctx context.Context) *service.Session {
	s, ok := ctx.Value(SessionKey).(*service.Session)
	if !ok {
		return nil
	}
	return s
}

// WithSession stores sess in ctx.
func WithSession(ctx context.Context, sess *service.Session) context.Context {
	return context.WithValue(ctx, SessionKey, sess)
}

// SessionLoader returns middleware that loads the chat's session into context.
func SessionLoader(sessions *service.SessionRegistry) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if chatID := ChatID(update); chatID != 0 {
				if sess, err := sessions.Get(SessionID(chatID)); err == nil {
					ctx = WithSession(ctx, sess)
				}
			}
			next(ctx, b, update)
		}
	}
}
