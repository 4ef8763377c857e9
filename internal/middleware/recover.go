package middleware

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Recover returns middleware that recovers from panics and tells the chat
// the request failed.
func Recover() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				slog.Error("panic recovered in handler",
					"panic", r,
					"update_id", update.ID,
					"stack", string(debug.Stack()),
				)
				if chatID := ChatID(update); chatID != 0 {
					_, _ = b.SendMessage(ctx, &bot.SendMessageParams{
						ChatID: chatID,
						Text:   "❌ Something went wrong while handling that message.",
					})
				}
			}()
			next(ctx, b, update)
		}
	}
}
