package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/gptdesk/internal/handler"
	"github.com/set-night/gptdesk/internal/middleware"
	"github.com/spf13/cobra"
)

func newBotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.BotToken == "" {
				return errors.New("BOT_TOKEN is required for the bot command")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			chat, store, err := a.newChatService(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			// Handler pointer for use in default handler closure
			var h *handler.Handler

			opts := []bot.Option{
				bot.WithMiddlewares(
					middleware.Recover(),
					middleware.Logging(),
					middleware.RateLimit(middleware.NewChatLimiter(a.cfg.BotRateLimit, a.cfg.BotRateBurst)),
					middleware.SessionLoader(chat.Sessions()),
				),
				bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
					if h == nil {
						return
					}
					h.HandleMessage(ctx, b, update)
				}),
			}

			b, err := bot.New(a.cfg.BotToken, opts...)
			if err != nil {
				return err
			}

			me, err := b.GetMe(ctx)
			if err != nil {
				return err
			}

			if a.cfg.DropPendingUpdates {
				if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
					slog.Warn("drop pending updates", "error", err)
				}
			}

			h = handler.New(handler.Deps{
				Bot:  b,
				Chat: chat,
			})
			h.Register()

			slog.Info("starting bot", "username", me.Username, "id", me.ID)
			b.Start(ctx)

			slog.Info("bot stopped gracefully")
			return nil
		},
	}
}
