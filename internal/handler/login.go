package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/gptdesk/internal/middleware"
	"github.com/set-night/gptdesk/internal/service"
	tg "github.com/set-night/gptdesk/internal/telegram"
)

func (h *Handler) handleLogin(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	// the key should not linger in the chat history
	if _, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: update.Message.ID,
	}); err != nil {
		slog.Debug("delete login message", "chat_id", chatID, "error", err)
	}

	apiKey, model := parseLogin(update.Message.Text)
	if apiKey == "" {
		h.reply(ctx, b, chatID, loginHint)
		return
	}

	stopTyping := tg.StartTyping(ctx, b, chatID)
	sess, err := h.chat.Login(ctx, middleware.SessionID(chatID), apiKey, model)
	stopTyping()
	if err != nil {
		slog.Info("telegram login rejected", "chat_id", chatID, "error", err)
		h.reply(ctx, b, chatID, userError(err))
		return
	}

	h.reply(ctx, b, chatID, fmt.Sprintf("✅ Logged in. Model: %s\nAsk anything, or send a document to attach it.", sess.Model()))
}

func (h *Handler) handleLogout(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if sess := middleware.GetSession(ctx); sess != nil {
		h.chat.Logout(sess)
	}
	h.reply(ctx, b, update.Message.Chat.ID, "👋 Logged out. Your history stays stored under your key.")
}

// session returns the chat's session or tells the user to log in.
func (h *Handler) session(ctx context.Context, b *bot.Bot, chatID int64) (*service.Session, bool) {
	sess := middleware.GetSession(ctx)
	if sess == nil {
		h.reply(ctx, b, chatID, loginHint)
		return nil, false
	}
	return sess, true
}
