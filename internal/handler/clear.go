package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func (h *Handler) handleClear(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	sess, ok := h.session(ctx, b, chatID)
	if !ok {
		return
	}

	if err := h.chat.Clear(ctx, sess); err != nil {
		slog.Error("clear session", "chat_id", chatID, "error", err)
		h.reply(ctx, b, chatID, userError(err))
		return
	}
	h.reply(ctx, b, chatID, "🔄 Conversation cleared. Files and usage were reset too.")
}

func (h *Handler) handleDetach(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	sess, ok := h.session(ctx, b, chatID)
	if !ok {
		return
	}
	if sess.Attached() == nil {
		h.reply(ctx, b, chatID, "No file is attached.")
		return
	}
	h.chat.DetachFile(sess)
	h.reply(ctx, b, chatID, "📎 File detached.")
}
