package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func (h *Handler) handleUsage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	sess, ok := h.session(ctx, b, chatID)
	if !ok {
		return
	}

	usage, err := h.chat.Usage(ctx, sess.APIKey)
	if err != nil {
		slog.Error("load usage", "chat_id", chatID, "error", err)
		h.reply(ctx, b, chatID, userError(err))
		return
	}
	_, _ = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      usageText(sess.Model(), usage),
		ParseMode: models.ParseModeMarkdownV1,
	})
}

func (h *Handler) handleFiles(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	sess, ok := h.session(ctx, b, chatID)
	if !ok {
		return
	}

	files, err := h.chat.Files(ctx, sess.APIKey)
	if err != nil {
		slog.Error("load files", "chat_id", chatID, "error", err)
		h.reply(ctx, b, chatID, userError(err))
		return
	}
	h.reply(ctx, b, chatID, filesText(files, sess.Attached()))
}
