package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/gptdesk/internal/middleware"
	tg "github.com/set-night/gptdesk/internal/telegram"
)

func (h *Handler) handleModels(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	sess, ok := h.session(ctx, b, chatID)
	if !ok {
		return
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        fmt.Sprintf("🤖 Current model: %s\nChoose another:", sess.Model()),
		ReplyMarkup: tg.ModelKeyboard(h.chat.AvailableModels(), sess.Model()),
	})
	if err != nil {
		slog.Error("send models keyboard", "error", err)
	}
}

func (h *Handler) handleModelSelect(ctx context.Context, b *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	answer := func(text string) {
		_, _ = b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: cq.ID,
			Text:            text,
		})
	}

	sess := middleware.GetSession(ctx)
	if sess == nil {
		answer("Log in first with /login")
		return
	}

	modelID := strings.TrimPrefix(cq.Data, tg.ModelCallbackPrefix)
	if err := h.chat.SetModel(sess, modelID); err != nil {
		answer(userError(err))
		return
	}
	answer("Model set to " + modelID)

	if msg := cq.Message.Message; msg != nil {
		_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      msg.Chat.ID,
			MessageID:   msg.ID,
			Text:        fmt.Sprintf("🤖 Current model: %s\nChoose another:", sess.Model()),
			ReplyMarkup: tg.ModelKeyboard(h.chat.AvailableModels(), sess.Model()),
		})
		if err != nil {
			slog.Debug("refresh models keyboard", "error", err)
		}
	}
}
