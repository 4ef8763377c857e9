package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/gptdesk/internal/config"
	"github.com/set-night/gptdesk/internal/domain"
	"github.com/set-night/gptdesk/internal/service"
	tg "github.com/set-night/gptdesk/internal/telegram"
)

// HandleMessage processes plain text and documents in private chats.
// A document with a caption is attached and the caption is asked right away.
func (h *Handler) HandleMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.Chat.Type != models.ChatTypePrivate {
		return
	}

	// Skip unknown commands
	if strings.HasPrefix(msg.Text, "/") {
		h.reply(ctx, b, msg.Chat.ID, "Unknown command. See /help.")
		return
	}

	sess, ok := h.session(ctx, b, msg.Chat.ID)
	if !ok {
		return
	}

	prompt := msg.Text
	if msg.Document != nil {
		if !h.attachDocument(ctx, b, msg, sess) {
			return
		}
		prompt = msg.Caption
	}
	if strings.TrimSpace(prompt) == "" {
		return
	}

	h.runTurn(ctx, b, msg, sess, prompt)
}

func (h *Handler) attachDocument(ctx context.Context, b *bot.Bot, msg *models.Message, sess *service.Session) bool {
	chatID := msg.Chat.ID
	doc := msg.Document

	data, err := tg.DownloadDocument(ctx, b, doc, config.MaxTelegramDownloadBytes)
	if err != nil {
		if errors.Is(err, tg.ErrDocumentTooLarge) {
			h.reply(ctx, b, chatID, "❌ Telegram only lets bots download files up to 20 MB.")
			return false
		}
		slog.Error("download document", "chat_id", chatID, "file", doc.FileName, "error", err)
		h.reply(ctx, b, chatID, "❌ Could not download the file.")
		return false
	}

	res, err := h.chat.UploadFile(ctx, sess, doc.FileName, data, doc.MimeType)
	if err != nil {
		slog.Info("document rejected", "chat_id", chatID, "file", doc.FileName, "error", err)
		h.reply(ctx, b, chatID, userError(err))
		return false
	}

	status := "✅ File processed successfully"
	if res.Cached {
		status = "♻️ Using cached file information"
	}
	h.reply(ctx, b, chatID, fmt.Sprintf("%s\n📎 %s (%s, %d tokens) is attached to your next questions. /detach to stop.",
		status, res.File.Name, res.File.Language, res.File.Tokens))
	return true
}

// runTurn streams the reply into a placeholder message, then adds a cost line.
func (h *Handler) runTurn(ctx context.Context, b *bot.Bot, msg *models.Message, sess *service.Session, prompt string) {
	chatID := msg.Chat.ID

	stopTyping := tg.StartTyping(ctx, b, chatID)
	defer stopTyping()

	placeholder, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            "⏳ Thinking...",
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
	})
	if err != nil {
		slog.Error("send placeholder", "chat_id", chatID, "error", err)
		return
	}

	stream := tg.NewStreamReply(b, chatID, placeholder.ID, config.StreamEditInterval)
	res, err := h.chat.Submit(ctx, sess, prompt, func(delta string) {
		stream.Append(ctx, delta)
	})
	stopTyping()

	if err != nil {
		if !errors.Is(err, domain.ErrPromptTooLarge) && !errors.Is(err, domain.ErrTurnInProgress) {
			slog.Error("telegram turn", "chat_id", chatID, "error", err)
		}
		_ = tg.EditLongMessage(ctx, b, chatID, placeholder.ID, userError(err))
		return
	}
	if res.Err != nil {
		_ = tg.EditLongMessage(ctx, b, chatID, placeholder.ID, "❌ "+res.Reply)
		return
	}

	if err := stream.Finish(ctx, res.Reply); err != nil {
		slog.Error("deliver reply", "chat_id", chatID, "error", err)
		return
	}
	h.reply(ctx, b, chatID, turnFooter(res.PromptTokens, res.CompletionTokens, res.Cost))
}
