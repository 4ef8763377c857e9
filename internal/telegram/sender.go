package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/gptdesk/internal/config"
)

const MaxMessageLen = config.MaxTelegramMessageLen

// Messenger is the part of *bot.Bot used to deliver replies.
type Messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
}

// SendLongMessage sends text split into parts of at most MaxMessageLen.
// Falls back to plain text if Markdown parsing fails.
func SendLongMessage(ctx context.Context, m Messenger, chatID int64, text string, replyToID *int) error {
	for _, part := range SplitMessage(text, MaxMessageLen) {
		if err := sendPart(ctx, m, chatID, part, replyToID); err != nil {
			return err
		}
		replyToID = nil // only the first part is a reply
	}
	return nil
}

func sendPart(ctx context.Context, m Messenger, chatID int64, part string, replyToID *int) error {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      FixMarkdown(part),
		ParseMode: models.ParseModeMarkdownV1,
	}
	if replyToID != nil {
		params.ReplyParameters = &models.ReplyParameters{MessageID: *replyToID}
	}

	if _, err := m.SendMessage(ctx, params); err != nil {
		slog.Warn("markdown send failed, falling back to plain text", "error", err)
		params.Text = part
		params.ParseMode = ""
		if _, err := m.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}
	return nil
}

// EditLongMessage replaces the text of a message, truncating it to fit.
func EditLongMessage(ctx context.Context, m Messenger, chatID int64, messageID int, text string) error {
	text = Truncate(text, MaxMessageLen)

	_, err := m.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      FixMarkdown(text),
		ParseMode: models.ParseModeMarkdownV1,
	})
	if err != nil {
		_, err = m.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: messageID,
			Text:      text,
		})
	}
	if err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// StartTyping sends the "typing" action every 4 seconds until the returned
// cancel function is called.
func StartTyping(ctx context.Context, b *bot.Bot, chatID int64) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(4 * time.Second)
		defer ticker.Stop()
		for {
			_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{
				ChatID: chatID,
				Action: models.ChatActionTyping,
			})
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return cancel
}

// StreamReply grows a reply inside one placeholder message while deltas
// arrive. Edits are spaced by at least interval to stay under Telegram's
// edit rate limits.
type StreamReply struct {
	m         Messenger
	chatID    int64
	messageID int
	interval  time.Duration

	mu       sync.Mutex
	text     strings.Builder
	lastEdit time.Time
	shown    string
}

func NewStreamReply(m Messenger, chatID int64, messageID int, interval time.Duration) *StreamReply {
	return &StreamReply{
		m:         m,
		chatID:    chatID,
		messageID: messageID,
		interval:  interval,
		lastEdit:  time.Now(),
	}
}

// Append adds a delta and edits the placeholder if the interval has passed.
func (s *StreamReply) Append(ctx context.Context, delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text.WriteString(delta)
	if time.Since(s.lastEdit) < s.interval {
		return
	}
	s.edit(ctx, Truncate(s.text.String(), MaxMessageLen))
}

// Text returns everything appended so far.
func (s *StreamReply) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text.String()
}

// Finish writes the final text: the first part replaces the placeholder and
// any overflow is sent as follow-up messages.
func (s *StreamReply) Finish(ctx context.Context, final string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := SplitMessage(final, MaxMessageLen)
	if parts[0] != s.shown {
		if err := EditLongMessage(ctx, s.m, s.chatID, s.messageID, parts[0]); err != nil {
			return err
		}
		s.shown = parts[0]
	}
	for _, part := range parts[1:] {
		if err := sendPart(ctx, s.m, s.chatID, part, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *StreamReply) edit(ctx context.Context, text string) {
	s.lastEdit = time.Now()
	if text == "" || text == s.shown {
		return
	}
	if err := EditLongMessage(ctx, s.m, s.chatID, s.messageID, text); err != nil {
		slog.Debug("progressive edit failed", "chat_id", s.chatID, "error", err)
		return
	}
	s.shown = text
}
