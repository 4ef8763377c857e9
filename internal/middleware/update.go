package middleware

import "github.com/go-telegram/bot/models"

// ChatID returns the chat an update belongs to, 0 when it has none.
func ChatID(update *models.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil:
		return update.CallbackQuery.Message.Message.Chat.ID
	}
	return 0
}

func updateType(update *models.Update) string {
	switch {
	case update.Message != nil && update.Message.Document != nil:
		return "document"
	case update.Message != nil:
		return "message"
	case update.CallbackQuery != nil:
		return "callback_query"
	}
	return "unknown"
}
