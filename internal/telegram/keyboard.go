package telegram

import (
	"github.com/go-telegram/bot/models"
	"github.com/set-night/gptdesk/internal/domain"
)

// ModelCallbackPrefix prefixes the callback data of model buttons.
const ModelCallbackPrefix = "m_"

// InlineButton creates a single inline keyboard button.
func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// InlineKeyboard creates an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// ButtonRow creates a row of inline buttons.
func ButtonRow(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}

// ModelKeyboard lays out one button per model, two per row, marking the
// selected one.
func ModelKeyboard(list []domain.AIModel, selected string) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton
	for _, m := range list {
		label := m.Name
		if m.ID == selected {
			label = "✅ " + label
		}
		row = append(row, InlineButton(label, ModelCallbackPrefix+m.ID))
		if len(row) == 2 {
			rows = append(rows, ButtonRow(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, ButtonRow(row...))
	}
	return InlineKeyboard(rows...)
}
