package handler

import (
	"github.com/go-telegram/bot"
	"github.com/set-night/gptdesk/internal/service"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot  *bot.Bot
	chat *service.ChatService
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot  *bot.Bot
	Chat *service.ChatService
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:  deps.Bot,
		chat: deps.Chat,
	}
}
