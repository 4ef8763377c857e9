package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/set-night/gptdesk/internal/config"
	"github.com/set-night/gptdesk/internal/domain"
)

const loginHint = "🔑 Log in first: /login <OpenAI API key> [model]"

func helpText(firstName string) string {
	var sb strings.Builder
	if firstName != "" {
		fmt.Fprintf(&sb, "👋 Hi, *%s*!\n\n", firstName)
	}
	sb.WriteString("I forward your questions to OpenAI using your own API key.\n\n")
	sb.WriteString("📋 *Commands:*\n")
	sb.WriteString("/login <key> [model] — Start a session\n")
	sb.WriteString("/models — Choose a model\n")
	sb.WriteString("/usage — Tokens and cost so far\n")
	sb.WriteString("/files — Files processed in this session\n")
	sb.WriteString("/detach — Stop sending the attached file\n")
	sb.WriteString("/clear — Clear the conversation\n")
	sb.WriteString("/logout — Forget the key in this chat\n\n")
	sb.WriteString("📎 Send a document to attach it to your next questions.\n")
	sb.WriteString("Supported: " + config.SupportedFilesHelp())
	return sb.String()
}

// parseLogin splits "/login <key> [model]".
func parseLogin(text string) (apiKey, model string) {
	fields := strings.Fields(text)
	if len(fields) > 1 {
		apiKey = fields[1]
	}
	if len(fields) > 2 {
		model = fields[2]
	}
	return apiKey, model
}

func usageText(model string, u domain.Usage) string {
	return fmt.Sprintf(
		"📊 *Usage*\n\nModel: `%s`\nTurns: %d\nPrompt tokens: %s\nCompletion tokens: %s\nTotal: %s tokens\nEstimated cost: %s",
		model,
		u.Turns,
		domain.FormatTokens(u.PromptTokens),
		domain.FormatTokens(u.CompletionTokens),
		domain.FormatTokens(u.TotalTokens()),
		domain.FormatCost(u.Cost),
	)
}

func turnFooter(promptTokens, completionTokens int, cost domain.Cost) string {
	return fmt.Sprintf("💰 %s | 📊 %s→%s tokens",
		domain.FormatCost(cost.TotalCost),
		domain.FormatTokens(promptTokens),
		domain.FormatTokens(completionTokens),
	)
}

func filesText(files []domain.FileInfo, attached *domain.FileInfo) string {
	if len(files) == 0 {
		return "📂 No files processed yet. Send a document to attach it."
	}
	var sb strings.Builder
	sb.WriteString("📂 Processed files:\n")
	for _, f := range files {
		mark := "•"
		if attached != nil && attached.Name == f.Name {
			mark = "📎"
		}
		fmt.Fprintf(&sb, "%s %s (%s, %d tokens)\n", mark, f.Name, f.Language, f.Tokens)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// userError turns a service error into the text shown in the chat.
func userError(err error) string {
	var remote *domain.RemoteError
	switch {
	case errors.Is(err, domain.ErrEmptyAPIKey):
		return loginHint
	case errors.Is(err, domain.ErrTurnInProgress):
		return "⏳ Wait for the answer to the previous message."
	case errors.Is(err, domain.ErrModelNotFound):
		return "❌ Unknown model. Use /models to choose one."
	case errors.Is(err, domain.ErrStoreCorrupt):
		return "❌ The session store could not be read."
	case errors.As(err, &remote):
		return "❌ " + remote.Message
	case errors.Is(err, domain.ErrUnsupportedFileType),
		errors.Is(err, domain.ErrFileTooLarge),
		errors.Is(err, domain.ErrFileProcessing),
		errors.Is(err, domain.ErrPromptTooLarge),
		errors.Is(err, domain.ErrEmptyPrompt):
		return "❌ " + err.Error()
	}
	return "❌ Something went wrong. Please try again."
}
