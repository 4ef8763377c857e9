package config

import "time"

const (
	// Tokens held back from a model's context window for the reply.
	ReservedResponseTokens = 1000

	// Context window assumed for models outside the registry.
	DefaultModelLimit = 4096

	// Fallback prices (USD per 1000 tokens) for models outside the registry.
	DefaultPromptPricePer1K     = 0.01
	DefaultCompletionPricePer1K = 0.03

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Largest document the Bot API lets a bot download.
	MaxTelegramDownloadBytes = 20 << 20

	// Minimum gap between progressive edits of a streamed Telegram reply.
	StreamEditInterval = 1200 * time.Millisecond

	// Upload size accepted by the browser transport before ingestion.
	MaxUploadBytes = 32 << 20

	// Session cookie used by the browser transport.
	SessionCookieName = "gptdesk_session"

	// Label used when no language can be detected.
	PlainTextLabel = "Plain Text"
)
