package export

import (
	"sort"
	"time"

	"github.com/set-night/gptdesk/internal/domain"
)

// Transcript is the exported form of one key's stored session. File
// contents are left out; the API key is masked.
type Transcript struct {
	Key        string    `json:"key" yaml:"key"`
	ExportedAt time.Time `json:"exportedAt" yaml:"exportedAt"`
	Messages   []Message `json:"messages" yaml:"messages"`
	Files      []File    `json:"files" yaml:"files"`
	Usage      Usage     `json:"usage" yaml:"usage"`
}

type Message struct {
	Role    domain.Role `json:"role" yaml:"role"`
	Content string      `json:"content" yaml:"content"`
}

type File struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Language string `json:"language" yaml:"language"`
	Size     int64  `json:"size" yaml:"size"`
	Tokens   int    `json:"tokens" yaml:"tokens"`
}

type Usage struct {
	PromptTokens     int    `json:"promptTokens" yaml:"promptTokens"`
	CompletionTokens int    `json:"completionTokens" yaml:"completionTokens"`
	TotalTokens      int    `json:"totalTokens" yaml:"totalTokens"`
	Turns            int    `json:"turns" yaml:"turns"`
	Cost             string `json:"cost" yaml:"cost"`
}

// NewTranscript builds the export view of rec.
func NewTranscript(apiKey string, rec *domain.SessionRecord, now time.Time) *Transcript {
	t := &Transcript{
		Key:        MaskKey(apiKey),
		ExportedAt: now.UTC(),
		Messages:   make([]Message, 0, len(rec.Messages)),
		Files:      make([]File, 0, len(rec.Files)),
		Usage: Usage{
			PromptTokens:     rec.Usage.PromptTokens,
			CompletionTokens: rec.Usage.CompletionTokens,
			TotalTokens:      rec.Usage.TotalTokens(),
			Turns:            rec.Usage.Turns,
			Cost:             domain.FormatCost(rec.Usage.Cost),
		},
	}
	for _, m := range rec.Messages {
		t.Messages = append(t.Messages, Message{Role: m.Role, Content: m.Text()})
	}
	for _, f := range rec.Files {
		t.Files = append(t.Files, File{Name: f.Name, Type: f.MimeType, Language: f.Language, Size: f.Size, Tokens: f.Tokens})
	}
	sort.Slice(t.Files, func(i, j int) bool { return t.Files[i].Name < t.Files[j].Name })
	return t
}

// MaskKey keeps the prefix and the last four characters of an API key.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	prefix := ""
	if len(key) > 3 && key[:3] == "sk-" {
		prefix = "sk-"
	}
	return prefix + "..." + key[len(key)-4:]
}
