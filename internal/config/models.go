package config

import (
	"sort"
	"strings"

	"github.com/set-night/gptdesk/internal/domain"
)

// Models is the static model registry. Prices are USD per 1000 tokens.
var Models = []domain.AIModel{
	{ID: "gpt-4o-mini", Name: "GPT-4o mini", ContextLength: 128000, PromptPrice: 0.00015, CompletionPrice: 0.0006},
	{ID: "gpt-4o", Name: "GPT-4o", ContextLength: 128000, PromptPrice: 0.0025, CompletionPrice: 0.01},
	{ID: "gpt-4-turbo", Name: "GPT-4 Turbo", ContextLength: 128000, PromptPrice: 0.01, CompletionPrice: 0.03},
	{ID: "gpt-4", Name: "GPT-4", ContextLength: 8192, PromptPrice: 0.03, CompletionPrice: 0.06},
	{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo", ContextLength: 4096, PromptPrice: 0.0005, CompletionPrice: 0.0015},
}

// LookupModel returns the registry entry for id.
func LookupModel(id string) (domain.AIModel, bool) {
	for _, m := range Models {
		if m.ID == id {
			return m, true
		}
	}
	return domain.AIModel{}, false
}

func IsKnownModel(id string) bool {
	_, ok := LookupModel(id)
	return ok
}

// ModelLimit returns the context window of a model, DefaultModelLimit when unknown.
func ModelLimit(id string) int {
	if m, ok := LookupModel(id); ok {
		return m.ContextLength
	}
	return DefaultModelLimit
}

// UsableTokens is the input budget of a model once the reply allowance is reserved.
func UsableTokens(id string) int {
	return ModelLimit(id) - ReservedResponseTokens
}

// SupportedFiles maps ingestible extensions to a human description.
var SupportedFiles = map[string]string{
	"txt":   "Text files",
	"pdf":   "PDF documents",
	"docx":  "Word documents",
	"py":    "Python source code",
	"java":  "Java source code",
	"cpp":   "C++ source code",
	"c":     "C source code",
	"js":    "JavaScript source code",
	"ts":    "TypeScript source code",
	"html":  "HTML files",
	"css":   "CSS files",
	"json":  "JSON files",
	"xml":   "XML files",
	"yaml":  "YAML files",
	"sql":   "SQL files",
	"r":     "R source code",
	"swift": "Swift source code",
	"kt":    "Kotlin source code",
	"go":    "Go source code",
	"rs":    "Rust source code",
}

// SupportedExtensions returns the ingestible extensions in sorted order.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(SupportedFiles))
	for ext := range SupportedFiles {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// SupportedFilesHelp renders "ext (description)" pairs for help text.
func SupportedFilesHelp() string {
	parts := make([]string, 0, len(SupportedFiles))
	for _, ext := range SupportedExtensions() {
		parts = append(parts, ext+" ("+SupportedFiles[ext]+")")
	}
	return strings.Join(parts, ", ")
}
