package service

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/set-night/gptdesk/internal/config"
)

// DetectLanguage guesses a display label for source code: first from the
// content, then from the file name, and finally "Plain Text". It never fails.
func DetectLanguage(filename, content string) string {
	if lexer := lexers.Analyse(content); usable(lexer) {
		return lexer.Config().Name
	}
	if lexer := lexers.Match(filename); usable(lexer) {
		return lexer.Config().Name
	}
	return config.PlainTextLabel
}

func usable(lexer chroma.Lexer) bool {
	if lexer == nil || lexer.Config() == nil {
		return false
	}
	return lexer.Config().Name != "" && lexer.Config().Name != "plaintext"
}
