package telegram

import (
	"strings"
	"unicode/utf8"
)

const fence = "```"

// SplitMessage splits text into parts of at most maxLen runes. It prefers to
// break at a newline, then at a space, in the second half of a part. A code
// block cut in two is closed at the end of one part and reopened in the next.
func SplitMessage(text string, maxLen int) []string {
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	// room for a closing fence and newline
	budget := maxLen - len(fence) - 1
	if budget < 1 {
		budget = maxLen
	}

	var parts []string
	reopen := ""
	runes := []rune(text)
	for len(runes) > 0 {
		if reopen != "" {
			runes = append([]rune(reopen), runes...)
		}
		if len(runes) <= maxLen {
			parts = append(parts, string(runes))
			break
		}

		splitAt := splitPoint(runes, budget)
		part := string(runes[:splitAt])
		runes = runes[splitAt:]

		reopen = ""
		if strings.Count(part, fence)%2 != 0 {
			part = strings.TrimRight(part, "\n") + "\n" + fence
			reopen = fence + "\n"
		}
		parts = append(parts, part)
	}

	return parts
}

func splitPoint(runes []rune, limit int) int {
	if limit >= len(runes) {
		return len(runes)
	}
	chunk := string(runes[:limit])
	if i := strings.LastIndex(chunk, "\n"); i >= 0 {
		if n := utf8.RuneCountInString(chunk[:i]) + 1; n > limit/2 {
			return n
		}
	}
	if i := strings.LastIndex(chunk, " "); i >= 0 {
		if n := utf8.RuneCountInString(chunk[:i]) + 1; n > limit/2 {
			return n
		}
	}
	return limit
}

// Truncate shortens text to maxLen runes, marking the cut with an ellipsis.
func Truncate(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	return string([]rune(text)[:maxLen-3]) + "..."
}

// FixMarkdown closes an unterminated code block or inline code span so a
// partial reply still renders as Markdown.
func FixMarkdown(text string) string {
	if strings.Count(text, fence)%2 != 0 {
		text += "\n" + fence
	}
	return fixInlineCode(text)
}

func fixInlineCode(text string) string {
	var builder strings.Builder
	builder.Grow(len(text) + 1)

	inCodeBlock := false
	inlineOpen := false
	for i := 0; i < len(text); i++ {
		if strings.HasPrefix(text[i:], fence) {
			if inlineOpen {
				builder.WriteByte('`')
				inlineOpen = false
			}
			inCodeBlock = !inCodeBlock
			builder.WriteString(fence)
			i += len(fence) - 1
			continue
		}
		if !inCodeBlock && text[i] == '`' {
			inlineOpen = !inlineOpen
		}
		builder.WriteByte(text[i])
	}

	if inlineOpen {
		builder.WriteByte('`')
	}
	return builder.String()
}
