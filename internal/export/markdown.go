package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/set-night/gptdesk/internal/domain"
)

// MarkdownExporter writes a readable conversation log. Message content is
// written as is, since replies are usually Markdown already.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(t *Transcript, w io.Writer) error {
	var sb strings.Builder

	sb.WriteString("# Conversation\n\n")
	fmt.Fprintf(&sb, "**Key:** %s  \n", t.Key)
	fmt.Fprintf(&sb, "**Exported:** %s  \n", t.ExportedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "**Turns:** %d  \n", t.Usage.Turns)
	fmt.Fprintf(&sb, "**Tokens:** %d (%d prompt, %d completion)  \n", t.Usage.TotalTokens, t.Usage.PromptTokens, t.Usage.CompletionTokens)
	fmt.Fprintf(&sb, "**Estimated cost:** %s\n\n", t.Usage.Cost)

	if len(t.Files) > 0 {
		sb.WriteString("## Files\n\n")
		for _, f := range t.Files {
			fmt.Fprintf(&sb, "- `%s` (%s, %d tokens)\n", f.Name, f.Language, f.Tokens)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Messages\n\n")
	for i, m := range t.Messages {
		fmt.Fprintf(&sb, "### %s\n\n%s\n\n", roleTitle(m.Role), strings.TrimRight(m.Content, "\n"))
		if i < len(t.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (e *MarkdownExporter) Extension() string {
	return "md"
}

func roleTitle(r domain.Role) string {
	switch r {
	case domain.RoleUser:
		return "User"
	case domain.RoleAssistant:
		return "Assistant"
	}
	return string(r)
}
