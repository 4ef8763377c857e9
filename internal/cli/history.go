package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/set-night/gptdesk/internal/domain"
	"github.com/set-night/gptdesk/internal/export"
	"github.com/spf13/cobra"
)

var errKeyRequired = errors.New("--key is required")

func newHistoryCmd(a *app) *cobra.Command {
	var (
		key   string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the stored conversation of an API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				return errKeyRequired
			}

			chat, store, err := a.newChatService(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			history, err := chat.History(cmd.Context(), key)
			if err != nil {
				return err
			}
			renderHistory(cmd.OutOrStdout(), key, history, limit)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "OpenAI API key the conversation is stored under")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the last n messages")
	return cmd
}

func renderHistory(w io.Writer, key string, history []domain.Message, limit int) {
	fmt.Fprintln(w, headerStyle.Render("Conversation "+export.MaskKey(key)))
	if len(history) == 0 {
		fmt.Fprintln(w, metaStyle.Render("No messages stored."))
		return
	}

	shown := history
	if limit > 0 && limit < len(history) {
		shown = history[len(history)-limit:]
		fmt.Fprintln(w, metaStyle.Render(fmt.Sprintf("Showing last %d of %d messages", limit, len(history))))
	}

	for _, m := range shown {
		label := userStyle.Render("You")
		if m.Role == domain.RoleAssistant {
			label = assistantStyle.Render("Assistant")
		}
		fmt.Fprintln(w, label)
		fmt.Fprintln(w, contentStyle.Render(strings.TrimRight(m.Text(), "\n")))
	}
}
