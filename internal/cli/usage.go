package cli

import (
	"fmt"
	"io"

	"github.com/set-night/gptdesk/internal/domain"
	"github.com/set-night/gptdesk/internal/export"
	"github.com/spf13/cobra"
)

func newUsageCmd(a *app) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show token usage and estimated cost of an API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				return errKeyRequired
			}

			chat, store, err := a.newChatService(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := chat.Record(cmd.Context(), key)
			if err != nil {
				return err
			}
			renderUsage(cmd.OutOrStdout(), key, rec)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "OpenAI API key the session is stored under")
	return cmd
}

func renderUsage(w io.Writer, key string, rec *domain.SessionRecord) {
	row := func(label, value string) {
		fmt.Fprintln(w, labelStyle.Render(label)+value)
	}

	fmt.Fprintln(w, headerStyle.Render("Usage "+export.MaskKey(key)))
	row("Turns", fmt.Sprint(rec.Usage.Turns))
	row("Messages", fmt.Sprint(len(rec.Messages)))
	row("Files", fmt.Sprint(len(rec.Files)))
	row("Prompt tokens", fmt.Sprint(rec.Usage.PromptTokens))
	row("Completion tokens", fmt.Sprint(rec.Usage.CompletionTokens))
	row("Total tokens", fmt.Sprint(rec.Usage.TotalTokens()))
	row("Estimated cost", domain.FormatCost(rec.Usage.Cost))
}
