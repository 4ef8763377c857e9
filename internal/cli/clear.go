package cli

import (
	"fmt"

	"github.com/set-night/gptdesk/internal/export"
	"github.com/spf13/cobra"
)

func newClearCmd(a *app) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the transcript, files and usage of an API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				return errKeyRequired
			}

			chat, store, err := a.newChatService(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := chat.ClearKey(cmd.Context(), key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared session %s\n", export.MaskKey(key))
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "OpenAI API key the session is stored under")
	return cmd
}
