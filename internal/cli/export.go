package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/set-night/gptdesk/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		key    string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored conversation of an API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				return errKeyRequired
			}
			exporter, err := export.NewExporter(format)
			if err != nil {
				return err
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

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if err := exporter.Export(export.NewTranscript(key, rec, time.Now()), w); err != nil {
				return fmt.Errorf("export %s: %w", exporter.Extension(), err)
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d messages to %s\n", len(rec.Messages), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "OpenAI API key the conversation is stored under")
	cmd.Flags().StringVarP(&format, "format", "f", "md", "Export format: json, yaml, md")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}
