package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/set-night/gptdesk/internal/config"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

// app carries state shared by the commands of one invocation.
type app struct {
	cfg       *config.Config
	storePath string
	logLevel  string
	logCloser io.Closer
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "gptdesk",
		Short: "Chat with OpenAI models using your own API key",
		Long: `gptdesk is a small chat front-end for OpenAI models.

It keeps a transcript, processed files and usage per API key in one store,
and serves them through a browser UI or a Telegram bot.

Quick Start:
  gptdesk serve --open                 # Browser UI on http://127.0.0.1:8501
  gptdesk bot                          # Telegram bot (needs BOT_TOKEN)
  gptdesk history --key sk-...         # Print a stored conversation
  gptdesk export --key sk-... -f md    # Export it`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logCloser != nil {
				return a.logCloser.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.storePath, "store", "", "Path of the JSON session store (overrides STORE_PATH)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newServeCmd(a),
		newBotCmd(a),
		newHistoryCmd(a),
		newExportCmd(a),
		newClearCmd(a),
		newUsageCmd(a),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.storePath != "" {
		cfg.StorePath = a.storePath
		cfg.StoreDriver = config.StoreDriverJSON
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg

	closer, err := setupLogging(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logCloser = closer
	return nil
}
