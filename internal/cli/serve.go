package cli

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/set-night/gptdesk/internal/httpserver"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr string
		open bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.HTTPAddr
			}
			if cmd.Flags().Changed("open") {
				a.cfg.OpenBrowser = open
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			chat, store, err := a.newChatService(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if a.cfg.OpenBrowser {
				go openWhenListening(ctx, addr)
			}

			return httpserver.New(chat).Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides HTTP_ADDR)")
	cmd.Flags().BoolVar(&open, "open", false, "Open the UI in the default browser")
	return cmd
}

// openWhenListening opens the UI once addr accepts connections.
func openWhenListening(ctx context.Context, addr string) {
	url := "http://" + browserHost(addr)
	for i := 0; i < 50; i++ {
		conn, err := net.DialTimeout("tcp", browserHost(addr), 200*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			if err := browser.OpenURL(url); err != nil {
				slog.Warn("open browser", "url", url, "error", err)
			}
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
	slog.Warn("server not reachable, not opening browser", "url", url)
}

// browserHost turns a listen address into one a browser can reach.
func browserHost(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}

