package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sri/dash-to-meeting/internal/app"
)

var (
	openBrowser bool
	listenFlag  string
)

var serveCmd = &cobra.Command{
	Use:   "serve [source]",
	Short: "Run the local widget server",
	Long: `Serve the meeting widget on a local port: an event-card page, the
events API, and the /open endpoint that launches a clicked meeting link.
The server exits after a link has been opened, like the desktop widget
it replaces.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if listenFlag != "" {
			cfg.Listen = listenFlag
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return app.Serve(ctx, cfg, sourceArg(args), openBrowser, cmd.OutOrStdout())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&openBrowser, "open-browser", false, "open the widget in the default browser")
	serveCmd.Flags().StringVar(&listenFlag, "listen", "", "listen address (port 0 picks a free port)")
}
