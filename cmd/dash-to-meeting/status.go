package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sri/dash-to-meeting/internal/app"
)

var statusCmd = &cobra.Command{
	Use:   "status [source]",
	Short: "Emit a one-line JSON status for a desktop bar",
	Long: `Write {"text","tooltip","class"} on a single line: a countdown to the
next joinable meeting, or a dash when nothing is coming up. Errors fall
back to the last snapshot before reporting an error state.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout+cfg.Timeout/2)
		defer cancel()
		return app.Status(ctx, cfg, sourceArg(args), cmd.OutOrStdout())
	},
}
