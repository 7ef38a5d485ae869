package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sri/dash-to-meeting/internal/app"
)

var dumpJSON bool

var dumpCmd = &cobra.Command{
	Use:   "dump [source]",
	Short: "Print the normalized events to the console",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout+cfg.Timeout/2)
		defer cancel()
		return app.Dump(ctx, cfg, sourceArg(args), cmd.OutOrStdout(), dumpJSON)
	},
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpJSON, "json", false, "emit the raw JSON array")
}
