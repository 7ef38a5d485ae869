package main

import (
	"github.com/spf13/cobra"

	"github.com/sri/dash-to-meeting/internal/app"
)

var joinItem int

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Open the next meeting link from the last snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if joinItem > 0 {
			return app.JoinItem(cfg, joinItem)
		}
		return app.JoinNext(cfg)
	},
}

func init() {
	joinCmd.Flags().IntVar(&joinItem, "item", 0, "open the Nth upcoming event instead of the next joinable one")
}
