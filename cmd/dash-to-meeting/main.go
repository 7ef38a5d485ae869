package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sri/dash-to-meeting/internal/config"
	"github.com/sri/dash-to-meeting/internal/logging"
)

var (
	verbose    bool
	sourceFlag string
	cfg        config.Runtime
)

var rootCmd = &cobra.Command{
	Use:   "dash-to-meeting",
	Short: "Calendar widget that gets you into your next meeting in one click",
	Long: `dash-to-meeting fetches an ICS/iCal calendar feed, extracts upcoming
events and their video-conferencing links, and presents them through a
local widget page, a console dump, or a status-bar line. One click (or
one command) launches the meeting link with the OS opener.

The source may be an http/https/webcal URL, a local file path, a
file:// URL, or the name of an entry in the sources file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVarP(&sourceFlag, "source", "s", "", "calendar source (URL, path, or sources file entry)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(joinCmd)
}

// sourceArg lets the source be given either positionally or with -s.
func sourceArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return sourceFlag
}
