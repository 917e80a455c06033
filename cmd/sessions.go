package cmd

import (
	"github.com/spf13/cobra"

	"github.com/theirongolddev/gcusage/internal/model"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Per-session usage for today",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runReport(cmd, model.PeriodSession, true)
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
