package cmd

import (
	"github.com/spf13/cobra"

	"github.com/theirongolddev/gcusage/internal/model"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily usage table",
	Long:  "Per-day token totals. Without --since/--until this is today only.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runReport(cmd, model.PeriodDay, true)
	},
}

func init() {
	rootCmd.AddCommand(dailyCmd)
}
