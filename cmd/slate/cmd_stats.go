package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show dashboard statistics from a running server",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, status, err := apiRequest("GET", "/api/stats/dashboard", nil)
		if err != nil {
			return err
		}
		if status >= 400 {
			return fmt.Errorf("GET /api/stats/dashboard: status %d", status)
		}
		printJSON(data)
		return nil
	},
}

func init() {
	addClientFlags(statsCmd)
	rootCmd.AddCommand(statsCmd)
}
