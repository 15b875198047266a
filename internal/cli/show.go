package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"elder-risk-aggregator/internal/app"
)

var (
	showSubject string
	showLimit   int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display a subject's recent snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showSubject == "" {
			return fmt.Errorf("--subject is required")
		}
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			SubjectID: showSubject,
			Limit:     showLimit,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().StringVar(&showSubject, "subject", "", "Subject id to display")
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of snapshots to display")
}
