package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"elder-risk-aggregator/internal/app"
)

var (
	snapshotSubject   string
	snapshotDays      int
	snapshotNoPersist bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Aggregate one subject's signals and print the snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if snapshotSubject == "" {
			return fmt.Errorf("--subject is required")
		}

		opts := app.SnapshotOptions{
			SubjectID:  snapshotSubject,
			WindowDays: snapshotDays,
			NoPersist:  snapshotNoPersist,
		}

		return getApp().Snapshot(cmd.Context(), opts)
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotSubject, "subject", "", "Subject id to aggregate")
	snapshotCmd.Flags().IntVar(&snapshotDays, "days", 0, "Window length in days (defaults to config)")
	snapshotCmd.Flags().BoolVar(&snapshotNoPersist, "no-persist", false, "Skip writing the snapshot to the database")
}
