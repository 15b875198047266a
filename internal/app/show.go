package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
)

// ShowOptions parameterise the recent-snapshot listing.
type ShowOptions struct {
	SubjectID string
	Limit     int
}

// Show prints a subject's recent snapshots.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show snapshots")
	}
	if closeStore != nil {
		defer closeStore()
	}

	records, err := store.ListRecentSnapshots(ctx, opts.SubjectID, opts.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "no snapshots found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Fetched (UTC)\tDays\tSentiment\tAdherence\tInactivity(h)\tIrregularity\tSleep\tFalls\tSOS\tDegraded")

	for _, record := range records {
		fmt.Fprintf(
			writer,
			"%s\t%d\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			record.FetchedAt.UTC().Format(time.RFC3339),
			record.WindowDays,
			formatDecimal(record.AvgSentiment, 3),
			formatDecimal(record.MedicineAdherence, 2),
			formatDecimal(record.MaxInactivityHours, 2),
			formatDecimal(record.EatingIrregularity, 2),
			formatDecimal(record.SleepQuality, 2),
			record.FallCount,
			record.EmergencyPresses,
			formatDegraded(record.DegradedDomains),
		)
	}

	writer.Flush()
	return nil
}

func formatDecimal(v decimal.Decimal, places int32) string {
	return v.StringFixed(places)
}

func formatDegraded(domains []string) string {
	if len(domains) == 0 {
		return "-"
	}
	return strings.Join(domains, ",")
}
