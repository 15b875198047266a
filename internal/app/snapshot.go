package app

import (
	"context"
	"encoding/json"
	"os"

	"elder-risk-aggregator/internal/snapshot"
	"elder-risk-aggregator/internal/storage"
)

// SnapshotOptions parameterise a one-shot aggregation.
type SnapshotOptions struct {
	SubjectID  string
	WindowDays int
	NoPersist  bool
}

// Snapshot runs a single aggregation for one subject, prints the snapshot as
// indented JSON, and persists it when the database is configured.
func (a *App) Snapshot(ctx context.Context, opts SnapshotOptions) error {
	opts.WindowDays = a.Config.ResolveWindowDays(opts.WindowDays)

	stores, client := a.newStores(ctx)
	defer disconnect(client, a.Logger)

	agg := a.newAggregator(stores)
	snap, err := agg.Aggregate(ctx, opts.SubjectID, opts.WindowDays)
	if err != nil {
		return err
	}

	if !opts.NoPersist {
		if err := a.persistSnapshot(ctx, opts.SubjectID, snap); err != nil {
			return err
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(snap)
}

func (a *App) persistSnapshot(ctx context.Context, subjectID string, snap *snapshot.Snapshot) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return nil
	}
	if closeStore != nil {
		defer closeStore()
	}

	record, err := storage.NewSnapshotRecord(subjectID, snap)
	if err != nil {
		return err
	}
	return store.UpsertSnapshot(ctx, record)
}
