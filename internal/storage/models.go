package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"elder-risk-aggregator/internal/snapshot"
)

// SnapshotRecord is one persisted aggregation result: headline metrics in
// queryable columns, the full snapshot as a JSON payload.
type SnapshotRecord struct {
	SubjectID          string
	FetchedAt          time.Time
	WindowDays         int
	AvgSentiment       decimal.Decimal
	MedicineAdherence  decimal.Decimal
	MaxInactivityHours decimal.Decimal
	EatingIrregularity decimal.Decimal
	SleepQuality       decimal.Decimal
	FallCount          int
	EmergencyPresses   int
	DegradedDomains    []string
	Snapshot           json.RawMessage
	CreatedAt          time.Time
}

// NewSnapshotRecord flattens an assembled snapshot into its persisted form.
func NewSnapshotRecord(subjectID string, snap *snapshot.Snapshot) (SnapshotRecord, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return SnapshotRecord{}, fmt.Errorf("marshal snapshot: %w", err)
	}

	return SnapshotRecord{
		SubjectID:          subjectID,
		FetchedAt:          snap.FetchedAt,
		WindowDays:         snap.Window.Days,
		AvgSentiment:       decimal.NewFromFloat(snap.Chat.AvgSentiment),
		MedicineAdherence:  decimal.NewFromFloat(snap.Health.MedicineAdherence),
		MaxInactivityHours: decimal.NewFromFloat(snap.Vision.MaxInactivityHours),
		EatingIrregularity: decimal.NewFromFloat(snap.Activity.EatingIrregularity),
		SleepQuality:       decimal.NewFromFloat(snap.Activity.SleepQuality),
		FallCount:          snap.Vision.FallCount,
		EmergencyPresses:   snap.Health.EmergencyPresses,
		DegradedDomains:    snap.DegradedDomains,
		Snapshot:           payload,
	}, nil
}
