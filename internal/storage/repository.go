package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotConfigured indicates the storage pool was not initialised.
var ErrNotConfigured = errors.New("storage: pool not configured")

const (
	upsertSnapshotSQL = `INSERT INTO risk_snapshots (
        subject_id,
        fetched_at,
        window_days,
        avg_sentiment,
        medicine_adherence,
        max_inactivity_hours,
        eating_irregularity,
        sleep_quality,
        fall_count,
        emergency_presses,
        degraded_domains,
        snapshot
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
    )
    ON CONFLICT (subject_id, fetched_at) DO UPDATE
    SET
        window_days          = EXCLUDED.window_days,
        avg_sentiment        = EXCLUDED.avg_sentiment,
        medicine_adherence   = EXCLUDED.medicine_adherence,
        max_inactivity_hours = EXCLUDED.max_inactivity_hours,
        eating_irregularity  = EXCLUDED.eating_irregularity,
        sleep_quality        = EXCLUDED.sleep_quality,
        fall_count           = EXCLUDED.fall_count,
        emergency_presses    = EXCLUDED.emergency_presses,
        degraded_domains     = EXCLUDED.degraded_domains,
        snapshot             = EXCLUDED.snapshot;`

	snapshotColumnsSQL = `subject_id,
        fetched_at,
        window_days,
        avg_sentiment,
        medicine_adherence,
        max_inactivity_hours,
        eating_irregularity,
        sleep_quality,
        fall_count,
        emergency_presses,
        degraded_domains,
        snapshot,
        created_at`

	listSnapshotsBetweenSQL = `SELECT ` + snapshotColumnsSQL + `
    FROM risk_snapshots
    WHERE subject_id = $1
      AND fetched_at >= $2
      AND fetched_at < $3
    ORDER BY fetched_at;`

	listRecentSnapshotsSQL = `SELECT ` + snapshotColumnsSQL + `
    FROM risk_snapshots
    WHERE subject_id = $1
    ORDER BY fetched_at DESC
    LIMIT $2;`

	countSnapshotsSQL = `SELECT COUNT(*) FROM risk_snapshots;`
)

// SnapshotStore defines operations for snapshot persistence.
type SnapshotStore interface {
	UpsertSnapshot(ctx context.Context, record SnapshotRecord) error
	ListSnapshotsBetween(ctx context.Context, subjectID string, from, to time.Time) ([]SnapshotRecord, error)
	ListRecentSnapshots(ctx context.Context, subjectID string, limit int) ([]SnapshotRecord, error)
	CountSnapshots(ctx context.Context) (int64, error)
}

// Store persists aggregation results in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// UpsertSnapshot persists or replaces one aggregation result.
func (s *Store) UpsertSnapshot(ctx context.Context, record SnapshotRecord) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	degraded := record.DegradedDomains
	if degraded == nil {
		degraded = []string{}
	}

	_, execErr := pool.Exec(ctx, upsertSnapshotSQL,
		record.SubjectID,
		record.FetchedAt,
		record.WindowDays,
		record.AvgSentiment.String(),
		record.MedicineAdherence.String(),
		record.MaxInactivityHours.String(),
		record.EatingIrregularity.String(),
		record.SleepQuality.String(),
		record.FallCount,
		record.EmergencyPresses,
		degraded,
		[]byte(record.Snapshot),
	)
	if execErr != nil {
		return fmt.Errorf("upsert snapshot: %w", execErr)
	}
	return nil
}

// ListSnapshotsBetween lists one subject's snapshots within a time window.
func (s *Store) ListSnapshotsBetween(ctx context.Context, subjectID string, from, to time.Time) ([]SnapshotRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listSnapshotsBetweenSQL, subjectID, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list snapshots between: %w", queryErr)
	}
	defer rows.Close()

	return collectSnapshotRows(rows)
}

// ListRecentSnapshots lists one subject's most recent snapshots, newest first.
func (s *Store) ListRecentSnapshots(ctx context.Context, subjectID string, limit int) ([]SnapshotRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentSnapshotsSQL, subjectID, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent snapshots: %w", queryErr)
	}
	defer rows.Close()

	return collectSnapshotRows(rows)
}

// CountSnapshots reports the total number of stored snapshots.
func (s *Store) CountSnapshots(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := pool.QueryRow(ctx, countSnapshotsSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return count, nil
}

func collectSnapshotRows(rows pgx.Rows) ([]SnapshotRecord, error) {
	records := make([]SnapshotRecord, 0)
	for rows.Next() {
		record, err := scanSnapshotRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return records, nil
}

func scanSnapshotRecord(rows pgx.Rows) (SnapshotRecord, error) {
	var (
		record                                                SnapshotRecord
		sentiment, adherence, inactivity, irregularity, sleep string
		payload                                               []byte
	)

	if err := rows.Scan(
		&record.SubjectID,
		&record.FetchedAt,
		&record.WindowDays,
		&sentiment,
		&adherence,
		&inactivity,
		&irregularity,
		&sleep,
		&record.FallCount,
		&record.EmergencyPresses,
		&record.DegradedDomains,
		&payload,
		&record.CreatedAt,
	); err != nil {
		return SnapshotRecord{}, fmt.Errorf("scan snapshot row: %w", err)
	}

	var err error
	if record.AvgSentiment, err = decimal.NewFromString(sentiment); err != nil {
		return SnapshotRecord{}, fmt.Errorf("parse avg_sentiment: %w", err)
	}
	if record.MedicineAdherence, err = decimal.NewFromString(adherence); err != nil {
		return SnapshotRecord{}, fmt.Errorf("parse medicine_adherence: %w", err)
	}
	if record.MaxInactivityHours, err = decimal.NewFromString(inactivity); err != nil {
		return SnapshotRecord{}, fmt.Errorf("parse max_inactivity_hours: %w", err)
	}
	if record.EatingIrregularity, err = decimal.NewFromString(irregularity); err != nil {
		return SnapshotRecord{}, fmt.Errorf("parse eating_irregularity: %w", err)
	}
	if record.SleepQuality, err = decimal.NewFromString(sleep); err != nil {
		return SnapshotRecord{}, fmt.Errorf("parse sleep_quality: %w", err)
	}

	record.Snapshot = payload
	return record, nil
}

var _ SnapshotStore = (*Store)(nil)
