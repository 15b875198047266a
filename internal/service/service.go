package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"elder-risk-aggregator/internal/config"
	"elder-risk-aggregator/internal/scheduler"
	"elder-risk-aggregator/internal/snapshot"
	"elder-risk-aggregator/internal/storage"
)

// SnapshotProducer builds one consolidated snapshot per subject and window.
type SnapshotProducer interface {
	Aggregate(ctx context.Context, subjectID string, windowDays int) (*snapshot.Snapshot, error)
}

// Service drives periodic snapshot refreshes for the configured subjects and
// persists the results.
type Service struct {
	scheduler  *scheduler.Scheduler
	producer   SnapshotProducer
	store      storage.SnapshotStore
	subjects   []string
	windowDays int
	logger     zerolog.Logger
}

// New constructs the refresh service. The store may be nil, in which case
// snapshots are produced for their logs only.
func New(cfg *config.Config, sched *scheduler.Scheduler, producer SnapshotProducer, store storage.SnapshotStore, logger zerolog.Logger) *Service {
	return &Service{
		scheduler:  sched,
		producer:   producer,
		store:      store,
		subjects:   cfg.Subjects,
		windowDays: cfg.Aggregation.DefaultWindowDays,
		logger:     logger.With().Str("component", "service").Logger(),
	}
}

// Run begins the refresh loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	if len(s.subjects) == 0 {
		s.logger.Warn().Msg("no subjects configured; refresh cycles will be no-ops")
	}
	return s.scheduler.Run(ctx, s.RefreshAll)
}

// RefreshAll aggregates and persists a snapshot for every configured subject.
// A failure for one subject is logged and does not stop the others.
func (s *Service) RefreshAll(ctx context.Context, cycle time.Time) error {
	for _, subjectID := range s.subjects {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.refreshSubject(ctx, subjectID); err != nil {
			s.logger.Error().
				Str("subject_id", subjectID).
				Time("cycle", cycle).
				Err(err).
				Msg("subject refresh failed")
		}
	}
	return nil
}

func (s *Service) refreshSubject(ctx context.Context, subjectID string) error {
	snap, err := s.producer.Aggregate(ctx, subjectID, s.windowDays)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	if s.store == nil {
		return nil
	}

	record, err := storage.NewSnapshotRecord(subjectID, snap)
	if err != nil {
		return err
	}
	if err := s.store.UpsertSnapshot(ctx, record); err != nil {
		return err
	}

	s.logger.Debug().
		Str("subject_id", subjectID).
		Time("fetched_at", snap.FetchedAt).
		Msg("snapshot persisted")
	return nil
}
