package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"elder-risk-aggregator/internal/config"
	"elder-risk-aggregator/internal/metrics"
	"elder-risk-aggregator/internal/service"
	"elder-risk-aggregator/internal/snapshot"
	"elder-risk-aggregator/internal/storage"
)

type fakeProducer struct {
	calls   []string
	failFor map[string]error
}

func (p *fakeProducer) Aggregate(ctx context.Context, subjectID string, windowDays int) (*snapshot.Snapshot, error) {
	p.calls = append(p.calls, subjectID)
	if err, ok := p.failFor[subjectID]; ok {
		return nil, err
	}
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	return snapshot.Mock(metrics.NewWindow(now, windowDays), now, nil), nil
}

type fakeSnapshotStore struct {
	upserts []storage.SnapshotRecord
	err     error
}

func (s *fakeSnapshotStore) UpsertSnapshot(ctx context.Context, record storage.SnapshotRecord) error {
	if s.err != nil {
		return s.err
	}
	s.upserts = append(s.upserts, record)
	return nil
}

func (s *fakeSnapshotStore) ListSnapshotsBetween(context.Context, string, time.Time, time.Time) ([]storage.SnapshotRecord, error) {
	return nil, nil
}

func (s *fakeSnapshotStore) ListRecentSnapshots(context.Context, string, int) ([]storage.SnapshotRecord, error) {
	return nil, nil
}

func (s *fakeSnapshotStore) CountSnapshots(context.Context) (int64, error) {
	return int64(len(s.upserts)), nil
}

func testConfig(subjects ...string) *config.Config {
	cfg := &config.Config{Subjects: subjects}
	cfg.Aggregation.DefaultWindowDays = 7
	return cfg
}

func TestRefreshAllPersistsEverySubject(t *testing.T) {
	producer := &fakeProducer{}
	store := &fakeSnapshotStore{}
	svc := service.New(testConfig("elder-1", "elder-2"), nil, producer, store, zerolog.Nop())

	err := svc.RefreshAll(context.Background(), time.Now())
	require.NoError(t, err)

	require.Equal(t, []string{"elder-1", "elder-2"}, producer.calls)
	require.Len(t, store.upserts, 2)
	require.Equal(t, "elder-1", store.upserts[0].SubjectID)
	require.Equal(t, 7, store.upserts[0].WindowDays)
}

func TestRefreshAllContinuesPastFailingSubject(t *testing.T) {
	producer := &fakeProducer{failFor: map[string]error{"elder-1": errors.New("boom")}}
	store := &fakeSnapshotStore{}
	svc := service.New(testConfig("elder-1", "elder-2"), nil, producer, store, zerolog.Nop())

	err := svc.RefreshAll(context.Background(), time.Now())
	require.NoError(t, err)

	require.Equal(t, []string{"elder-1", "elder-2"}, producer.calls)
	require.Len(t, store.upserts, 1)
	require.Equal(t, "elder-2", store.upserts[0].SubjectID)
}

func TestRefreshAllWithoutStore(t *testing.T) {
	producer := &fakeProducer{}
	svc := service.New(testConfig("elder-1"), nil, producer, nil, zerolog.Nop())

	require.NoError(t, svc.RefreshAll(context.Background(), time.Now()))
	require.Equal(t, []string{"elder-1"}, producer.calls)
}

func TestRefreshAllStopsOnCancelledContext(t *testing.T) {
	producer := &fakeProducer{}
	svc := service.New(testConfig("elder-1"), nil, producer, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.RefreshAll(ctx, time.Now())
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, producer.calls)
}
