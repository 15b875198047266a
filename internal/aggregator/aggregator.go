package aggregator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"elder-risk-aggregator/internal/docstore"
	"elder-risk-aggregator/internal/metrics"
	"elder-risk-aggregator/internal/snapshot"
)

// Caller-misuse errors, the only class Aggregate surfaces.
var (
	ErrInvalidSubject = errors.New("aggregator: subject id is required")
	ErrInvalidWindow  = errors.New("aggregator: window days must be at least 1")
)

// Domain names as they appear in degradation logs and snapshots.
const (
	domainChat        = "chat"
	domainMood        = "mood"
	domainVision      = "vision"
	domainActivity    = "activity"
	domainHealth      = "health"
	domainEvents      = "events"
	domainRiskHistory = "risk_history"
)

var allDomains = []string{
	domainChat, domainMood, domainVision, domainActivity,
	domainHealth, domainEvents, domainRiskHistory,
}

// Stores groups the per-domain query capabilities the pipeline consumes.
type Stores struct {
	Profiles   docstore.ProfileStore
	Chats      docstore.ChatStore
	Moods      docstore.MoodStore
	Vision     docstore.VisionStore
	Activities docstore.ActivityStore
	Medicines  docstore.MedicineStore
	Alerts     docstore.AlertStore
	RiskScores docstore.RiskHistoryStore
}

// Options tune aggregation behaviour.
type Options struct {
	DomainTimeout     time.Duration
	RiskHistoryLimit  int
	RecentEventsLimit int
	Keywords          metrics.Keywords

	// Now overrides the wall clock; nil means time.Now. Tests anchor the
	// window with it.
	Now func() time.Time
}

// Aggregator fans out the per-domain fetches and joins them into a snapshot.
type Aggregator struct {
	stores Stores
	opts   Options
	logger zerolog.Logger
	now    func() time.Time
}

// New constructs an Aggregator.
func New(stores Stores, opts Options, logger zerolog.Logger) *Aggregator {
	if opts.DomainTimeout <= 0 {
		opts.DomainTimeout = 10 * time.Second
	}
	if opts.RiskHistoryLimit <= 0 {
		opts.RiskHistoryLimit = 10
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Aggregator{
		stores: stores,
		opts:   opts,
		logger: logger.With().Str("component", "aggregator").Logger(),
		now:    now,
	}
}

// result is one domain task's outcome; defaulting happens at the join, not
// inside the tasks.
type result[T any] struct {
	value T
	err   error
}

// Aggregate builds the consolidated snapshot for one subject over the rolling
// window. It is total apart from input validation: every upstream failure
// resolves to a default-substituted or fully-mocked snapshot.
func (a *Aggregator) Aggregate(ctx context.Context, subjectID string, windowDays int) (*snapshot.Snapshot, error) {
	if strings.TrimSpace(subjectID) == "" {
		return nil, ErrInvalidSubject
	}
	if windowDays < 1 {
		return nil, ErrInvalidWindow
	}

	started := time.Now()
	fetchedAt := a.now().UTC()
	window := metrics.NewWindow(fetchedAt, windowDays)

	profile, err := a.stores.Profiles.FetchProfile(ctx, subjectID)
	if err != nil && !errors.Is(err, docstore.ErrProfileNotFound) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// The store is unreachable as a whole; degrade as a unit.
		a.logger.Error().
			Str("subject_id", subjectID).
			Err(err).
			Msg("profile fetch failed; returning mock snapshot")
		return snapshot.Mock(window, fetchedAt, allDomains), nil
	}

	var (
		wg       sync.WaitGroup
		chatRes  result[metrics.Chat]
		moodRes  result[metrics.Mood]
		visRes   result[metrics.Vision]
		actRes   result[metrics.Activity]
		healRes  result[metrics.Health]
		eventRes result[[]docstore.Document]
		histRes  result[[]docstore.Document]
	)

	// Each task carries its own timeout; one slow or failing domain must not
	// taint the others.
	launch := func(task func(ctx context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			taskCtx, cancel := context.WithTimeout(ctx, a.opts.DomainTimeout)
			defer cancel()
			task(taskCtx)
		}()
	}

	launch(func(ctx context.Context) {
		docs, err := a.stores.Chats.FetchMessages(ctx, subjectID, window.Start)
		if err != nil {
			chatRes.err = err
			return
		}
		chatRes.value = metrics.ExtractChat(docs, a.opts.Keywords)
	})

	launch(func(ctx context.Context) {
		docs, err := a.stores.Moods.FetchMoods(ctx, subjectID, window.Start)
		if err != nil {
			moodRes.err = err
			return
		}
		moodRes.value = metrics.ExtractMood(docs, window)
	})

	launch(func(ctx context.Context) {
		docs, err := a.stores.Vision.FetchVisionLogs(ctx, subjectID, window.Start)
		if err != nil {
			visRes.err = err
			return
		}
		visRes.value = metrics.ExtractVision(docs, window)
	})

	launch(func(ctx context.Context) {
		docs, err := a.stores.Activities.FetchActivities(ctx, subjectID, window.Start)
		if err != nil {
			actRes.err = err
			return
		}
		actRes.value = metrics.ExtractActivity(docs, window)
	})

	launch(func(ctx context.Context) {
		medicines, err := a.stores.Medicines.FetchMedicines(ctx, subjectID, window.Start)
		if err != nil {
			healRes.err = err
			return
		}
		alerts, err := a.stores.Alerts.FetchAlerts(ctx, subjectID, window.Start, 0)
		if err != nil {
			healRes.err = err
			return
		}
		healRes.value = metrics.ExtractHealth(medicines, alerts)
	})

	launch(func(ctx context.Context) {
		eventRes.value, eventRes.err = a.stores.Alerts.FetchAlerts(ctx, subjectID, window.Start, a.opts.RecentEventsLimit)
	})

	launch(func(ctx context.Context) {
		histRes.value, histRes.err = a.stores.RiskScores.FetchRiskHistory(ctx, subjectID, a.opts.RiskHistoryLimit)
	})

	wg.Wait()

	// A cancelled domain is just a failed domain; only cancellation of the
	// top-level call itself surfaces.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	degraded := make([]string, 0)
	in := snapshot.Inputs{
		Profile:      profile,
		Chat:         resolve(a.logger, domainChat, chatRes, metrics.DefaultChat(), &degraded),
		Mood:         resolve(a.logger, domainMood, moodRes, metrics.DefaultMood(), &degraded),
		Vision:       resolve(a.logger, domainVision, visRes, metrics.DefaultVision(), &degraded),
		Activity:     resolve(a.logger, domainActivity, actRes, metrics.DefaultActivity(), &degraded),
		Health:       resolve(a.logger, domainHealth, healRes, metrics.DefaultHealth(), &degraded),
		RecentEvents: resolve(a.logger, domainEvents, eventRes, []docstore.Document{}, &degraded),
		RiskHistory:  resolve(a.logger, domainRiskHistory, histRes, []docstore.Document{}, &degraded),
	}
	in.DegradedDomains = degraded

	snap := snapshot.Assemble(in, window, fetchedAt)

	a.logger.Info().
		Str("subject_id", subjectID).
		Int("window_days", windowDays).
		Int("degraded_domains", len(degraded)).
		Dur("duration", time.Since(started)).
		Msg("aggregation completed")

	return snap, nil
}

// resolve applies default substitution at the join point and records the
// degradation. Cancelled and timed-out fetches are treated the same as hard
// failures; the logged error keeps them distinguishable.
func resolve[T any](logger zerolog.Logger, domain string, res result[T], fallback T, degraded *[]string) T {
	if res.err == nil {
		return res.value
	}

	logger.Warn().
		Str("domain", domain).
		Err(res.err).
		Msg("domain fetch failed; substituting defaults")

	*degraded = append(*degraded, domain)
	return fallback
}
