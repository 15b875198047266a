package docstore

import (
	"context"
	"time"
)

// Unavailable returns a store whose every query fails with the given cause.
// It stands in when the document store cannot be reached at startup, so the
// pipeline degrades to its mock snapshot instead of refusing to run.
func Unavailable(cause error) *UnavailableStore {
	return &UnavailableStore{cause: cause}
}

// UnavailableStore implements every store interface by failing.
type UnavailableStore struct {
	cause error
}

func (s *UnavailableStore) FetchProfile(context.Context, string) (Profile, error) {
	return Profile{}, s.cause
}

func (s *UnavailableStore) FetchMessages(context.Context, string, time.Time) ([]Document, error) {
	return nil, s.cause
}

func (s *UnavailableStore) FetchMoods(context.Context, string, time.Time) ([]Document, error) {
	return nil, s.cause
}

func (s *UnavailableStore) FetchVisionLogs(context.Context, string, time.Time) ([]Document, error) {
	return nil, s.cause
}

func (s *UnavailableStore) FetchActivities(context.Context, string, time.Time) ([]Document, error) {
	return nil, s.cause
}

func (s *UnavailableStore) FetchMedicines(context.Context, string, time.Time) ([]Document, error) {
	return nil, s.cause
}

func (s *UnavailableStore) FetchAlerts(context.Context, string, time.Time, int) ([]Document, error) {
	return nil, s.cause
}

func (s *UnavailableStore) FetchRiskHistory(context.Context, string, int) ([]Document, error) {
	return nil, s.cause
}

var (
	_ ProfileStore     = (*UnavailableStore)(nil)
	_ ChatStore        = (*UnavailableStore)(nil)
	_ MoodStore        = (*UnavailableStore)(nil)
	_ VisionStore      = (*UnavailableStore)(nil)
	_ ActivityStore    = (*UnavailableStore)(nil)
	_ MedicineStore    = (*UnavailableStore)(nil)
	_ AlertStore       = (*UnavailableStore)(nil)
	_ RiskHistoryStore = (*UnavailableStore)(nil)
)
