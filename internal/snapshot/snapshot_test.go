package snapshot_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"elder-risk-aggregator/internal/docstore"
	"elder-risk-aggregator/internal/metrics"
	"elder-risk-aggregator/internal/snapshot"
)

func TestAssembleFillsEveryField(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	window := metrics.NewWindow(now, 7)

	snap := snapshot.Assemble(snapshot.Inputs{
		Profile: docstore.Profile{Name: "Margaret", FamilyMemberIDs: []string{"fam-1", "fam-2"}},
		Chat:    metrics.Chat{MessageCount: 3},
		Health:  metrics.Health{MedicineAdherence: 0.5},
	}, window, now)

	require.Equal(t, "Margaret", snap.SubjectName)
	require.Equal(t, []string{"fam-1", "fam-2"}, snap.FamilyMemberIDs)
	require.Equal(t, 3, snap.Chat.MessageCount)
	require.NotNil(t, snap.RecentEvents)
	require.NotNil(t, snap.RiskHistory)
	require.NotNil(t, snap.DegradedDomains)
	require.Equal(t, window, snap.Window)
	require.Equal(t, now, snap.FetchedAt)
}

func TestAssembleFallsBackToGenericName(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	snap := snapshot.Assemble(snapshot.Inputs{}, metrics.NewWindow(now, 7), now)

	require.Equal(t, "Elder", snap.SubjectName)
}

func TestMockSnapshotIsFullyDefaulted(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	window := metrics.NewWindow(now, 7)

	snap := snapshot.Mock(window, now, []string{"chat", "mood"})

	require.Equal(t, metrics.DefaultChat(), snap.Chat)
	require.Equal(t, metrics.DefaultMood(), snap.Mood)
	require.Equal(t, metrics.DefaultVision(), snap.Vision)
	require.Equal(t, metrics.DefaultActivity(), snap.Activity)
	require.Equal(t, metrics.DefaultHealth(), snap.Health)
	require.Empty(t, snap.RecentEvents)
	require.Empty(t, snap.RiskHistory)
	require.Equal(t, []string{"chat", "mood"}, snap.DegradedDomains)
}

func TestSnapshotSerialisesWithoutNulls(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	snap := snapshot.Mock(metrics.NewWindow(now, 7), now, nil)

	payload, err := json.Marshal(snap)
	require.NoError(t, err)
	require.NotContains(t, string(payload), "null")
}
