package snapshot

import (
	"time"

	"elder-risk-aggregator/internal/docstore"
	"elder-risk-aggregator/internal/metrics"
)

// fallbackName labels a snapshot whose subject profile was unavailable.
const fallbackName = "Elder"

// Snapshot is the consolidated, structurally complete feature record for one
// subject over one window. Every field is always populated, with extracted
// data or with a domain default; it is never mutated after assembly.
type Snapshot struct {
	SubjectName     string              `json:"subject_name"`
	FamilyMemberIDs []string            `json:"family_member_ids"`
	Chat            metrics.Chat        `json:"chat"`
	Mood            metrics.Mood        `json:"mood"`
	Vision          metrics.Vision      `json:"vision"`
	Activity        metrics.Activity    `json:"activity"`
	Health          metrics.Health      `json:"health"`
	RecentEvents    []docstore.Document `json:"recent_events"`
	RiskHistory     []docstore.Document `json:"risk_history"`
	DegradedDomains []string            `json:"degraded_domains"`
	Window          metrics.Window      `json:"window"`
	FetchedAt       time.Time           `json:"fetched_at"`
}

// Inputs carries everything the assembler composes into a Snapshot. Metric
// fields hold either extracted data or the domain default; the orchestrator
// decides which before assembly.
type Inputs struct {
	Profile         docstore.Profile
	Chat            metrics.Chat
	Mood            metrics.Mood
	Vision          metrics.Vision
	Activity        metrics.Activity
	Health          metrics.Health
	RecentEvents    []docstore.Document
	RiskHistory     []docstore.Document
	DegradedDomains []string
}

// Assemble composes the final snapshot. Pure structural composition; all
// defaulting decisions happen upstream.
func Assemble(in Inputs, window metrics.Window, fetchedAt time.Time) *Snapshot {
	name := in.Profile.Name
	if name == "" {
		name = fallbackName
	}

	return &Snapshot{
		SubjectName:     name,
		FamilyMemberIDs: orEmpty(in.Profile.FamilyMemberIDs),
		Chat:            in.Chat,
		Mood:            in.Mood,
		Vision:          in.Vision,
		Activity:        in.Activity,
		Health:          in.Health,
		RecentEvents:    orEmptyDocs(in.RecentEvents),
		RiskHistory:     orEmptyDocs(in.RiskHistory),
		DegradedDomains: orEmpty(in.DegradedDomains),
		Window:          window,
		FetchedAt:       fetchedAt,
	}
}

// Mock builds the fully-defaulted snapshot used when the data store is
// unreachable as a whole.
func Mock(window metrics.Window, fetchedAt time.Time, degraded []string) *Snapshot {
	return Assemble(Inputs{
		Chat:            metrics.DefaultChat(),
		Mood:            metrics.DefaultMood(),
		Vision:          metrics.DefaultVision(),
		Activity:        metrics.DefaultActivity(),
		Health:          metrics.DefaultHealth(),
		DegradedDomains: degraded,
	}, window, fetchedAt)
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyDocs(d []docstore.Document) []docstore.Document {
	if d == nil {
		return []docstore.Document{}
	}
	return d
}
