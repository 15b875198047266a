package metrics

import "time"

// Window is the rolling aggregation interval, anchored at "now".
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"length_days"`
}

// NewWindow derives the window [now - days, now].
func NewWindow(now time.Time, days int) Window {
	return Window{
		Start: now.Add(-time.Duration(days) * 24 * time.Hour),
		End:   now,
		Days:  days,
	}
}

// Chat summarises conversational sentiment and keyword hits.
type Chat struct {
	AvgSentiment     float64 `json:"avg_sentiment"`
	LonelyMentions   int     `json:"lonely_mentions"`
	HealthComplaints int     `json:"health_complaints"`
	MessageCount     int     `json:"message_count"`
}

// Mood summarises self-reported mood logs.
type Mood struct {
	SadCount     int `json:"sad_count"`
	HappyCount   int `json:"happy_count"`
	InactiveDays int `json:"inactive_days"`
}

// Vision summarises camera-derived observations.
type Vision struct {
	AvgEmotionScore    float64 `json:"avg_emotion_score"`
	FallCount          int     `json:"fall_count"`
	DistressCount      int     `json:"distress_count"`
	PainCount          int     `json:"pain_count"`
	MaxInactivityHours float64 `json:"max_inactivity_hours"`
}

// MealLog is one observed meal.
type MealLog struct {
	Timestamp time.Time `json:"timestamp"`
	MealType  string    `json:"meal_type"`
}

// SleepLog is one observed night of sleep.
type SleepLog struct {
	Date          time.Time `json:"date"`
	SleepHours    float64   `json:"sleep_hours"`
	Interruptions int       `json:"interruptions"`
}

// MovementLog is one observed movement event.
type MovementLog struct {
	Timestamp time.Time `json:"timestamp"`
	Detected  string    `json:"detected"`
}

// Activity summarises eating, sleeping, and movement logs.
type Activity struct {
	EatingIrregularity float64       `json:"eating_irregularity"`
	SleepQuality       float64       `json:"sleep_quality"`
	DaysWithoutEating  int           `json:"days_without_eating"`
	MealLogs           []MealLog     `json:"meal_logs"`
	SleepLogs          []SleepLog    `json:"sleep_logs"`
	MovementLogs       []MovementLog `json:"movement_logs"`
}

// Health summarises medication adherence and emergency alerts.
type Health struct {
	MedicineMissed    int     `json:"medicine_missed"`
	MedicineAdherence float64 `json:"medicine_adherence"`
	EmergencyPresses  int     `json:"emergency_presses"`
}

// Canonical defaults, substituted when a domain fetch fails. A failed query
// says nothing about the subject, so the defaults are neutral rather than
// worst-case; an empty-but-successful query is computed by the extractors
// instead and may differ (e.g. a full-window inactivity gap).

// DefaultChat returns the neutral chat metrics.
func DefaultChat() Chat {
	return Chat{}
}

// DefaultMood returns the neutral mood metrics.
func DefaultMood() Mood {
	return Mood{}
}

// DefaultVision returns the neutral vision metrics.
func DefaultVision() Vision {
	return Vision{}
}

// DefaultActivity returns the neutral activity metrics.
func DefaultActivity() Activity {
	return Activity{
		MealLogs:     []MealLog{},
		SleepLogs:    []SleepLog{},
		MovementLogs: []MovementLog{},
	}
}

// DefaultHealth returns the neutral health metrics. Adherence defaults to
// full: no observed schedule must not read as total non-adherence.
func DefaultHealth() Health {
	return Health{MedicineAdherence: 1.0}
}
