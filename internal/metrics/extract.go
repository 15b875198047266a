package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"elder-risk-aggregator/internal/docstore"
)

// Alert type written by the emergency wearable button.
const emergencyButtonType = "emergency_button"

// Activity log types written by the mobile app.
const (
	activityEating   = "eating"
	activitySleeping = "sleeping"
	activityMovement = "movement"
)

// Keywords configures the substring categories scanned in chat messages.
// Matching is case-insensitive and first-match-wins per category, so one
// message counts at most once per category.
type Keywords struct {
	Loneliness []string
	Health     []string
}

// ExtractChat reduces chat messages to sentiment and keyword metrics.
// Messages with missing or non-numeric sentiment contribute a score of 0.
func ExtractChat(docs []docstore.Document, kw Keywords) Chat {
	var sentimentSum float64
	var lonelyMentions, healthComplaints int

	for _, doc := range docs {
		sentimentSum += doc.Child("sentiment").Float("score")

		text := strings.ToLower(doc.String("userMessage"))
		if containsAny(text, kw.Loneliness) {
			lonelyMentions++
		}
		if containsAny(text, kw.Health) {
			healthComplaints++
		}
	}

	avg := 0.0
	if len(docs) > 0 {
		avg = sentimentSum / float64(len(docs))
	}

	return Chat{
		AvgSentiment:     round(avg, 3),
		LonelyMentions:   lonelyMentions,
		HealthComplaints: healthComplaints,
		MessageCount:     len(docs),
	}
}

// ExtractMood reduces mood logs to counts and calendar-date coverage.
// A score of exactly -1 is sad, exactly +1 is happy; anything else counts
// in neither bucket.
func ExtractMood(docs []docstore.Document, window Window) Mood {
	var sadCount, happyCount int
	dates := map[string]struct{}{}

	for _, doc := range docs {
		if ts := doc.Time("timestamp"); !ts.IsZero() {
			dates[dateKey(ts)] = struct{}{}
		}

		switch doc.Float("score") {
		case -1:
			sadCount++
		case 1:
			happyCount++
		}
	}

	inactive := window.Days - len(dates)
	if inactive < 0 {
		inactive = 0
	}

	return Mood{
		SadCount:     sadCount,
		HappyCount:   happyCount,
		InactiveDays: inactive,
	}
}

// ExtractVision reduces vision logs to emotion and incident counts plus the
// longest observation gap. Logs arrive in no guaranteed order; the gap scan
// sorts them ascending and appends window.End ("now") as a synthetic final
// point so a silent tail still registers. Zero logs means the whole window
// is one gap.
func ExtractVision(docs []docstore.Document, window Window) Vision {
	var emotionSum float64
	var fallCount, distressCount, painCount int

	timestamps := make([]time.Time, 0, len(docs))
	for _, doc := range docs {
		emotionSum += doc.Float("emotionScore")

		if doc.Bool("fallDetected") {
			fallCount++
		}
		switch doc.String("distressLevel") {
		case "high", "critical":
			distressCount++
		}
		if doc.Bool("painDetected") {
			painCount++
		}

		if ts := doc.Time("timestamp"); !ts.IsZero() {
			timestamps = append(timestamps, ts)
		}
	}

	maxGapHours := float64(window.Days) * 24
	if len(timestamps) > 0 {
		sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })
		timestamps = append(timestamps, window.End)

		maxGapHours = 0
		for i := 1; i < len(timestamps); i++ {
			if gap := timestamps[i].Sub(timestamps[i-1]).Hours(); gap > maxGapHours {
				maxGapHours = gap
			}
		}
	}

	avg := 0.0
	if len(docs) > 0 {
		avg = emotionSum / float64(len(docs))
	}

	return Vision{
		AvgEmotionScore:    round(avg, 3),
		FallCount:          fallCount,
		DistressCount:      distressCount,
		PainCount:          painCount,
		MaxInactivityHours: round(maxGapHours, 2),
	}
}

// ExtractActivity splits activity logs by type and derives eating and sleep
// metrics. Eating irregularity assumes 3 meals/day as the regularity
// baseline; days-without-eating counts calendar dates with no meal log. The
// two use deliberately independent window definitions.
func ExtractActivity(docs []docstore.Document, window Window) Activity {
	meals := make([]MealLog, 0)
	sleeps := make([]SleepLog, 0)
	movements := make([]MovementLog, 0)

	for _, doc := range docs {
		ts := doc.Time("timestamp")
		data := doc.Child("data")

		switch doc.String("type") {
		case activityEating:
			mealType := data.String("mealType")
			if mealType == "" {
				mealType = "unknown"
			}
			meals = append(meals, MealLog{Timestamp: ts, MealType: mealType})
		case activitySleeping:
			sleeps = append(sleeps, SleepLog{
				Date:          ts,
				SleepHours:    data.Float("sleepHours"),
				Interruptions: data.Int("interruptions"),
			})
		case activityMovement:
			movements = append(movements, MovementLog{
				Timestamp: ts,
				Detected:  data.String("activityDetected"),
			})
		}
	}

	mealDates := map[string]struct{}{}
	for _, meal := range meals {
		if !meal.Timestamp.IsZero() {
			mealDates[dateKey(meal.Timestamp)] = struct{}{}
		}
	}

	daysWithoutEating := window.Days - len(mealDates)
	if daysWithoutEating < 0 {
		daysWithoutEating = 0
	}

	irregularity := 1.0
	if expected := float64(window.Days) * 3; expected > 0 {
		irregularity = clamp01(1 - float64(len(meals))/expected)
	}

	return Activity{
		EatingIrregularity: round(irregularity, 2),
		SleepQuality:       round(sleepQuality(sleeps), 2),
		DaysWithoutEating:  daysWithoutEating,
		MealLogs:           meals,
		SleepLogs:          sleeps,
		MovementLogs:       movements,
	}
}

// ExtractHealth derives medication adherence from the window's medication
// records and counts emergency button presses among the alerts. No scheduled
// medication yields full adherence, not zero, to avoid false alarms.
func ExtractHealth(medicines, alerts []docstore.Document) Health {
	var taken int
	for _, doc := range medicines {
		if doc.Bool("taken") {
			taken++
		}
	}
	scheduled := len(medicines)

	adherence := 1.0
	if scheduled > 0 {
		adherence = float64(taken) / float64(scheduled)
	}

	var presses int
	for _, doc := range alerts {
		if doc.String("type") == emergencyButtonType {
			presses++
		}
	}

	return Health{
		MedicineMissed:    scheduled - taken,
		MedicineAdherence: round(adherence, 2),
		EmergencyPresses:  presses,
	}
}

// sleepQuality maps mean nightly hours onto [0,1]: 1.0 inside the 7-9h band,
// linear falloff centered at 8h outside it, 0 with no sleep logs.
func sleepQuality(sleeps []SleepLog) float64 {
	if len(sleeps) == 0 {
		return 0
	}

	var total float64
	for _, s := range sleeps {
		total += s.SleepHours
	}
	mean := total / float64(len(sleeps))

	if mean >= 7 && mean <= 9 {
		return 1.0
	}

	diff := 8 - mean
	if diff < 0 {
		diff = -diff
	}
	return clamp01(1 - diff/8)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// round fixes metric precision so downstream comparisons are deterministic.
func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func dateKey(ts time.Time) string {
	return ts.UTC().Format("2006-01-02")
}
