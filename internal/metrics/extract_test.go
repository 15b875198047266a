package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"elder-risk-aggregator/internal/docstore"
	"elder-risk-aggregator/internal/metrics"
)

var testKeywords = metrics.Keywords{
	Loneliness: []string{"alone", "lonely", "nobody", "isolated"},
	Health:     []string{"pain", "hurt", "dizzy", "doctor"},
}

func testWindow(days int) metrics.Window {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	return metrics.NewWindow(now, days)
}

func chatDoc(text string, score any) docstore.Document {
	doc := docstore.Document{"userMessage": text}
	if score != nil {
		doc["sentiment"] = map[string]any{"score": score}
	}
	return doc
}

func TestExtractChatAveragesSentiment(t *testing.T) {
	docs := []docstore.Document{
		chatDoc("good morning", 0.25),
		chatDoc("had a nice walk", 0.5),
		chatDoc("no sentiment on this one", nil),
	}

	chat := metrics.ExtractChat(docs, testKeywords)

	require.InDelta(t, 0.25, chat.AvgSentiment, 1e-9)
	require.Equal(t, 3, chat.MessageCount)
	require.Zero(t, chat.LonelyMentions)
	require.Zero(t, chat.HealthComplaints)
}

func TestExtractChatCountsMessageOncePerCategory(t *testing.T) {
	docs := []docstore.Document{
		// Two loneliness keywords in one message must count once.
		chatDoc("I feel so alone and lonely today", -0.8),
		chatDoc("my back HURTS and I feel dizzy", -0.4),
		chatDoc("I am alone again, the pain is back", -0.6),
	}

	chat := metrics.ExtractChat(docs, testKeywords)

	require.Equal(t, 2, chat.LonelyMentions)
	require.Equal(t, 2, chat.HealthComplaints)
}

func TestExtractChatEmpty(t *testing.T) {
	chat := metrics.ExtractChat(nil, testKeywords)

	require.Equal(t, metrics.Chat{}, chat)
}

func TestExtractMoodCountsAndInactiveDays(t *testing.T) {
	window := testWindow(7)
	base := window.End

	docs := make([]docstore.Document, 0)
	// Mood logs on 5 distinct dates; two share a date.
	for day := 0; day < 5; day++ {
		docs = append(docs, docstore.Document{
			"timestamp": base.AddDate(0, 0, -day),
			"score":     -1,
		})
	}
	docs = append(docs, docstore.Document{"timestamp": base, "score": 1})
	docs = append(docs, docstore.Document{"timestamp": base, "score": 0})

	mood := metrics.ExtractMood(docs, window)

	require.Equal(t, 5, mood.SadCount)
	require.Equal(t, 1, mood.HappyCount)
	require.Equal(t, 2, mood.InactiveDays)
}

func TestExtractMoodEmptyWindowIsFullyInactive(t *testing.T) {
	mood := metrics.ExtractMood(nil, testWindow(7))

	require.Equal(t, 7, mood.InactiveDays)
	require.Zero(t, mood.SadCount)
	require.Zero(t, mood.HappyCount)
}

func TestExtractVisionLongestGap(t *testing.T) {
	window := testWindow(7)
	now := window.End

	// Unsorted on purpose; the extractor must sort ascending itself.
	docs := []docstore.Document{
		{"timestamp": now.Add(-6 * time.Hour), "emotionScore": 0.4},
		{"timestamp": now.Add(-30 * time.Hour), "emotionScore": 0.8},
	}

	vision := metrics.ExtractVision(docs, window)

	// Gaps: 24h between the two logs, 6h from the last log to "now".
	require.InDelta(t, 24.0, vision.MaxInactivityHours, 1e-9)
	require.InDelta(t, 0.6, vision.AvgEmotionScore, 1e-9)
}

func TestExtractVisionNoLogsMeansFullWindowGap(t *testing.T) {
	vision := metrics.ExtractVision(nil, testWindow(7))

	require.InDelta(t, 168.0, vision.MaxInactivityHours, 1e-9)
	require.Zero(t, vision.FallCount)
}

func TestExtractVisionCountsIncidents(t *testing.T) {
	window := testWindow(7)
	now := window.End

	docs := []docstore.Document{
		{"timestamp": now.Add(-1 * time.Hour), "fallDetected": true, "distressLevel": "high"},
		{"timestamp": now.Add(-2 * time.Hour), "distressLevel": "critical", "painDetected": true},
		{"timestamp": now.Add(-3 * time.Hour), "distressLevel": "low"},
	}

	vision := metrics.ExtractVision(docs, window)

	require.Equal(t, 1, vision.FallCount)
	require.Equal(t, 2, vision.DistressCount)
	require.Equal(t, 1, vision.PainCount)
}

func activityDoc(ts time.Time, kind string, data map[string]any) docstore.Document {
	return docstore.Document{"timestamp": ts, "type": kind, "data": data}
}

func TestExtractActivityEatingMetrics(t *testing.T) {
	window := testWindow(7)
	now := window.End

	docs := []docstore.Document{
		activityDoc(now.Add(-2*time.Hour), "eating", map[string]any{"mealType": "lunch"}),
		activityDoc(now.AddDate(0, 0, -1), "eating", map[string]any{"mealType": "dinner"}),
	}

	activity := metrics.ExtractActivity(docs, window)

	// 2 meals against a 21-meal baseline: 1 - 2/21 rounded to 2 places.
	require.InDelta(t, 0.9, activity.EatingIrregularity, 1e-9)
	require.Equal(t, 5, activity.DaysWithoutEating)
	require.Len(t, activity.MealLogs, 2)
}

func TestExtractActivityRegularEatingScoresZero(t *testing.T) {
	window := testWindow(7)
	now := window.End

	docs := make([]docstore.Document, 0, 21)
	for day := 0; day < 7; day++ {
		for meal := 0; meal < 3; meal++ {
			ts := now.AddDate(0, 0, -day).Add(-time.Duration(meal) * time.Hour)
			docs = append(docs, activityDoc(ts, "eating", map[string]any{"mealType": "meal"}))
		}
	}

	activity := metrics.ExtractActivity(docs, window)

	require.Zero(t, activity.EatingIrregularity)
	require.Zero(t, activity.DaysWithoutEating)
}

func TestExtractActivityNoMeals(t *testing.T) {
	activity := metrics.ExtractActivity(nil, testWindow(7))

	require.InDelta(t, 1.0, activity.EatingIrregularity, 1e-9)
	require.Equal(t, 7, activity.DaysWithoutEating)
	require.Zero(t, activity.SleepQuality)
	require.Empty(t, activity.MealLogs)
	require.Empty(t, activity.SleepLogs)
	require.Empty(t, activity.MovementLogs)
}

func TestExtractActivitySleepQuality(t *testing.T) {
	window := testWindow(7)
	now := window.End

	healthy := []docstore.Document{
		activityDoc(now.AddDate(0, 0, -1), "sleeping", map[string]any{"sleepHours": 8.0}),
		activityDoc(now.AddDate(0, 0, -2), "sleeping", map[string]any{"sleepHours": 7.5, "interruptions": 1}),
	}
	require.InDelta(t, 1.0, metrics.ExtractActivity(healthy, window).SleepQuality, 1e-9)

	short := []docstore.Document{
		activityDoc(now.AddDate(0, 0, -1), "sleeping", map[string]any{"sleepHours": 4.0}),
	}
	// Linear falloff centered at 8h: 1 - |8-4|/8 = 0.5.
	require.InDelta(t, 0.5, metrics.ExtractActivity(short, window).SleepQuality, 1e-9)
}

func TestExtractActivitySplitsLogTypes(t *testing.T) {
	window := testWindow(7)
	now := window.End

	docs := []docstore.Document{
		activityDoc(now.Add(-1*time.Hour), "eating", map[string]any{"mealType": "breakfast"}),
		activityDoc(now.Add(-2*time.Hour), "sleeping", map[string]any{"sleepHours": 7.0}),
		activityDoc(now.Add(-3*time.Hour), "movement", map[string]any{"activityDetected": "walking"}),
		activityDoc(now.Add(-4*time.Hour), "unknown", nil),
	}

	activity := metrics.ExtractActivity(docs, window)

	require.Len(t, activity.MealLogs, 1)
	require.Len(t, activity.SleepLogs, 1)
	require.Len(t, activity.MovementLogs, 1)
	require.Equal(t, "walking", activity.MovementLogs[0].Detected)
}

func TestExtractHealthAdherence(t *testing.T) {
	meds := []docstore.Document{
		{"taken": true},
		{"taken": true},
		{"taken": true},
		{"taken": false},
	}

	health := metrics.ExtractHealth(meds, nil)

	require.InDelta(t, 0.75, health.MedicineAdherence, 1e-9)
	require.Equal(t, 1, health.MedicineMissed)
}

func TestExtractHealthNoScheduleMeansFullAdherence(t *testing.T) {
	health := metrics.ExtractHealth(nil, nil)

	require.InDelta(t, 1.0, health.MedicineAdherence, 1e-9)
	require.Zero(t, health.MedicineMissed)
}

func TestExtractHealthCountsEmergencyPresses(t *testing.T) {
	alerts := []docstore.Document{
		{"type": "emergency_button"},
		{"type": "fall_detected"},
		{"type": "emergency_button"},
	}

	health := metrics.ExtractHealth(nil, alerts)

	require.Equal(t, 2, health.EmergencyPresses)
}
