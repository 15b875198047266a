package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names as written by the upstream producers.
const (
	collUsers      = "users"
	collChats      = "chats"
	collMoods      = "moods"
	collVisionLogs = "vision_logs"
	collActivities = "activities"
	collMedicines  = "medicines"
	collAlerts     = "alerts"
	collRiskScores = "risk_scores"
)

// ErrProfileNotFound indicates the subject has no profile document.
var ErrProfileNotFound = errors.New("docstore: profile not found")

// Profile carries the subject profile fields the pipeline needs.
type Profile struct {
	Name            string   `bson:"fullName"`
	FamilyMemberIDs []string `bson:"connectedFamily"`
}

// ProfileStore fetches the subject profile document.
type ProfileStore interface {
	FetchProfile(ctx context.Context, subjectID string) (Profile, error)
}

// ChatStore fetches conversational messages within the window.
type ChatStore interface {
	FetchMessages(ctx context.Context, subjectID string, since time.Time) ([]Document, error)
}

// MoodStore fetches self-reported mood logs within the window.
type MoodStore interface {
	FetchMoods(ctx context.Context, subjectID string, since time.Time) ([]Document, error)
}

// VisionStore fetches vision-derived observation logs within the window.
// Order is not guaranteed; gap computation sorts locally.
type VisionStore interface {
	FetchVisionLogs(ctx context.Context, subjectID string, since time.Time) ([]Document, error)
}

// ActivityStore fetches activity logs (eating, sleeping, movement).
type ActivityStore interface {
	FetchActivities(ctx context.Context, subjectID string, since time.Time) ([]Document, error)
}

// MedicineStore fetches medication adherence records within the window.
type MedicineStore interface {
	FetchMedicines(ctx context.Context, subjectID string, since time.Time) ([]Document, error)
}

// AlertStore fetches alert events within the window, newest first.
// A limit of zero or less means unbounded.
type AlertStore interface {
	FetchAlerts(ctx context.Context, subjectID string, since time.Time, limit int) ([]Document, error)
}

// RiskHistoryStore fetches prior risk score records, newest first.
type RiskHistoryStore interface {
	FetchRiskHistory(ctx context.Context, subjectID string, limit int) ([]Document, error)
}

// Store implements every per-domain query against one MongoDB database.
type Store struct {
	db *mongo.Database
}

// NewStore wires a mongo database handle into a Store.
func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

// FetchProfile looks up the subject's profile document by id.
func (s *Store) FetchProfile(ctx context.Context, subjectID string) (Profile, error) {
	var profile Profile
	err := s.db.Collection(collUsers).FindOne(ctx, bson.M{"_id": subjectID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	return profile, nil
}

// FetchMessages lists chat messages for the subject since the cutoff,
// newest first.
func (s *Store) FetchMessages(ctx context.Context, subjectID string, since time.Time) ([]Document, error) {
	return s.findWindow(ctx, collChats, "userId", subjectID, since, newestFirst(), 0)
}

// FetchMoods lists mood logs for the subject since the cutoff, newest first.
func (s *Store) FetchMoods(ctx context.Context, subjectID string, since time.Time) ([]Document, error) {
	return s.findWindow(ctx, collMoods, "userId", subjectID, since, newestFirst(), 0)
}

// FetchVisionLogs lists vision logs for the subject since the cutoff in
// store order.
func (s *Store) FetchVisionLogs(ctx context.Context, subjectID string, since time.Time) ([]Document, error) {
	return s.findWindow(ctx, collVisionLogs, "userId", subjectID, since, nil, 0)
}

// FetchActivities lists activity logs for the subject since the cutoff in
// store order.
func (s *Store) FetchActivities(ctx context.Context, subjectID string, since time.Time) ([]Document, error) {
	return s.findWindow(ctx, collActivities, "userId", subjectID, since, nil, 0)
}

// FetchMedicines lists medication records for the subject since the cutoff.
func (s *Store) FetchMedicines(ctx context.Context, subjectID string, since time.Time) ([]Document, error) {
	return s.findWindow(ctx, collMedicines, "userId", subjectID, since, nil, 0)
}

// FetchAlerts lists alert events for the subject since the cutoff, newest
// first. Alerts key on elderId rather than userId.
func (s *Store) FetchAlerts(ctx context.Context, subjectID string, since time.Time, limit int) ([]Document, error) {
	return s.findWindow(ctx, collAlerts, "elderId", subjectID, since, newestFirst(), limit)
}

// FetchRiskHistory lists prior risk score records, newest first.
func (s *Store) FetchRiskHistory(ctx context.Context, subjectID string, limit int) ([]Document, error) {
	opts := options.Find().SetSort(newestFirst())
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.db.Collection(collRiskScores).Find(ctx, bson.M{"userId": subjectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collRiskScores, err)
	}
	defer cursor.Close(ctx)

	return decodeAll(ctx, cursor)
}

func (s *Store) findWindow(ctx context.Context, collection, subjectField, subjectID string, since time.Time, sort bson.D, limit int) ([]Document, error) {
	filter := bson.M{
		subjectField: subjectID,
		"timestamp":  bson.M{"$gte": since},
	}

	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	return decodeAll(ctx, cursor)
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]Document, error) {
	docs := make([]Document, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		docs = append(docs, Document(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate cursor: %w", err)
	}
	return docs, nil
}

func newestFirst() bson.D {
	return bson.D{{Key: "timestamp", Value: -1}}
}

var (
	_ ProfileStore     = (*Store)(nil)
	_ ChatStore        = (*Store)(nil)
	_ MoodStore        = (*Store)(nil)
	_ VisionStore      = (*Store)(nil)
	_ ActivityStore    = (*Store)(nil)
	_ MedicineStore    = (*Store)(nil)
	_ AlertStore       = (*Store)(nil)
	_ RiskHistoryStore = (*Store)(nil)
)
