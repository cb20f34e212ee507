// Package store provides the Postgres-backed user data store for the
// coaching pipeline. It serves the structured fitness records (profile,
// goals, logs, measurements) the context agent assembles per question, and
// the embedded knowledge-base entries the retriever ranks.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peakform/coach-go/internal/errs"
)

const (
	// DefaultGoalLimit bounds how many goals are injected into the context.
	DefaultGoalLimit = 5
	// DefaultLogLimit bounds training logs, meal logs, and measurements.
	DefaultLogLimit = 10
	// DefaultEntryLimit bounds knowledge-base entries loaded for client-side
	// similarity ranking.
	DefaultEntryLimit = 100
)

// UserStore is the read side of the store used by the context agent.
// Implementations must be safe for concurrent use.
type UserStore interface {
	// FetchProfile returns the user's profile, or nil when none exists.
	FetchProfile(ctx context.Context, userID string) (*Profile, error)
	// FetchGoals returns up to limit active goals, newest first.
	FetchGoals(ctx context.Context, userID string, limit int) ([]Goal, error)
	// FetchTrainingLogs returns up to limit workout logs, newest first.
	FetchTrainingLogs(ctx context.Context, userID string, limit int) ([]TrainingLog, error)
	// FetchMealLogs returns up to limit meal logs, newest first.
	FetchMealLogs(ctx context.Context, userID string, limit int) ([]MealLog, error)
	// FetchMeasurements returns up to limit measurements, newest first.
	FetchMeasurements(ctx context.Context, userID string, limit int) ([]Measurement, error)
}

// EntryStore is the knowledge-base side of the store used by the retriever
// and the ingestion pipeline.
type EntryStore interface {
	// RecentEntries returns the newest entries for the user, embeddings
	// omitted.
	RecentEntries(ctx context.Context, userID string, limit int) ([]ContextEntry, error)
	// EntriesWithEmbeddings returns up to limit entries that carry an
	// embedding vector, for client-side similarity ranking.
	EntriesWithEmbeddings(ctx context.Context, userID string, limit int) ([]ContextEntry, error)
	// SaveEntry persists a knowledge-base entry with its embedding.
	SaveEntry(ctx context.Context, entry *ContextEntry) error
	// MatchContext runs the database-side ranked similarity search.
	// Returns ErrMatchUnavailable when the database function is absent.
	MatchContext(ctx context.Context, userID string, embedding []float32, threshold float64, count int) ([]ContextMatch, error)
}

// PGStore is a Postgres-backed UserStore and EntryStore.
type PGStore struct {
	pool *pgxpool.Pool
	// matchSQL is the call template for the ranked-search function, resolved
	// once at open time. Empty when the function is not deployed.
	matchSQL string
}

// Open connects to Postgres at url, verifies connectivity, and probes the
// ranked-search function's signature once so later calls need no trial and
// error.
func Open(ctx context.Context, url string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, errs.NewDatabase("could not create connection pool", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errs.NewDatabase("could not reach database", err)
	}

	s := &PGStore{pool: pool}
	s.matchSQL = probeMatchFunction(ctx, pool)
	return s, nil
}

// Ping verifies database connectivity. Used by the readiness endpoint.
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *PGStore) Close() {
	s.pool.Close()
}

// FetchProfile returns the user's profile, or nil when the user has none.
func (s *PGStore) FetchProfile(ctx context.Context, userID string) (*Profile, error) {
	const q = `
SELECT user_id, age, sex, height_cm, weight_kg, activity_level,
       experience_level, injuries, dietary_notes, preferred_units, updated_at
FROM user_profiles
WHERE user_id = $1`

	var p Profile
	err := s.pool.QueryRow(ctx, q, userID).Scan(
		&p.UserID, &p.Age, &p.Sex, &p.HeightCM, &p.WeightKG, &p.ActivityLevel,
		&p.ExperienceLvl, &p.Injuries, &p.DietaryNotes, &p.PreferredUnits, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewDatabase("could not fetch profile", err)
	}
	return &p, nil
}

// FetchGoals returns up to limit goals for the user, newest first.
func (s *PGStore) FetchGoals(ctx context.Context, userID string, limit int) ([]Goal, error) {
	if limit <= 0 {
		limit = DefaultGoalLimit
	}
	const q = `
SELECT id, user_id, description, target_date, status, created_at
FROM fitness_goals
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := s.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, errs.NewDatabase("could not fetch goals", err)
	}
	defer rows.Close()

	var out []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Description, &g.TargetDate, &g.Status, &g.CreatedAt); err != nil {
			return nil, errs.NewDatabase("could not scan goal", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDatabase("could not iterate goals", err)
	}
	return out, nil
}

// FetchTrainingLogs returns up to limit training logs, newest first.
func (s *PGStore) FetchTrainingLogs(ctx context.Context, userID string, limit int) ([]TrainingLog, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	const q = `
SELECT id, user_id, activity, notes, duration_minutes, intensity, logged_at
FROM training_logs
WHERE user_id = $1
ORDER BY logged_at DESC
LIMIT $2`

	rows, err := s.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, errs.NewDatabase("could not fetch training logs", err)
	}
	defer rows.Close()

	var out []TrainingLog
	for rows.Next() {
		var l TrainingLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Activity, &l.Notes, &l.Duration, &l.Intensity, &l.LoggedAt); err != nil {
			return nil, errs.NewDatabase("could not scan training log", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDatabase("could not iterate training logs", err)
	}
	return out, nil
}

// FetchMealLogs returns up to limit meal logs, newest first.
func (s *PGStore) FetchMealLogs(ctx context.Context, userID string, limit int) ([]MealLog, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	const q = `
SELECT id, user_id, meal, calories, protein_g, carbs_g, fat_g, logged_at
FROM meal_logs
WHERE user_id = $1
ORDER BY logged_at DESC
LIMIT $2`

	rows, err := s.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, errs.NewDatabase("could not fetch meal logs", err)
	}
	defer rows.Close()

	var out []MealLog
	for rows.Next() {
		var m MealLog
		if err := rows.Scan(&m.ID, &m.UserID, &m.Meal, &m.Calories, &m.Protein, &m.Carbs, &m.Fat, &m.LoggedAt); err != nil {
			return nil, errs.NewDatabase("could not scan meal log", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDatabase("could not iterate meal logs", err)
	}
	return out, nil
}

// FetchMeasurements returns up to limit body measurements, newest first.
func (s *PGStore) FetchMeasurements(ctx context.Context, userID string, limit int) ([]Measurement, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	const q = `
SELECT id, user_id, metric, value, unit, taken_at
FROM body_measurements
WHERE user_id = $1
ORDER BY taken_at DESC
LIMIT $2`

	rows, err := s.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, errs.NewDatabase("could not fetch measurements", err)
	}
	defer rows.Close()

	var out []Measurement
	for rows.Next() {
		var m Measurement
		if err := rows.Scan(&m.ID, &m.UserID, &m.Metric, &m.Value, &m.Unit, &m.TakenAt); err != nil {
			return nil, errs.NewDatabase("could not scan measurement", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDatabase("could not iterate measurements", err)
	}
	return out, nil
}

// RecentEntries returns the newest knowledge-base entries for the user.
// Embeddings are not loaded.
func (s *PGStore) RecentEntries(ctx context.Context, userID string, limit int) ([]ContextEntry, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	const q = `
SELECT id, user_id, content, metadata, created_at
FROM fitness_context
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := s.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, errs.NewDatabase("could not fetch recent entries", err)
	}
	defer rows.Close()

	var out []ContextEntry
	for rows.Next() {
		var e ContextEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Content, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, errs.NewDatabase("could not scan entry", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDatabase("could not iterate entries", err)
	}
	return out, nil
}

// EntriesWithEmbeddings returns up to limit entries that carry an embedding,
// newest first, for client-side similarity ranking.
func (s *PGStore) EntriesWithEmbeddings(ctx context.Context, userID string, limit int) ([]ContextEntry, error) {
	if limit <= 0 {
		limit = DefaultEntryLimit
	}
	const q = `
SELECT id, user_id, content, embedding::text, metadata, created_at
FROM fitness_context
WHERE user_id = $1 AND embedding IS NOT NULL
ORDER BY created_at DESC
LIMIT $2`

	rows, err := s.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, errs.NewDatabase("could not fetch embedded entries", err)
	}
	defer rows.Close()

	var out []ContextEntry
	for rows.Next() {
		var e ContextEntry
		var vec string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Content, &vec, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, errs.NewDatabase("could not scan embedded entry", err)
		}
		e.Embedding, err = parseVector(vec)
		if err != nil {
			return nil, errs.NewDatabase("could not parse stored embedding", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDatabase("could not iterate embedded entries", err)
	}
	return out, nil
}

// SaveEntry persists a knowledge-base entry with its embedding vector.
func (s *PGStore) SaveEntry(ctx context.Context, entry *ContextEntry) error {
	const q = `
INSERT INTO fitness_context (id, user_id, content, embedding, metadata, created_at)
VALUES ($1, $2, $3, $4::vector, $5, now())
ON CONFLICT (id) DO UPDATE
SET content = EXCLUDED.content,
    embedding = EXCLUDED.embedding,
    metadata = EXCLUDED.metadata`

	_, err := s.pool.Exec(ctx, q, entry.ID, entry.UserID, entry.Content, encodeVector(entry.Embedding), entry.Metadata)
	if err != nil {
		return errs.NewDatabase(fmt.Sprintf("could not save entry %s", entry.ID), err)
	}
	return nil
}
