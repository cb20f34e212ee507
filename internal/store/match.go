package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peakform/coach-go/internal/errs"
)

// ErrMatchUnavailable indicates the match_fitness_context function is not
// deployed, or its signature could not be resolved. Callers fall back to
// client-side similarity ranking.
var ErrMatchUnavailable = errors.New("store: ranked similarity search not available")

// matchArgPlaceholders maps the known parameter names of the
// match_fitness_context function to the Go-side argument positions.
// Deployments have shipped the function with these parameters in different
// orders, so the call template is built from the actual signature instead of
// assuming one.
var matchArgPlaceholders = map[string]string{
	"query_embedding":      "$1::vector",
	"match_user_id":        "$2::uuid",
	"user_id":              "$2::uuid",
	"filter_user_id":       "$2::uuid",
	"match_threshold":      "$3",
	"similarity_threshold": "$3",
	"match_count":          "$4",
	"result_limit":         "$4",
}

// probeMatchFunction inspects the deployed signature of
// match_fitness_context once and returns the call template to use for every
// subsequent ranked search. Returns "" when the function is absent or its
// parameters are unrecognized. For RETURNS TABLE deployments proargnames
// also lists the result columns, so the query keeps input parameters only.
func probeMatchFunction(ctx context.Context, pool *pgxpool.Pool) string {
	const q = `
SELECT CASE
  WHEN p.proargmodes IS NULL THEN p.proargnames
  ELSE (SELECT array_agg(a.name ORDER BY a.ord)
        FROM unnest(p.proargnames) WITH ORDINALITY AS a(name, ord)
        WHERE p.proargmodes[a.ord] IN ('i', 'b', 'v'))
END
FROM pg_proc p
JOIN pg_namespace n ON n.oid = p.pronamespace
WHERE p.proname = 'match_fitness_context'
  AND n.nspname NOT IN ('pg_catalog', 'information_schema')
LIMIT 1`

	var argNames []string
	if err := pool.QueryRow(ctx, q).Scan(&argNames); err != nil {
		slog.Info("ranked similarity search disabled: match_fitness_context not found",
			slog.Any("error", err))
		return ""
	}

	tmpl := matchCallTemplate(argNames)
	if tmpl == "" {
		slog.Warn("ranked similarity search disabled: unrecognized signature",
			slog.Any("parameters", argNames))
		return ""
	}
	slog.Debug("ranked similarity search enabled", slog.String("call", tmpl))
	return tmpl
}

// matchCallTemplate builds the ranked-search call from the function's input
// parameter names. Returns "" when any name is unrecognized or the count is
// not the expected four.
func matchCallTemplate(argNames []string) string {
	if len(argNames) != 4 {
		return ""
	}
	placeholders := make([]string, 0, len(argNames))
	for _, name := range argNames {
		ph, ok := matchArgPlaceholders[name]
		if !ok {
			return ""
		}
		placeholders = append(placeholders, ph)
	}
	return fmt.Sprintf(
		"SELECT id, content, metadata, similarity FROM match_fitness_context(%s)",
		strings.Join(placeholders, ", "))
}

// MatchContext runs the database-side ranked similarity search using the
// call template resolved at open time.
func (s *PGStore) MatchContext(ctx context.Context, userID string, embedding []float32, threshold float64, count int) ([]ContextMatch, error) {
	if s.matchSQL == "" {
		return nil, ErrMatchUnavailable
	}

	rows, err := s.pool.Query(ctx, s.matchSQL, encodeVector(embedding), userID, threshold, count)
	if err != nil {
		return nil, errs.NewDatabase("ranked similarity search failed", err)
	}
	defer rows.Close()

	var out []ContextMatch
	for rows.Next() {
		var m ContextMatch
		if err := rows.Scan(&m.ID, &m.Content, &m.Metadata, &m.Similarity); err != nil {
			return nil, errs.NewDatabase("could not scan match", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDatabase("could not iterate matches", err)
	}
	return out, nil
}
