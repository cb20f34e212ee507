package rag

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/peakform/coach-go/internal/store"
)

// QdrantConfig holds connection parameters for a Qdrant-backed ranked search.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Collection is the Qdrant collection name (default: fitness_context).
	Collection string

	// VectorSize is the dimensionality of the stored embeddings.
	VectorSize uint64

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantSearcher implements RankedSearcher backed by a Qdrant instance.
// Entries are stored per user and filtered by user_id payload at query time.
type QdrantSearcher struct {
	client *qdrant.Client
	cfg    *QdrantConfig
}

// NewQdrantSearcher connects to Qdrant, ensures the target collection
// exists, and returns a ready-to-use searcher.
func NewQdrantSearcher(ctx context.Context, cfg *QdrantConfig) (*QdrantSearcher, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Collection == "" {
		cfg.Collection = "fitness_context"
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	s := &QdrantSearcher{client: client, cfg: cfg}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureCollection creates the collection if it does not already exist.
func (s *QdrantSearcher) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %q: %w", s.cfg.Collection, err)
	}
	return nil
}

// MatchContext performs a cosine similarity search scoped to the user.
func (s *QdrantSearcher) MatchContext(ctx context.Context, userID string, embedding []float32, threshold float64, count int) ([]store.ContextMatch, error) {
	limit := uint64(count)
	scoreThreshold := float32(threshold)
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.Collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &limit,
		ScoreThreshold: &scoreThreshold,
		WithPayload:    qdrant.NewWithPayload(true),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("user_id", userID),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search failed: %w", err)
	}

	matches := make([]store.ContextMatch, 0, len(results))
	for _, r := range results {
		m := store.ContextMatch{
			ID:         r.Id.GetUuid(),
			Similarity: float64(r.Score),
		}
		if p := r.Payload; p != nil {
			if v, ok := p["content"]; ok {
				m.Content = v.GetStringValue()
			}
			meta := make(map[string]any)
			for k, v := range p {
				if k == "content" || k == "user_id" {
					continue
				}
				meta[k] = v.GetStringValue()
			}
			if len(meta) > 0 {
				m.Metadata = meta
			}
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Upsert stores entries with their pre-computed embeddings, keyed by entry
// ID and carrying user_id in the payload for query-time filtering.
func (s *QdrantSearcher) Upsert(ctx context.Context, entries []store.ContextEntry) error {
	points := make([]*qdrant.PointStruct, 0, len(entries))
	for _, e := range entries {
		payload := map[string]interface{}{
			"content": e.Content,
			"user_id": e.UserID,
		}
		for k, v := range e.Metadata {
			payload[k] = v
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(e.ID),
			Vectors: qdrant.NewVectors(e.Embedding...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.Collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert failed: %w", err)
	}
	return nil
}

// Ping checks Qdrant reachability using its native HealthCheck RPC.
func (s *QdrantSearcher) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant: health check failed: %w", err)
	}
	return nil
}

// Close closes the underlying Qdrant gRPC connection.
func (s *QdrantSearcher) Close() error {
	return s.client.Close()
}
