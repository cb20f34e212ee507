package store

import (
	"testing"
)

func TestMatchCallTemplate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		argNames []string
		want     string
	}{
		{
			"canonical order",
			[]string{"query_embedding", "match_user_id", "match_threshold", "match_count"},
			"SELECT id, content, metadata, similarity FROM match_fitness_context($1::vector, $2::uuid, $3, $4)",
		},
		{
			"alternate names",
			[]string{"query_embedding", "filter_user_id", "similarity_threshold", "result_limit"},
			"SELECT id, content, metadata, similarity FROM match_fitness_context($1::vector, $2::uuid, $3, $4)",
		},
		{
			"shuffled order",
			[]string{"match_count", "query_embedding", "user_id", "match_threshold"},
			"SELECT id, content, metadata, similarity FROM match_fitness_context($4, $1::vector, $2::uuid, $3)",
		},
		{
			"unrecognized parameter",
			[]string{"query_embedding", "match_user_id", "match_threshold", "page_size"},
			"",
		},
		{
			"result columns leaked into the names",
			[]string{"query_embedding", "match_user_id", "match_threshold", "match_count", "id", "content", "metadata", "similarity"},
			"",
		},
		{"absent", nil, ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := matchCallTemplate(tc.argNames); got != tc.want {
				t.Errorf("matchCallTemplate(%v) = %q, want %q", tc.argNames, got, tc.want)
			}
		})
	}
}
