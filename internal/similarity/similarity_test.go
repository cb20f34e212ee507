package similarity

import (
	"errors"
	"math"
	"testing"
)

// almostEqual reports whether two floats agree within epsilon.
func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-5
}

func Test_Cosine_IdenticalVectors(t *testing.T) {
	t.Parallel()

	v := []float32{1, 2, 3}
	got, err := Cosine(v, v)
	if err != nil {
		t.Fatalf("cosine: %v", err)
	}
	if !almostEqual(got, 1) {
		t.Errorf("cosine(v, v) = %v, want 1", got)
	}
}

func Test_Cosine_OrthogonalVectors(t *testing.T) {
	t.Parallel()

	got, err := Cosine([]float32{1, 0, 0}, []float32{0, 1, 0})
	if err != nil {
		t.Fatalf("cosine: %v", err)
	}
	if !almostEqual(got, 0) {
		t.Errorf("cosine = %v, want 0", got)
	}
}

func Test_Cosine_OppositeVectors(t *testing.T) {
	t.Parallel()

	got, err := Cosine([]float32{1, 0, 0}, []float32{-1, 0, 0})
	if err != nil {
		t.Fatalf("cosine: %v", err)
	}
	if !almostEqual(got, -1) {
		t.Errorf("cosine = %v, want -1", got)
	}
}

func Test_Cosine_ZeroMagnitudeIsZero(t *testing.T) {
	t.Parallel()

	got, err := Cosine([]float32{0, 0, 0}, []float32{1, 2, 3})
	if err != nil {
		t.Fatalf("cosine: %v", err)
	}
	if got != 0 {
		t.Errorf("cosine with zero vector = %v, want 0", got)
	}
}

func Test_Cosine_DimensionMismatch(t *testing.T) {
	t.Parallel()

	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	var dimErr *DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("want DimensionError, got %v", err)
	}
	if dimErr.LenA != 2 || dimErr.LenB != 3 {
		t.Errorf("DimensionError lengths = %d/%d, want 2/3", dimErr.LenA, dimErr.LenB)
	}
}

func Test_L2Distance_Properties(t *testing.T) {
	t.Parallel()

	v := []float32{4, -2, 7}
	if d, err := L2Distance(v, v); err != nil || d != 0 {
		t.Errorf("l2(v, v) = %v, %v; want 0, nil", d, err)
	}

	d, err := L2Distance([]float32{0, 0, 0}, []float32{3, 4, 0})
	if err != nil {
		t.Fatalf("l2: %v", err)
	}
	if !almostEqual(d, 5) {
		t.Errorf("l2 = %v, want 5", d)
	}

	if _, err := L2Distance([]float32{1}, []float32{1, 2}); err == nil {
		t.Error("want dimension error for mismatched lengths")
	}
}

func Test_TopSimilar_RanksDescending(t *testing.T) {
	t.Parallel()

	query := []float32{1, 0, 0}
	candidates := []Candidate{
		{Vector: []float32{0, 1, 0}, Content: "orthogonal"},
		{Vector: []float32{1, 0, 0}, Content: "exact match"},
		{Vector: []float32{0.5, 0.5, 0}, Content: "somewhat similar"},
		{Vector: []float32{0.9, 0.1, 0}, Content: "very similar"},
	}

	got, err := TopSimilar(query, candidates, 2)
	if err != nil {
		t.Fatalf("top similar: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 matches, got %d", len(got))
	}
	if got[0].Content != "exact match" || got[1].Content != "very similar" {
		t.Errorf("wrong ranking: %q then %q", got[0].Content, got[1].Content)
	}
	if got[0].Similarity <= got[1].Similarity {
		t.Errorf("similarities not descending: %v <= %v", got[0].Similarity, got[1].Similarity)
	}
}

func Test_TopSimilar_KExceedsCandidates(t *testing.T) {
	t.Parallel()

	got, err := TopSimilar([]float32{1, 0}, []Candidate{
		{Vector: []float32{1, 0}, Content: "a"},
		{Vector: []float32{0, 1}, Content: "b"},
	}, 10)
	if err != nil {
		t.Fatalf("top similar: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("want all 2 candidates when k exceeds count, got %d", len(got))
	}
}

func Test_TopSimilar_EmptyCandidates(t *testing.T) {
	t.Parallel()

	got, err := TopSimilar([]float32{1, 0}, nil, 3)
	if err != nil {
		t.Fatalf("top similar: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("want empty result, got %d matches", len(got))
	}
}

func Test_TopSimilar_DimensionMismatchPropagates(t *testing.T) {
	t.Parallel()

	_, err := TopSimilar([]float32{1, 0}, []Candidate{{Vector: []float32{1, 0, 0}, Content: "bad"}}, 1)
	if err == nil {
		t.Error("want dimension error from mismatched candidate")
	}
}
