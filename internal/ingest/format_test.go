package ingest

import (
	"encoding/json"
	"strings"
	"testing"
)

func mustItem(t *testing.T, typ DataType, data any) Item {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return Item{Type: typ, UserID: "u", Data: raw}
}

func TestFormat_Exercise(t *testing.T) {
	t.Parallel()

	item := mustItem(t, TypeExercise, Exercise{
		Name:         "Barbell Back Squat",
		Description:  "Compound lower-body lift",
		MuscleGroups: []string{"quads", "glutes"},
		Difficulty:   "intermediate",
		Instructions: []string{"Brace.", "Squat."},
	})

	got, err := Format(item)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	for _, want := range []string{
		"Exercise: Barbell Back Squat",
		"Muscle Groups: quads, glutes",
		"Equipment: Bodyweight",
		"Difficulty: intermediate",
		"Instructions: Brace. Squat.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestFormat_TrainingLogOptionalFields(t *testing.T) {
	t.Parallel()

	withWeight := mustItem(t, TypeTrainingLog, TrainingLog{
		ExerciseName: "deadlift", Sets: 3, Reps: 5, Weight: 140, Date: "2025-05-01",
	})
	got, err := Format(withWeight)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(got, "Sets: 3, Reps: 5, Weight: 140kg") {
		t.Errorf("weight missing:\n%s", got)
	}

	noWeight := mustItem(t, TypeTrainingLog, TrainingLog{
		ExerciseName: "plank", Sets: 3, Reps: 1, Duration: 5, Date: "2025-05-01",
	})
	got, err = Format(noWeight)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if strings.Contains(got, "Weight:") {
		t.Errorf("zero weight should be omitted:\n%s", got)
	}
	if !strings.Contains(got, "Duration: 5min") {
		t.Errorf("duration missing:\n%s", got)
	}
}

func TestFormat_UserProfilePlaceholders(t *testing.T) {
	t.Parallel()

	item := mustItem(t, TypeUserProfile, UserProfile{Age: 28, Gender: "male"})
	got, err := Format(item)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	for _, want := range []string{"Age: 28", "Gender: male", "Height: N/Acm", "Goals: None"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestFormat_UnknownTypeFallsBackToRawJSON(t *testing.T) {
	t.Parallel()

	item := Item{Type: TypeTip, Data: json.RawMessage(`{"text":"hydrate before training"}`)}
	got, err := Format(item)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if got != `{"text":"hydrate before training"}` {
		t.Errorf("Format = %q", got)
	}
}

func TestFormat_MalformedDataErrors(t *testing.T) {
	t.Parallel()

	item := Item{Type: TypeExercise, Data: json.RawMessage(`not json`)}
	if _, err := Format(item); err == nil {
		t.Fatal("want error for malformed data")
	}
}

func TestTags(t *testing.T) {
	t.Parallel()

	exercise := mustItem(t, TypeExercise, Exercise{
		MuscleGroups: []string{"chest"},
		Equipment:    []string{"barbell"},
		Difficulty:   "advanced",
	})
	got := Tags(exercise)
	if len(got) != 3 {
		t.Errorf("Tags = %v, want 3 entries", got)
	}

	food := mustItem(t, TypeFood, Food{Category: "protein", Tags: []string{"lean"}})
	got = Tags(food)
	if len(got) != 2 {
		t.Errorf("Tags = %v, want 2 entries", got)
	}

	log := mustItem(t, TypeTrainingLog, TrainingLog{ExerciseName: "squat"})
	if got := Tags(log); len(got) != 0 {
		t.Errorf("training logs carry no tags, got %v", got)
	}
}
