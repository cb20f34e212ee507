package store

import "time"

// Profile is a user's fitness profile row.
type Profile struct {
	UserID         string
	Age            int
	Sex            string
	HeightCM       float64
	WeightKG       float64
	ActivityLevel  string
	ExperienceLvl  string
	Injuries       string
	DietaryNotes   string
	PreferredUnits string
	UpdatedAt      time.Time
}

// Goal is a single fitness goal row.
type Goal struct {
	ID          string
	UserID      string
	Description string
	TargetDate  time.Time
	Status      string
	CreatedAt   time.Time
}

// TrainingLog is a single logged workout session.
type TrainingLog struct {
	ID        string
	UserID    string
	Activity  string
	Notes     string
	Duration  int
	Intensity string
	LoggedAt  time.Time
}

// MealLog is a single logged meal.
type MealLog struct {
	ID       string
	UserID   string
	Meal     string
	Calories int
	Protein  float64
	Carbs    float64
	Fat      float64
	LoggedAt time.Time
}

// Measurement is a single body measurement sample.
type Measurement struct {
	ID      string
	UserID  string
	Metric  string
	Value   float64
	Unit    string
	TakenAt time.Time
}

// ContextEntry is a knowledge-base row carrying pre-computed embedding
// vectors for similarity search.
type ContextEntry struct {
	ID        string
	UserID    string
	Content   string
	Embedding []float32
	Metadata  map[string]any
	CreatedAt time.Time
}

// ContextMatch is a ranked similarity-search result.
type ContextMatch struct {
	ID         string
	Content    string
	Metadata   map[string]any
	Similarity float64
}
