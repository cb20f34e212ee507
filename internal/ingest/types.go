// Package ingest loads fitness knowledge into the vector store. Each item
// is rendered to a text block, embedded, and saved with type and tag
// metadata for retrieval-time filtering.
package ingest

import "encoding/json"

// DataType classifies an ingestible record.
type DataType string

const (
	TypeExercise    DataType = "exercise"
	TypeRecipe      DataType = "recipe"
	TypeFood        DataType = "food"
	TypeHealthData  DataType = "health_data"
	TypeUserProfile DataType = "user_profile"
	TypeTrainingLog DataType = "training_log"
	TypeMealLog     DataType = "meal_log"
	TypeGoal        DataType = "goal"
	TypeTip         DataType = "tip"
	TypeArticle     DataType = "article"
)

// Item is a single record queued for ingestion. Data is decoded per Type
// when the item is formatted.
type Item struct {
	Type     DataType        `json:"type"`
	UserID   string          `json:"user_id"`
	SourceID string          `json:"source_id,omitempty"`
	Data     json.RawMessage `json:"data"`
}

// Exercise is an exercise description record.
type Exercise struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	MuscleGroups []string `json:"muscle_groups"`
	Equipment    []string `json:"equipment,omitempty"`
	Difficulty   string   `json:"difficulty"`
	Instructions []string `json:"instructions"`
	Tips         []string `json:"tips,omitempty"`
	Variations   []string `json:"variations,omitempty"`
}

// Ingredient is a recipe component.
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit,omitempty"`
}

// Nutrition is a macro breakdown.
type Nutrition struct {
	Calories int     `json:"calories,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fats     float64 `json:"fats,omitempty"`
	Fiber    float64 `json:"fiber,omitempty"`
}

// Recipe is a meal recipe record.
type Recipe struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	Nutrition    *Nutrition   `json:"nutrition,omitempty"`
	PrepTime     int          `json:"prep_time,omitempty"`
	CookTime     int          `json:"cook_time,omitempty"`
	Servings     int          `json:"servings,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
}

// Food is a single-food nutrition record.
type Food struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Nutrition   Nutrition `json:"nutrition"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// HealthData is a health observation record.
type HealthData struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
	Unit  string `json:"unit,omitempty"`
	Date  string `json:"date"`
	Notes string `json:"notes,omitempty"`
}

// TrainingLog is a logged workout record.
type TrainingLog struct {
	ExerciseName string  `json:"exercise_name"`
	Sets         int     `json:"sets"`
	Reps         int     `json:"reps"`
	Weight       float64 `json:"weight,omitempty"`
	Duration     int     `json:"duration,omitempty"`
	Date         string  `json:"date"`
	Notes        string  `json:"notes,omitempty"`
}

// MealLog is a logged meal record.
type MealLog struct {
	MealType string     `json:"meal_type"`
	Foods    []MealItem `json:"foods"`
	Date     string     `json:"date"`
	Notes    string     `json:"notes,omitempty"`
}

// MealItem is a single food within a meal log.
type MealItem struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// UserProfile is a profile snapshot record.
type UserProfile struct {
	Age               int      `json:"age,omitempty"`
	Gender            string   `json:"gender,omitempty"`
	Height            float64  `json:"height,omitempty"`
	Weight            float64  `json:"weight,omitempty"`
	ActivityLevel     string   `json:"activity_level,omitempty"`
	Goals             []string `json:"goals,omitempty"`
	Preferences       []string `json:"preferences,omitempty"`
	Restrictions      []string `json:"restrictions,omitempty"`
	MedicalConditions []string `json:"medical_conditions,omitempty"`
}

// Goal is a fitness goal record.
type Goal struct {
	Type            string `json:"type"`
	Target          string `json:"target,omitempty"`
	Deadline        string `json:"deadline,omitempty"`
	CurrentProgress string `json:"current_progress,omitempty"`
	Description     string `json:"description"`
}
