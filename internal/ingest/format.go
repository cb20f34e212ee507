package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format renders an item's data as the text block that gets embedded. The
// templates keep field labels in the text so the embedding model sees the
// semantics, not just raw values. Unknown types fall back to the raw JSON.
func Format(item Item) (string, error) {
	switch item.Type {
	case TypeExercise:
		var e Exercise
		if err := json.Unmarshal(item.Data, &e); err != nil {
			return "", fmt.Errorf("ingest: decode exercise: %w", err)
		}
		equipment := strings.Join(e.Equipment, ", ")
		if equipment == "" {
			equipment = "Bodyweight"
		}
		return fmt.Sprintf(`Exercise: %s
Description: %s
Muscle Groups: %s
Equipment: %s
Difficulty: %s
Instructions: %s
Tips: %s
Variations: %s`,
			e.Name, e.Description, strings.Join(e.MuscleGroups, ", "), equipment,
			e.Difficulty, strings.Join(e.Instructions, " "), strings.Join(e.Tips, " "),
			strings.Join(e.Variations, ", ")), nil

	case TypeRecipe:
		var r Recipe
		if err := json.Unmarshal(item.Data, &r); err != nil {
			return "", fmt.Errorf("ingest: decode recipe: %w", err)
		}
		ingredients := make([]string, 0, len(r.Ingredients))
		for _, i := range r.Ingredients {
			part := i.Amount
			if i.Unit != "" {
				part += " " + i.Unit
			}
			ingredients = append(ingredients, part+" "+i.Name)
		}
		nutrition := ""
		if r.Nutrition != nil {
			nutrition = fmt.Sprintf("Calories: %d, Protein: %gg, Carbs: %gg, Fats: %gg",
				r.Nutrition.Calories, r.Nutrition.Protein, r.Nutrition.Carbs, r.Nutrition.Fats)
		}
		servings := r.Servings
		if servings == 0 {
			servings = 1
		}
		return fmt.Sprintf(`Recipe: %s
Description: %s
Ingredients: %s
Instructions: %s
Nutrition: %s
Prep Time: %d minutes
Cook Time: %d minutes
Servings: %d
Tags: %s`,
			r.Name, r.Description, strings.Join(ingredients, ", "),
			strings.Join(r.Instructions, " "), nutrition, r.PrepTime, r.CookTime,
			servings, strings.Join(r.Tags, ", ")), nil

	case TypeFood:
		var f Food
		if err := json.Unmarshal(item.Data, &f); err != nil {
			return "", fmt.Errorf("ingest: decode food: %w", err)
		}
		return fmt.Sprintf(`Food: %s
Description: %s
Nutrition per 100g: Calories: %d, Protein: %gg, Carbs: %gg, Fats: %gg, Fiber: %gg
Category: %s
Tags: %s`,
			f.Name, f.Description, f.Nutrition.Calories, f.Nutrition.Protein,
			f.Nutrition.Carbs, f.Nutrition.Fats, f.Nutrition.Fiber, f.Category,
			strings.Join(f.Tags, ", ")), nil

	case TypeHealthData:
		var h HealthData
		if err := json.Unmarshal(item.Data, &h); err != nil {
			return "", fmt.Errorf("ingest: decode health data: %w", err)
		}
		return fmt.Sprintf(`Health Data: %s
Value: %s %s
Date: %s
Notes: %s`,
			h.Type, h.Value, h.Unit, h.Date, h.Notes), nil

	case TypeTrainingLog:
		var l TrainingLog
		if err := json.Unmarshal(item.Data, &l); err != nil {
			return "", fmt.Errorf("ingest: decode training log: %w", err)
		}
		line := fmt.Sprintf("Sets: %d, Reps: %d", l.Sets, l.Reps)
		if l.Weight > 0 {
			line += fmt.Sprintf(", Weight: %gkg", l.Weight)
		}
		if l.Duration > 0 {
			line += fmt.Sprintf(", Duration: %dmin", l.Duration)
		}
		return fmt.Sprintf(`Training Log: %s
%s
Date: %s
Notes: %s`,
			l.ExerciseName, line, l.Date, l.Notes), nil

	case TypeMealLog:
		var m MealLog
		if err := json.Unmarshal(item.Data, &m); err != nil {
			return "", fmt.Errorf("ingest: decode meal log: %w", err)
		}
		foods := make([]string, 0, len(m.Foods))
		for _, f := range m.Foods {
			foods = append(foods, f.Amount+" "+f.Name)
		}
		return fmt.Sprintf(`Meal Log: %s
Foods: %s
Date: %s
Notes: %s`,
			m.MealType, strings.Join(foods, ", "), m.Date, m.Notes), nil

	case TypeUserProfile:
		var p UserProfile
		if err := json.Unmarshal(item.Data, &p); err != nil {
			return "", fmt.Errorf("ingest: decode user profile: %w", err)
		}
		return fmt.Sprintf(`User Profile:
Age: %s, Gender: %s
Height: %scm, Weight: %skg
Activity Level: %s
Goals: %s
Preferences: %s
Restrictions: %s
Medical Conditions: %s`,
			orNA(intStr(p.Age)), orNA(p.Gender), orNA(floatStr(p.Height)),
			orNA(floatStr(p.Weight)), orNA(p.ActivityLevel),
			orNone(strings.Join(p.Goals, ", ")), orNone(strings.Join(p.Preferences, ", ")),
			orNone(strings.Join(p.Restrictions, ", ")),
			orNone(strings.Join(p.MedicalConditions, ", "))), nil

	case TypeGoal:
		var g Goal
		if err := json.Unmarshal(item.Data, &g); err != nil {
			return "", fmt.Errorf("ingest: decode goal: %w", err)
		}
		return fmt.Sprintf(`Fitness Goal: %s
Target: %s
Deadline: %s
Current Progress: %s
Description: %s`,
			g.Type, orNA(g.Target), orNA(g.Deadline), orNA(g.CurrentProgress),
			g.Description), nil

	default:
		// Tips, articles, and anything future-shaped embed as raw JSON.
		return string(item.Data), nil
	}
}

// Tags extracts retrieval-time filter tags from an item, mirroring the
// taggable types: exercises contribute muscle groups, equipment, and
// difficulty; recipes and foods contribute their tag lists.
func Tags(item Item) []string {
	var tags []string
	switch item.Type {
	case TypeExercise:
		var e Exercise
		if err := json.Unmarshal(item.Data, &e); err != nil {
			return nil
		}
		tags = append(tags, e.MuscleGroups...)
		tags = append(tags, e.Equipment...)
		if e.Difficulty != "" {
			tags = append(tags, e.Difficulty)
		}
	case TypeRecipe:
		var r Recipe
		if err := json.Unmarshal(item.Data, &r); err != nil {
			return nil
		}
		tags = append(tags, r.Tags...)
	case TypeFood:
		var f Food
		if err := json.Unmarshal(item.Data, &f); err != nil {
			return nil
		}
		if f.Category != "" {
			tags = append(tags, f.Category)
		}
		tags = append(tags, f.Tags...)
	}
	return tags
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

func intStr(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}

func floatStr(f float64) string {
	if f == 0 {
		return ""
	}
	return fmt.Sprintf("%g", f)
}
