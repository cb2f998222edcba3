package recipe

import (
	"encoding/json"
	"strings"
)

// Difficulty describes how demanding a recipe is to cook.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Canonical units of measure for an ingredient link.
const (
	UnitGram     = "g"
	UnitKilogram = "kg"
	UnitPound    = "lb"
	UnitOunce    = "oz"
)

// Ingredient is a named foodstuff shared by every recipe that uses it.
type Ingredient struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// IngredientLink is the quantified association between one recipe and one ingredient.
// It refers to its recipe by id only.
type IngredientLink struct {
	ID            int64      `json:"id" db:"id"`
	RecipeID      int64      `json:"recipe_id" db:"recipe_id"`
	Ingredient    Ingredient `json:"ingredient" db:"ingredient"`
	Quantity      float64    `json:"quantity" db:"quantity"`
	UnitOfMeasure string     `json:"unit_of_measure" db:"unit_of_measure"`
}

// Recipe represents a stored recipe together with its ingredient links.
type Recipe struct {
	ID              int64             `json:"id" db:"id"`
	Name            string            `json:"name" db:"name"`
	Instructions    string            `json:"instructions" db:"instructions"`
	PreparationTime int               `json:"preparation_time" db:"preparation_time"`
	Servings        int               `json:"servings" db:"servings"`
	Difficulty      Difficulty        `json:"difficulty" db:"difficulty"`
	Vegetarian      bool              `json:"vegetarian" db:"vegetarian"`
	Ingredients     []*IngredientLink `json:"ingredients" db:"-"`
}

// RecipeInput is the payload accepted when creating or updating a recipe.
type RecipeInput struct {
	Name            string      `json:"name" validate:"notblank,min=2,max=100"`
	Instructions    string      `json:"instructions" validate:"notblank"`
	PreparationTime int         `json:"preparation_time" validate:"gte=1"`
	Servings        int         `json:"servings" validate:"gte=1"`
	Difficulty      Difficulty  `json:"difficulty" validate:"omitempty,oneof=EASY MEDIUM HARD"`
	Vegetarian      bool        `json:"vegetarian"`
	Ingredients     []LinkInput `json:"ingredients" validate:"dive"`
}

// LinkInput is one desired (ingredient, quantity, unit) entry of a recipe.
type LinkInput struct {
	Ingredient    *IngredientInput `json:"ingredient" validate:"required"`
	Quantity      float64          `json:"quantity" validate:"gte=0"`
	UnitOfMeasure string           `json:"unit_of_measure"`
}

// IngredientInput names the ingredient a link should point at.
type IngredientInput struct {
	Name string `json:"name" validate:"notblank,min=2,max=100"`
}

// UnmarshalJSON implements the json.Unmarshaler interface for RecipeInput.
func (in *RecipeInput) UnmarshalJSON(data []byte) error {
	type Alias RecipeInput // Create an alias to avoid infinite recursion
	aux := &struct {
		Difficulty string `json:"difficulty"`
		*Alias
	}{
		Alias: (*Alias)(in),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	in.Difficulty = Difficulty(strings.ToUpper(strings.TrimSpace(aux.Difficulty)))

	return nil
}

// difficulty returns the requested difficulty, falling back to MEDIUM.
func (in RecipeInput) difficulty() Difficulty {
	if in.Difficulty == "" {
		return DifficultyMedium
	}
	return in.Difficulty
}

// canonical returns a copy of in whose ingredient names are in their stored form,
// so validation sees the names that will be persisted.
func (in RecipeInput) canonical() RecipeInput {
	if in.Ingredients == nil {
		return in
	}
	links := make([]LinkInput, len(in.Ingredients))
	for i, link := range in.Ingredients {
		if link.Ingredient != nil {
			link.Ingredient = &IngredientInput{Name: CanonicalName(link.Ingredient.Name)}
		}
		links[i] = link
	}
	in.Ingredients = links
	return in
}

// unit returns the requested unit of measure, falling back to grams.
func (in LinkInput) unit() string {
	unit := strings.TrimSpace(in.UnitOfMeasure)
	if unit == "" {
		return UnitGram
	}
	return unit
}
