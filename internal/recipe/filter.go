package recipe

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const recipeColumns = "r.id, r.name, r.instructions, r.preparation_time, r.servings, r.difficulty, r.vegetarian"

// linkedIngredient correlates a subquery with the recipe row aliased r.
const linkedIngredient = "SELECT 1 FROM recipe_ingredients ri JOIN ingredients i ON i.id = ri.ingredient_id WHERE ri.recipe_id = r.id"

// Filter holds the optional criteria of a recipe search. Nil or empty fields do not constrain.
type Filter struct {
	Vegetarian         *bool
	Servings           *int
	IncludeIngredients []string
	ExcludeIngredients []string
	SearchText         string
}

// Predicate is one SQL condition over the recipe row aliased r.
// Placeholders are written as ?; a slice argument expands an IN (?) list.
type Predicate struct {
	SQL  string
	Args []any
}

// criterion turns one part of a Filter into a predicate, reporting false when that part is absent.
type criterion func(f Filter) (Predicate, bool)

// criteria are combined with AND in this order.
var criteria = []criterion{
	vegetarianCriterion,
	servingsCriterion,
	includeCriterion,
	excludeCriterion,
	searchCriterion,
}

// Predicates returns the predicates for every criterion present in f.
func (f Filter) Predicates() []Predicate {
	var preds []Predicate
	for _, c := range criteria {
		if p, ok := c(f); ok {
			preds = append(preds, p)
		}
	}
	return preds
}

// Query compiles f into a single SELECT over recipes. Values are always bound,
// never interpolated, and the placeholders are ? until rebound for a driver.
// An empty filter selects every recipe.
func (f Filter) Query() (string, []any, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(recipeColumns)
	b.WriteString(" FROM recipes r")

	var args []any
	preds := f.Predicates()
	for i, p := range preds {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(p.SQL)
		args = append(args, p.Args...)
	}
	b.WriteString(" ORDER BY r.id")

	query, args, err := sqlx.In(b.String(), args...)
	if err != nil {
		return "", nil, fmt.Errorf("failed to expand filter query: %w", err)
	}
	return query, args, nil
}

func vegetarianCriterion(f Filter) (Predicate, bool) {
	if f.Vegetarian == nil {
		return Predicate{}, false
	}
	return Predicate{SQL: "r.vegetarian = ?", Args: []any{*f.Vegetarian}}, true
}

func servingsCriterion(f Filter) (Predicate, bool) {
	if f.Servings == nil {
		return Predicate{}, false
	}
	return Predicate{SQL: "r.servings = ?", Args: []any{*f.Servings}}, true
}

// includeCriterion matches recipes linked to at least one of the names.
func includeCriterion(f Filter) (Predicate, bool) {
	names := cleanNames(f.IncludeIngredients)
	if len(names) == 0 {
		return Predicate{}, false
	}
	return Predicate{
		SQL:  "EXISTS (" + linkedIngredient + " AND i.name IN (?))",
		Args: []any{names},
	}, true
}

// excludeCriterion matches recipes linked to none of the names.
func excludeCriterion(f Filter) (Predicate, bool) {
	names := cleanNames(f.ExcludeIngredients)
	if len(names) == 0 {
		return Predicate{}, false
	}
	return Predicate{
		SQL:  "NOT EXISTS (" + linkedIngredient + " AND i.name IN (?))",
		Args: []any{names},
	}, true
}

// searchCriterion matches the text as a substring of the name, the instructions
// or any linked ingredient name.
func searchCriterion(f Filter) (Predicate, bool) {
	if f.SearchText == "" {
		return Predicate{}, false
	}
	pattern := "%" + escapeLike(f.SearchText) + "%"
	return Predicate{
		SQL: `(r.name LIKE ? ESCAPE '\' OR r.instructions LIKE ? ESCAPE '\' OR EXISTS (` +
			linkedIngredient + ` AND i.name LIKE ? ESCAPE '\'))`,
		Args: []any{pattern, pattern, pattern},
	}, true
}

// cleanNames canonicalizes names and drops blanks and repeats.
func cleanNames(names []string) []string {
	var out []string
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = CanonicalName(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
