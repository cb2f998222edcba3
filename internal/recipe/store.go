package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for recipe data operations.
type Store interface {
	IngredientStore
	LinkStore

	CreateRecipe(ctx context.Context, r *Recipe) error
	UpdateRecipe(ctx context.Context, r *Recipe) error
	// GetRecipe returns nil, nil when the recipe does not exist.
	GetRecipe(ctx context.Context, id int64) (*Recipe, error)
	ListRecipes(ctx context.Context) ([]*Recipe, error)
	FilterRecipes(ctx context.Context, f Filter) ([]*Recipe, error)
	// DeleteRecipe removes the recipe and its links. Ingredients are kept.
	DeleteRecipe(ctx context.Context, id int64) error
	ListIngredients(ctx context.Context) ([]*Ingredient, error)
}

// SQLStore implements Store on top of sqlx. Queries are written with ? placeholders
// and rebound for the connected driver.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore creates a new SQLStore over an open, migrated database.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// CreateRecipe inserts the scalar fields of r and sets r.ID.
func (s *SQLStore) CreateRecipe(ctx context.Context, r *Recipe) error {
	err := s.db.QueryRowxContext(ctx,
		s.db.Rebind("INSERT INTO recipes (name, instructions, preparation_time, servings, difficulty, vegetarian) VALUES (?, ?, ?, ?, ?, ?) RETURNING id"),
		r.Name,
		r.Instructions,
		r.PreparationTime,
		r.Servings,
		r.Difficulty,
		r.Vegetarian,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

// UpdateRecipe overwrites the scalar fields of the stored recipe with those of r.
func (s *SQLStore) UpdateRecipe(ctx context.Context, r *Recipe) error {
	_, err := s.db.ExecContext(ctx,
		s.db.Rebind("UPDATE recipes SET name = ?, instructions = ?, preparation_time = ?, servings = ?, difficulty = ?, vegetarian = ? WHERE id = ?"),
		r.Name,
		r.Instructions,
		r.PreparationTime,
		r.Servings,
		r.Difficulty,
		r.Vegetarian,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update recipe %d: %w", r.ID, err)
	}
	return nil
}

// GetRecipe retrieves a recipe and its links by id.
func (s *SQLStore) GetRecipe(ctx context.Context, id int64) (*Recipe, error) {
	var r Recipe
	err := s.db.GetContext(ctx, &r, s.db.Rebind("SELECT "+recipeColumns+" FROM recipes r WHERE r.id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Recipe not found
		}
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}

	if err := s.loadLinks(ctx, []*Recipe{&r}); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRecipes retrieves every recipe ordered by id.
func (s *SQLStore) ListRecipes(ctx context.Context) ([]*Recipe, error) {
	return s.FilterRecipes(ctx, Filter{})
}

// FilterRecipes retrieves the recipes matching f ordered by id.
func (s *SQLStore) FilterRecipes(ctx context.Context, f Filter) ([]*Recipe, error) {
	query, args, err := f.Query()
	if err != nil {
		return nil, err
	}

	recipes := []*Recipe{}
	if err := s.db.SelectContext(ctx, &recipes, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get recipes: %w", err)
	}

	if err := s.loadLinks(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// DeleteRecipe removes the recipe and its links in one transaction.
func (s *SQLStore) DeleteRecipe(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete of recipe %d: %w", id, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM recipe_ingredients WHERE recipe_id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete links of recipe %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM recipes WHERE id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete of recipe %d: %w", id, err)
	}
	return nil
}

// GetIngredientByName retrieves an ingredient by its exact name.
func (s *SQLStore) GetIngredientByName(ctx context.Context, name string) (*Ingredient, error) {
	var ing Ingredient
	err := s.db.GetContext(ctx, &ing, s.db.Rebind("SELECT id, name FROM ingredients WHERE name = ?"), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Ingredient not found
		}
		return nil, fmt.Errorf("failed to get ingredient %q: %w", name, err)
	}
	return &ing, nil
}

// CreateIngredient inserts an ingredient. A concurrent insert of the same name
// resolves to the row that won.
func (s *SQLStore) CreateIngredient(ctx context.Context, name string) (*Ingredient, error) {
	var ing Ingredient
	err := s.db.QueryRowxContext(ctx,
		s.db.Rebind("INSERT INTO ingredients (name) VALUES (?) ON CONFLICT (name) DO UPDATE SET name = excluded.name RETURNING id, name"),
		name,
	).StructScan(&ing)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingredient %q: %w", name, err)
	}
	return &ing, nil
}

// ListIngredients retrieves every ingredient ordered by id.
func (s *SQLStore) ListIngredients(ctx context.Context) ([]*Ingredient, error) {
	ingredients := []*Ingredient{}
	if err := s.db.SelectContext(ctx, &ingredients, "SELECT id, name FROM ingredients ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

// CreateLink inserts link and sets link.ID.
func (s *SQLStore) CreateLink(ctx context.Context, link *IngredientLink) error {
	err := s.db.QueryRowxContext(ctx,
		s.db.Rebind("INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity, unit_of_measure) VALUES (?, ?, ?, ?) RETURNING id"),
		link.RecipeID,
		link.Ingredient.ID,
		link.Quantity,
		link.UnitOfMeasure,
	).Scan(&link.ID)
	if err != nil {
		return fmt.Errorf("failed to create link for ingredient %q: %w", link.Ingredient.Name, err)
	}
	return nil
}

// UpdateLink stores the quantity and unit of an existing link.
func (s *SQLStore) UpdateLink(ctx context.Context, link *IngredientLink) error {
	_, err := s.db.ExecContext(ctx,
		s.db.Rebind("UPDATE recipe_ingredients SET quantity = ?, unit_of_measure = ? WHERE id = ?"),
		link.Quantity,
		link.UnitOfMeasure,
		link.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update link %d: %w", link.ID, err)
	}
	return nil
}

// loadLinks fills in the links of every recipe with one query.
func (s *SQLStore) loadLinks(ctx context.Context, recipes []*Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	byID := make(map[int64]*Recipe, len(recipes))
	ids := make([]int64, 0, len(recipes))
	for _, r := range recipes {
		r.Ingredients = []*IngredientLink{}
		byID[r.ID] = r
		ids = append(ids, r.ID)
	}

	query, args, err := sqlx.In(`SELECT ri.id, ri.recipe_id, ri.quantity, ri.unit_of_measure, i.id AS "ingredient.id", i.name AS "ingredient.name"
FROM recipe_ingredients ri
JOIN ingredients i ON i.id = ri.ingredient_id
WHERE ri.recipe_id IN (?)
ORDER BY ri.id`, ids)
	if err != nil {
		return fmt.Errorf("failed to expand link query: %w", err)
	}

	var links []*IngredientLink
	if err := s.db.SelectContext(ctx, &links, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load recipe links: %w", err)
	}

	for _, link := range links {
		if r, ok := byID[link.RecipeID]; ok {
			r.Ingredients = append(r.Ingredients, link)
		}
	}
	return nil
}
