package recipe

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
)

// Service owns the recipe aggregate: a recipe, its links and the ingredients they point at.
type Service struct {
	store      Store
	reconciler *Reconciler
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewService creates a new Service. A nil logger falls back to slog.Default.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		reconciler: NewReconciler(NewRegistry(store), store),
		validate:   newValidator(),
		logger:     logger,
	}
}

// AddRecipe validates in, stores a new recipe and links every requested ingredient.
func (s *Service) AddRecipe(ctx context.Context, in RecipeInput) (*Recipe, error) {
	if err := validateInput(s.validate, in); err != nil {
		return nil, err
	}

	r := &Recipe{
		Name:            in.Name,
		Instructions:    in.Instructions,
		PreparationTime: in.PreparationTime,
		Servings:        in.Servings,
		Difficulty:      in.difficulty(),
		Vegetarian:      in.Vegetarian,
		Ingredients:     []*IngredientLink{},
	}
	if err := s.store.CreateRecipe(ctx, r); err != nil {
		return nil, classify("failed to add recipe", err)
	}

	plan, err := s.reconciler.Reconcile(ctx, r, in.Ingredients)
	if err != nil {
		return nil, classify("failed to link ingredients", err)
	}

	s.logger.InfoContext(ctx, "recipe added",
		"recipe_id", r.ID,
		"name", r.Name,
		"links", len(plan.Mutations),
	)
	return r, nil
}

// UpdateRecipe applies in to the recipe with the given id.
//
// Only the name, instructions, preparation time and difficulty are copied; servings and
// the vegetarian flag keep their stored values. Links are reconciled against in.Ingredients
// and links no longer mentioned are kept.
func (s *Service) UpdateRecipe(ctx context.Context, id int64, in RecipeInput) (*Recipe, error) {
	if err := validateInput(s.validate, in); err != nil {
		return nil, err
	}

	r, err := s.store.GetRecipe(ctx, id)
	if err != nil {
		return nil, classify("failed to load recipe", err)
	}
	if r == nil {
		return nil, notFoundError(id)
	}

	r.Name = in.Name
	r.Instructions = in.Instructions
	r.PreparationTime = in.PreparationTime
	r.Difficulty = in.difficulty()

	if err := s.store.UpdateRecipe(ctx, r); err != nil {
		return nil, classify("failed to update recipe", err)
	}

	plan, err := s.reconciler.Reconcile(ctx, r, in.Ingredients)
	if err != nil {
		return nil, classify("failed to link ingredients", err)
	}

	for _, link := range plan.Retained {
		s.logger.WarnContext(ctx, "ingredient link retained",
			"recipe_id", r.ID,
			"link_id", link.ID,
			"ingredient", link.Ingredient.Name,
		)
	}
	s.logger.InfoContext(ctx, "recipe updated",
		"recipe_id", r.ID,
		"links", len(plan.Mutations),
		"retained", len(plan.Retained),
	)
	return r, nil
}

// GetRecipe returns the recipe with the given id.
func (s *Service) GetRecipe(ctx context.Context, id int64) (*Recipe, error) {
	r, err := s.store.GetRecipe(ctx, id)
	if err != nil {
		return nil, classify("failed to get recipe", err)
	}
	if r == nil {
		return nil, notFoundError(id)
	}
	return r, nil
}

// ListRecipes returns every recipe.
func (s *Service) ListRecipes(ctx context.Context) ([]*Recipe, error) {
	recipes, err := s.store.ListRecipes(ctx)
	if err != nil {
		return nil, classify("failed to list recipes", err)
	}
	return recipes, nil
}

// FilterRecipes returns the recipes matching every criterion set in f.
func (s *Service) FilterRecipes(ctx context.Context, f Filter) ([]*Recipe, error) {
	recipes, err := s.store.FilterRecipes(ctx, f)
	if err != nil {
		return nil, classify("failed to filter recipes", err)
	}
	s.logger.DebugContext(ctx, "recipes filtered", "matches", len(recipes))
	return recipes, nil
}

// DeleteRecipe removes the recipe and its links. The ingredients stay registered.
func (s *Service) DeleteRecipe(ctx context.Context, id int64) error {
	r, err := s.store.GetRecipe(ctx, id)
	if err != nil {
		return classify("failed to load recipe", err)
	}
	if r == nil {
		return notFoundError(id)
	}

	if err := s.store.DeleteRecipe(ctx, id); err != nil {
		return classify("failed to delete recipe", err)
	}

	s.logger.InfoContext(ctx, "recipe deleted", "recipe_id", id, "links", len(r.Ingredients))
	return nil
}

// ListIngredients returns every registered ingredient.
func (s *Service) ListIngredients(ctx context.Context) ([]*Ingredient, error) {
	ingredients, err := s.store.ListIngredients(ctx)
	if err != nil {
		return nil, classify("failed to list ingredients", err)
	}
	return ingredients, nil
}
