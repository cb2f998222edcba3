package recipe

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedRecipes stores a small fixture with both vegetarian and non-vegetarian recipes.
func seedRecipes(t *testing.T, svc *Service) map[string]int64 {
	t.Helper()
	ctx := context.Background()

	fixtures := []RecipeInput{
		input("Tomato Salad", 2, true, entry("tomato", 300, "g"), entry("Basil", 10, "g")),
		input("Beef Stew", 4, false, entry("beef", 800, "g"), entry("tomato", 200, "g")),
		input("Pancakes", 4, true, entry("Flour", 250, "g"), entry("Milk", 500, "g")),
		input("Steak", 1, false, entry("beef", 300, "g")),
		input("Plain Rice", 2, true),
	}
	fixtures[2].Instructions = "Whisk and fry; serve with fruit salad"

	ids := make(map[string]int64, len(fixtures))
	for _, in := range fixtures {
		r, err := svc.AddRecipe(ctx, in)
		require.NoError(t, err)
		ids[r.Name] = r.ID
	}
	return ids
}

func names(recipes []*Recipe) []string {
	out := make([]string, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.Name)
	}
	return out
}

func TestFilterRecipes(t *testing.T) {
	svc, _ := newTestService(t)
	seedRecipes(t, svc)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "no criteria returns everything",
			filter: Filter{},
			want:   []string{"Tomato Salad", "Beef Stew", "Pancakes", "Steak", "Plain Rice"},
		},
		{
			name:   "vegetarian",
			filter: Filter{Vegetarian: boolPtr(true)},
			want:   []string{"Tomato Salad", "Pancakes", "Plain Rice"},
		},
		{
			name:   "not vegetarian",
			filter: Filter{Vegetarian: boolPtr(false)},
			want:   []string{"Beef Stew", "Steak"},
		},
		{
			name:   "servings",
			filter: Filter{Servings: intPtr(4)},
			want:   []string{"Beef Stew", "Pancakes"},
		},
		{
			name:   "include tomato",
			filter: Filter{IncludeIngredients: []string{"tomato"}},
			want:   []string{"Tomato Salad", "Beef Stew"},
		},
		{
			name:   "include matches any listed name once",
			filter: Filter{IncludeIngredients: []string{"tomato", "Basil", "beef"}},
			want:   []string{"Tomato Salad", "Beef Stew", "Steak"},
		},
		{
			name:   "exclude beef",
			filter: Filter{ExcludeIngredients: []string{"beef"}},
			want:   []string{"Tomato Salad", "Pancakes", "Plain Rice"},
		},
		{
			name:   "search name instructions and ingredients",
			filter: Filter{SearchText: "salad"},
			want:   []string{"Tomato Salad", "Pancakes"},
		},
		{
			name:   "search ingredient name",
			filter: Filter{SearchText: "Milk"},
			want:   []string{"Pancakes"},
		},
		{
			name:   "search recipe without ingredients",
			filter: Filter{SearchText: "Rice"},
			want:   []string{"Plain Rice"},
		},
		{
			name:   "wildcards in search text are literal",
			filter: Filter{SearchText: "%"},
			want:   []string{},
		},
		{
			name: "criteria combine with AND",
			filter: Filter{
				Vegetarian:         boolPtr(false),
				IncludeIngredients: []string{"tomato"},
				ExcludeIngredients: []string{"Basil"},
				Servings:           intPtr(4),
				SearchText:         "Stew",
			},
			want: []string{"Beef Stew"},
		},
		{
			name:   "unknown ingredient",
			filter: Filter{IncludeIngredients: []string{"Saffron"}},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.FilterRecipes(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFilterRecipesLoadsLinks(t *testing.T) {
	svc, _ := newTestService(t)
	seedRecipes(t, svc)

	got, err := svc.FilterRecipes(context.Background(), Filter{IncludeIngredients: []string{"Basil"}})
	require.NoError(t, err)

	require.Len(t, got, 1)
	require.Len(t, got[0].Ingredients, 2)
	assert.Equal(t, "tomato", got[0].Ingredients[0].Ingredient.Name)
	assert.Equal(t, "Basil", got[0].Ingredients[1].Ingredient.Name)
}

func TestListRecipesEmpty(t *testing.T) {
	store := newTestStore(t)

	recipes, err := store.ListRecipes(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, recipes)
	assert.Empty(t, recipes)
}

func TestCreateIngredientConverges(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]int64, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ing, err := store.CreateIngredient(ctx, "Garlic")
			errs[i] = err
			if err == nil {
				ids[i] = ing.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	ingredients, err := store.ListIngredients(ctx)
	require.NoError(t, err)
	assert.Len(t, ingredients, 1)
}

func TestGetIngredientByNameMissing(t *testing.T) {
	store := newTestStore(t)

	ing, err := store.GetIngredientByName(context.Background(), "Saffron")
	require.NoError(t, err)
	assert.Nil(t, ing)
}

func TestGetRecipeMissing(t *testing.T) {
	store := newTestStore(t)

	r, err := store.GetRecipe(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, r)
}
