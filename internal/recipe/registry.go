package recipe

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// IngredientStore persists the deduplicated ingredient registry.
type IngredientStore interface {
	// GetIngredientByName returns nil, nil when no ingredient has the name.
	GetIngredientByName(ctx context.Context, name string) (*Ingredient, error)
	// CreateIngredient inserts name, or returns the existing row when another
	// writer created it first.
	CreateIngredient(ctx context.Context, name string) (*Ingredient, error)
}

// Bounds on the length of a canonical ingredient name, in characters.
const (
	MinIngredientNameLength = 2
	MaxIngredientNameLength = 100
)

// Registry resolves ingredient names to their single stored identity.
type Registry struct {
	store IngredientStore
}

// NewRegistry creates a new Registry.
func NewRegistry(store IngredientStore) *Registry {
	return &Registry{store: store}
}

// CanonicalName trims name and puts it in Unicode NFC form. Matching stays case-sensitive.
func CanonicalName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// GetOrCreate returns the ingredient stored under name, creating it on first use.
func (r *Registry) GetOrCreate(ctx context.Context, name string) (*Ingredient, error) {
	name = CanonicalName(name)
	if name == "" {
		return nil, NewValidationError("ingredient name must not be blank", map[string]string{"name": "must not be blank"})
	}
	if n := utf8.RuneCountInString(name); n < MinIngredientNameLength || n > MaxIngredientNameLength {
		return nil, NewValidationError("invalid ingredient name", map[string]string{
			"name": fmt.Sprintf("must be between %d and %d characters", MinIngredientNameLength, MaxIngredientNameLength),
		})
	}

	existing, err := r.store.GetIngredientByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	return r.store.CreateIngredient(ctx, name)
}
