package recipe

import (
	"context"
	"fmt"
)

// LinkStore persists ingredient links.
type LinkStore interface {
	CreateLink(ctx context.Context, link *IngredientLink) error
	UpdateLink(ctx context.Context, link *IngredientLink) error
}

// MutationKind says what a planned link mutation does.
type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
)

// LinkMutation is one planned change to a recipe's links.
type LinkMutation struct {
	Kind          MutationKind
	Name          string
	Quantity      float64
	UnitOfMeasure string
	// Link is the existing link an update targets; nil for creates.
	Link *IngredientLink
}

// LinkPlan is the set of mutations that brings a recipe's links in line with a desired list.
type LinkPlan struct {
	Mutations []LinkMutation
	// Retained holds current links that the desired list no longer mentions.
	// They stay attached to the recipe.
	Retained []*IngredientLink
}

// PlanLinks compares the current links of a recipe with the desired entries.
//
// Entries whose ingredient already has a link become in-place updates, the rest
// become creates. An ingredient named twice in desired yields a single mutation
// carrying the values of its last occurrence. When current holds several links
// for one name, the last of them is the one updated.
func PlanLinks(current []*IngredientLink, desired []LinkInput) (*LinkPlan, error) {
	existing := make(map[string]*IngredientLink, len(current))
	for _, link := range current {
		existing[CanonicalName(link.Ingredient.Name)] = link
	}

	plan := &LinkPlan{}
	planned := make(map[string]int, len(desired))
	touched := make(map[*IngredientLink]bool, len(current))

	for i, in := range desired {
		if in.Ingredient == nil {
			return nil, NewValidationError("ingredient is required",
				map[string]string{fmt.Sprintf("ingredients[%d].ingredient", i): "is required"})
		}
		name := CanonicalName(in.Ingredient.Name)
		if name == "" {
			return nil, NewValidationError("ingredient name must not be blank",
				map[string]string{fmt.Sprintf("ingredients[%d].ingredient.name", i): "must not be blank"})
		}
		if in.Quantity < 0 {
			return nil, NewValidationError("quantity must not be negative",
				map[string]string{fmt.Sprintf("ingredients[%d].quantity", i): "must be at least 0"})
		}

		if idx, ok := planned[name]; ok {
			plan.Mutations[idx].Quantity = in.Quantity
			plan.Mutations[idx].UnitOfMeasure = in.unit()
			continue
		}

		m := LinkMutation{
			Kind:          MutationCreate,
			Name:          name,
			Quantity:      in.Quantity,
			UnitOfMeasure: in.unit(),
		}
		if link, ok := existing[name]; ok {
			m.Kind = MutationUpdate
			m.Link = link
			touched[link] = true
		}
		planned[name] = len(plan.Mutations)
		plan.Mutations = append(plan.Mutations, m)
	}

	for _, link := range current {
		if !touched[link] {
			plan.Retained = append(plan.Retained, link)
		}
	}

	return plan, nil
}

// Reconciler applies link plans through the ingredient registry and a link store.
type Reconciler struct {
	registry *Registry
	links    LinkStore
}

// NewReconciler creates a new Reconciler.
func NewReconciler(registry *Registry, links LinkStore) *Reconciler {
	return &Reconciler{registry: registry, links: links}
}

// Reconcile plans and applies the desired links for r.
func (rc *Reconciler) Reconcile(ctx context.Context, r *Recipe, desired []LinkInput) (*LinkPlan, error) {
	plan, err := PlanLinks(r.Ingredients, desired)
	if err != nil {
		return nil, err
	}
	if err := rc.Apply(ctx, r, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Apply executes plan against r in order. Mutations applied before a failure are kept.
func (rc *Reconciler) Apply(ctx context.Context, r *Recipe, plan *LinkPlan) error {
	for _, m := range plan.Mutations {
		ingredient, err := rc.registry.GetOrCreate(ctx, m.Name)
		if err != nil {
			return fmt.Errorf("failed to resolve ingredient %q: %w", m.Name, err)
		}

		switch m.Kind {
		case MutationUpdate:
			m.Link.Quantity = m.Quantity
			m.Link.UnitOfMeasure = m.UnitOfMeasure
			if err := rc.links.UpdateLink(ctx, m.Link); err != nil {
				return err
			}
		case MutationCreate:
			link := &IngredientLink{
				RecipeID:      r.ID,
				Ingredient:    *ingredient,
				Quantity:      m.Quantity,
				UnitOfMeasure: m.UnitOfMeasure,
			}
			if err := rc.links.CreateLink(ctx, link); err != nil {
				return err
			}
			r.Ingredients = append(r.Ingredients, link)
		}
		linkMutations.WithLabelValues(string(m.Kind)).Inc()
	}

	if len(plan.Retained) > 0 {
		linkMutations.WithLabelValues("retain").Add(float64(len(plan.Retained)))
	}
	return nil
}
