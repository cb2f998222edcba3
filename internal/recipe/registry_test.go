package recipe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockIngredientStore is an in-memory IngredientStore.
type mockIngredientStore struct {
	byName    map[string]*Ingredient
	nextID    int64
	creates   int
	returnErr error
}

func newMockIngredientStore() *mockIngredientStore {
	return &mockIngredientStore{byName: map[string]*Ingredient{}}
}

func (m *mockIngredientStore) GetIngredientByName(ctx context.Context, name string) (*Ingredient, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return m.byName[name], nil
}

func (m *mockIngredientStore) CreateIngredient(ctx context.Context, name string) (*Ingredient, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	m.creates++
	if ing, ok := m.byName[name]; ok {
		return ing, nil
	}
	m.nextID++
	ing := &Ingredient{ID: m.nextID, Name: name}
	m.byName[name] = ing
	return ing, nil
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	store := newMockIngredientStore()
	registry := NewRegistry(store)
	ctx := context.Background()

	first, err := registry.GetOrCreate(ctx, "Carrot")
	require.NoError(t, err)
	second, err := registry.GetOrCreate(ctx, "Carrot")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.creates)
}

func TestGetOrCreateCanonicalName(t *testing.T) {
	store := newMockIngredientStore()
	registry := NewRegistry(store)
	ctx := context.Background()

	composed, err := registry.GetOrCreate(ctx, "  Jalapeño ")
	require.NoError(t, err)
	decomposed, err := registry.GetOrCreate(ctx, "Jalapen\u0303o")
	require.NoError(t, err)

	assert.Equal(t, composed.ID, decomposed.ID)
	assert.Equal(t, "Jalapeño", composed.Name)
}

func TestGetOrCreateIsCaseSensitive(t *testing.T) {
	registry := NewRegistry(newMockIngredientStore())
	ctx := context.Background()

	lower, err := registry.GetOrCreate(ctx, "basil")
	require.NoError(t, err)
	upper, err := registry.GetOrCreate(ctx, "Basil")
	require.NoError(t, err)

	assert.NotEqual(t, lower.ID, upper.ID)
}

func TestGetOrCreateRejectsBlankName(t *testing.T) {
	store := newMockIngredientStore()
	registry := NewRegistry(store)

	_, err := registry.GetOrCreate(context.Background(), "   ")

	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Zero(t, store.creates)
}

func TestGetOrCreateChecksCanonicalLength(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"one character after trimming", " a ", true},
		{"too long", strings.Repeat("a", 101), true},
		{"longest allowed with padding", " " + strings.Repeat("a", 100) + " ", false},
		{"shortest allowed", "Ox", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockIngredientStore()
			registry := NewRegistry(store)

			ing, err := registry.GetOrCreate(context.Background(), tt.in)
			if tt.wantErr {
				assert.Equal(t, KindValidation, KindOf(err))
				assert.Zero(t, store.creates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.in), ing.Name)
		})
	}
}

func TestGetOrCreatePropagatesStoreErrors(t *testing.T) {
	store := newMockIngredientStore()
	store.returnErr = errors.New("connection reset")
	registry := NewRegistry(store)

	_, err := registry.GetOrCreate(context.Background(), "Carrot")

	require.Error(t, err)
	assert.ErrorIs(t, err, store.returnErr)
}
