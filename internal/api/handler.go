package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"recipebook/internal/recipe"
)

// RecipeService defines the recipe operations exposed over HTTP.
type RecipeService interface {
	AddRecipe(ctx context.Context, in recipe.RecipeInput) (*recipe.Recipe, error)
	UpdateRecipe(ctx context.Context, id int64, in recipe.RecipeInput) (*recipe.Recipe, error)
	GetRecipe(ctx context.Context, id int64) (*recipe.Recipe, error)
	ListRecipes(ctx context.Context) ([]*recipe.Recipe, error)
	FilterRecipes(ctx context.Context, f recipe.Filter) ([]*recipe.Recipe, error)
	DeleteRecipe(ctx context.Context, id int64) error
	ListIngredients(ctx context.Context) ([]*recipe.Ingredient, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Service RecipeService
	// Timeout bounds every service call made for one request.
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(service RecipeService, timeout time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Service: service, Timeout: timeout, Logger: logger}
}

// Register mounts the recipe and ingredient routes on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	recipes := rg.Group("/recipes")
	recipes.POST("", h.AddRecipe)
	recipes.GET("", h.ListRecipes)
	recipes.GET("/filter", h.FilterRecipes)
	recipes.GET("/:id", h.GetRecipe)
	recipes.PUT("/:id", h.UpdateRecipe)
	recipes.DELETE("/:id", h.DeleteRecipe)

	rg.GET("/ingredients", h.ListIngredients)
}

// AddRecipe handles requests to create a recipe.
func (h *Handler) AddRecipe(c *gin.Context) {
	var in recipe.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, recipe.NewValidationError("invalid request body: "+err.Error(), nil))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	r, err := h.Service.AddRecipe(ctx, in)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, r)
}

// UpdateRecipe handles requests to update the recipe named by the id path parameter.
func (h *Handler) UpdateRecipe(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}

	var in recipe.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, recipe.NewValidationError("invalid request body: "+err.Error(), nil))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	r, err := h.Service.UpdateRecipe(ctx, id, in)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// GetRecipe handles requests to retrieve a single recipe by id.
func (h *Handler) GetRecipe(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	r, err := h.Service.GetRecipe(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// ListRecipes handles requests to retrieve every recipe.
func (h *Handler) ListRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	recipes, err := h.Service.ListRecipes(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, recipes)
}

// FilterRecipes handles requests to search recipes.
//
// Query parameters: vegetarian (bool), servings (int), includeIngredients and
// excludeIngredients (repeated or comma separated) and searchText.
func (h *Handler) FilterRecipes(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	recipes, err := h.Service.FilterRecipes(ctx, f)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, recipes)
}

// DeleteRecipe handles requests to delete a recipe and its links.
func (h *Handler) DeleteRecipe(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.DeleteRecipe(ctx, id); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListIngredients handles requests to retrieve every registered ingredient.
func (h *Handler) ListIngredients(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	ingredients, err := h.Service.ListIngredients(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ingredients)
}

func (h *Handler) recipeID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		h.fail(c, recipe.NewValidationError("invalid recipe id", map[string]string{"id": "must be a positive integer"}))
		return 0, false
	}
	return id, true
}

func parseFilter(c *gin.Context) (recipe.Filter, error) {
	var f recipe.Filter

	if raw := strings.TrimSpace(c.Query("vegetarian")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, recipe.NewValidationError("invalid filter", map[string]string{"vegetarian": "must be true or false"})
		}
		f.Vegetarian = &v
	}

	if raw := strings.TrimSpace(c.Query("servings")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return f, recipe.NewValidationError("invalid filter", map[string]string{"servings": "must be an integer"})
		}
		f.Servings = &v
	}

	f.IncludeIngredients = queryList(c, "includeIngredients")
	f.ExcludeIngredients = queryList(c, "excludeIngredients")
	f.SearchText = strings.TrimSpace(c.Query("searchText"))

	return f, nil
}

// queryList collects a list parameter given either repeated or comma separated.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
