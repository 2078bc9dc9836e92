package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/metrics"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/services"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/validation"
	"github.com/gin-gonic/gin"
)

// RecipeController handles HTTP requests related to recipes
type RecipeController interface {
	// ListRecipes retrieves all recipes
	ListRecipes(c *gin.Context)
	// MyRecipes retrieves the recipes of the authenticated user
	MyRecipes(c *gin.Context)
	// GetRecipe retrieves a recipe by its ID
	GetRecipe(c *gin.Context)
	// CreateRecipe creates a new recipe
	CreateRecipe(c *gin.Context)
	// UpdateRecipe updates an existing recipe
	UpdateRecipe(c *gin.Context)
	// SpoofedUpdate routes POST requests carrying _method=PUT to UpdateRecipe
	SpoofedUpdate(c *gin.Context)
	// DeleteRecipe deletes a recipe by its ID
	DeleteRecipe(c *gin.Context)
}

type recipeController struct {
	service       services.RecipeService
	maxImageBytes int64
}

// NewRecipeController creates a new instance of RecipeController
func NewRecipeController(service services.RecipeService, maxImageBytes int64) *recipeController {
	if maxImageBytes <= 0 {
		maxImageBytes = services.DefaultMaxImageBytes
	}
	return &recipeController{service: service, maxImageBytes: maxImageBytes}
}

// ListRecipes godoc
// @Summary Get all recipes
// @Description Get every recipe, newest first. Authenticated callers also get is_saved per recipe.
// @Tags recipes
// @Produce json
// @Param category query string false "Filter by category"
// @Param search query string false "Filter by name (case-insensitive partial match)"
// @Success 200 {array} models.RecipeSummary
// @Failure 422 {object} models.APIError "Unknown category"
// @Failure 500 {object} models.APIError
// @Router /api/v1/recipes [get]
func (rc *recipeController) ListRecipes(c *gin.Context) {
	filter := services.RecipeFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	recipes, err := rc.service.ListRecipes(c.Request.Context(), viewerID(c), filter)
	if err != nil {
		respondWithError(c, err, "Recipe")
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// MyRecipes godoc
// @Summary Get my recipes
// @Description Get the recipes authored by the authenticated user
// @Tags recipes
// @Produce json
// @Success 200 {array} models.RecipeSummary
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/user/recipes [get]
func (rc *recipeController) MyRecipes(c *gin.Context) {
	recipes, err := rc.service.ListUserRecipes(c.Request.Context(), mustUserID(c))
	if err != nil {
		respondWithError(c, err, "Recipe")
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// GetRecipe godoc
// @Summary Get recipe by ID
// @Description Get a single recipe with its ordered steps and average rating
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.RecipeDetail
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/recipes/{id} [get]
func (rc *recipeController) GetRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid recipe ID format")
		return
	}

	recipe, err := rc.service.GetRecipe(c.Request.Context(), id, viewerID(c))
	if err != nil {
		respondWithError(c, err, "Recipe")
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe godoc
// @Summary Create a new recipe
// @Description Create a recipe owned by the caller. Send multipart/form-data with steps[i][description] fields to attach an image.
// @Tags recipes
// @Accept json,mpfd
// @Produce json
// @Param name formData string true "Name"
// @Param description formData string true "Description"
// @Param category formData string true "Category" Enums(appetizer, main course, dessert, salad, soup, side dish, breakfast, beverage)
// @Param servings formData string true "Servings" Enums(1, 2, 4, 8+)
// @Param prep_time formData int true "Preparation time in minutes"
// @Param cook_time formData int true "Cooking time in minutes"
// @Param steps[0][description] formData string true "First step"
// @Param image formData file false "Recipe image (jpeg, png, gif)"
// @Success 201 {object} object{message=string,recipe=models.RecipeDetail}
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 422 {object} models.APIError "Validation error"
// @Security BearerAuth
// @Router /api/v1/recipes [post]
func (rc *recipeController) CreateRecipe(c *gin.Context) {
	var req services.RecipeInput
	if isForm(c) {
		if err := parseForm(c); err != nil {
			respondBadRequest(c, "Invalid request body")
			return
		}
		errs := validation.Errors{}
		req = services.RecipeInput{
			Name:        c.PostForm("name"),
			Description: c.PostForm("description"),
			Category:    c.PostForm("category"),
			Servings:    c.PostForm("servings"),
			PrepTime:    formInt(c, "prep_time", errs),
			CookTime:    formInt(c, "cook_time", errs),
			Steps:       formSteps(c, errs),
		}
		if len(errs) > 0 {
			respondValidation(c, errs)
			return
		}
		image, err := formImage(c, "image", rc.maxImageBytes)
		if err != nil {
			rc.respondUploadError(c, err)
			return
		}
		req.Image = image
	} else if err := decodeJSON(c, &req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	recipe, err := rc.service.CreateRecipe(c.Request.Context(), mustUserID(c), req)
	if err != nil {
		respondWithError(c, err, "Recipe")
		return
	}

	metrics.RecipesWritten.WithLabelValues("created").Inc()
	c.JSON(http.StatusCreated, gin.H{
		"message": "Recipe created successfully",
		"recipe":  recipe,
	})
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Description Change the supplied fields of a recipe owned by the caller. Sending steps replaces all of them.
// @Description A new image file replaces the old one; remove_image=true (or an empty image field) clears it.
// @Tags recipes
// @Accept json,mpfd
// @Produce json
// @Param id path int true "Recipe ID"
// @Param name formData string false "Name"
// @Param steps[0][description] formData string false "First step"
// @Param image formData file false "New recipe image"
// @Param remove_image formData bool false "Clear the current image"
// @Success 200 {object} object{message=string,recipe=models.RecipeDetail}
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError "Not the owner"
// @Failure 404 {object} models.APIError
// @Failure 422 {object} models.APIError "Validation error"
// @Security BearerAuth
// @Router /api/v1/recipes/{id} [put]
func (rc *recipeController) UpdateRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid recipe ID format")
		return
	}

	var req services.RecipeUpdateInput
	if isForm(c) {
		if err := parseForm(c); err != nil {
			respondBadRequest(c, "Invalid request body")
			return
		}
		errs := validation.Errors{}
		req = services.RecipeUpdateInput{
			Name:        formString(c, "name"),
			Description: formString(c, "description"),
			Category:    formString(c, "category"),
			Servings:    formString(c, "servings"),
			PrepTime:    formInt(c, "prep_time", errs),
			CookTime:    formInt(c, "cook_time", errs),
			Steps:       formSteps(c, errs),
		}
		if len(errs) > 0 {
			respondValidation(c, errs)
			return
		}

		image, err := formImage(c, "image", rc.maxImageBytes)
		if err != nil {
			rc.respondUploadError(c, err)
			return
		}
		switch {
		case image != nil:
			req.Image = services.ImageChange{Action: services.ImageReplace, Upload: image}
		case isTruthy(c.PostForm("remove_image")) || clearsImage(formString(c, "image")):
			req.Image = services.ImageChange{Action: services.ImageClear}
		}
	} else {
		var imageFields struct {
			RemoveImage json.RawMessage `json:"remove_image"`
			Image       json.RawMessage `json:"image"`
		}
		if err := decodeJSON(c, &req, &imageFields); err != nil {
			respondBadRequest(c, "Invalid request body")
			return
		}
		image := string(imageFields.Image)
		if isTruthy(strings.Trim(string(imageFields.RemoveImage), `"`)) || image == "null" || image == `""` {
			req.Image = services.ImageChange{Action: services.ImageClear}
		}
	}

	recipe, err := rc.service.UpdateRecipe(c.Request.Context(), mustUserID(c), id, req)
	if err != nil {
		respondWithError(c, err, "Recipe")
		return
	}

	metrics.RecipesWritten.WithLabelValues("updated").Inc()
	c.JSON(http.StatusOK, gin.H{
		"message": "Recipe updated successfully",
		"recipe":  recipe,
	})
}

// SpoofedUpdate godoc
// @Summary Update a recipe (form method override)
// @Description Multipart clients that cannot send PUT post with _method=PUT instead
// @Tags recipes
// @Accept mpfd
// @Produce json
// @Param id path int true "Recipe ID"
// @Param _method formData string true "PUT or PATCH"
// @Success 200 {object} object{message=string,recipe=models.RecipeDetail}
// @Failure 405 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id} [post]
func (rc *recipeController) SpoofedUpdate(c *gin.Context) {
	method := c.PostForm("_method")
	if method == "" {
		method = c.Query("_method")
	}

	switch strings.ToUpper(method) {
	case http.MethodPut, http.MethodPatch:
		rc.UpdateRecipe(c)
	default:
		c.JSON(http.StatusMethodNotAllowed, models.NewAPIError(models.ErrMethodNotAllowed, "Method not allowed"))
	}
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Description Delete a recipe owned by the caller together with its steps, ratings and cookbook entries
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError "Not the owner"
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id} [delete]
func (rc *recipeController) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid recipe ID format")
		return
	}

	if err := rc.service.DeleteRecipe(c.Request.Context(), mustUserID(c), id); err != nil {
		respondWithError(c, err, "Recipe")
		return
	}

	metrics.RecipesWritten.WithLabelValues("deleted").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}

func (rc *recipeController) respondUploadError(c *gin.Context, err error) {
	if errors.Is(err, errMalformedBody) {
		respondBadRequest(c, "Invalid request body")
		return
	}
	respondWithError(c, err, "Recipe")
}

// clearsImage reports whether a text image field asks to drop the current image.
func clearsImage(value *string) bool {
	return value != nil && (*value == "" || strings.EqualFold(*value, "null"))
}
