package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/metrics"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/services"
	"github.com/gin-gonic/gin"
)

type CookbookController struct {
	cookbookService services.CookbookService
}

func NewCookbookController(cookbookService services.CookbookService) *CookbookController {
	return &CookbookController{cookbookService: cookbookService}
}

type addToCookbookRequest struct {
	RecipeID uint `json:"recipe_id" form:"recipe_id"`
}

type bulkRemoveRequest struct {
	RecipeIDs []uint `json:"recipe_ids" form:"recipe_ids[]"`
}

// ListCookbook godoc
// @Summary List cookbook
// @Description Get the recipes saved in the caller's cookbook, most recently saved first
// @Tags cookbook
// @Produce json
// @Success 200 {array} models.RecipeSummary
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/cookbook [get]
func (cc *CookbookController) ListCookbook(c *gin.Context) {
	recipes, err := cc.cookbookService.ListCookbook(c.Request.Context(), mustUserID(c))
	if err != nil {
		respondWithError(c, err, "Cookbook")
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// AddToCookbook godoc
// @Summary Save a recipe
// @Description Save a recipe to the caller's cookbook. Saving it again is not an error.
// @Tags cookbook
// @Accept json
// @Produce json
// @Param request body object{recipe_id=int} true "Recipe to save"
// @Success 201 {object} object{message=string} "Recipe added to cookbook"
// @Success 200 {object} object{message=string} "Recipe already in cookbook"
// @Failure 422 {object} models.APIError "Unknown recipe"
// @Security BearerAuth
// @Router /api/v1/cookbook [post]
func (cc *CookbookController) AddToCookbook(c *gin.Context) {
	var req addToCookbookRequest
	if err := bindInput(c, &req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	added, err := cc.cookbookService.AddToCookbook(c.Request.Context(), mustUserID(c), req.RecipeID)
	if err != nil {
		respondWithError(c, err, "Recipe")
		return
	}

	if !added {
		c.JSON(http.StatusOK, gin.H{"message": "Recipe already in cookbook"})
		return
	}
	metrics.CookbookChanges.WithLabelValues("added").Inc()
	c.JSON(http.StatusCreated, gin.H{"message": "Recipe added to cookbook"})
}

// RemoveFromCookbook godoc
// @Summary Unsave a recipe
// @Description Remove a recipe from the caller's cookbook
// @Tags cookbook
// @Produce json
// @Param recipeId path int true "Recipe ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.APIError "Recipe was never saved"
// @Security BearerAuth
// @Router /api/v1/cookbook/{recipeId} [delete]
func (cc *CookbookController) RemoveFromCookbook(c *gin.Context) {
	recipeID, ok := parseID(c, "recipeId")
	if !ok {
		respondBadRequest(c, "Invalid recipe ID format")
		return
	}

	if err := cc.cookbookService.RemoveFromCookbook(c.Request.Context(), mustUserID(c), recipeID); err != nil {
		respondWithError(c, err, "Cookbook entry")
		return
	}

	metrics.CookbookChanges.WithLabelValues("removed").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Recipe removed from cookbook"})
}

// BulkRemove godoc
// @Summary Unsave several recipes
// @Description Remove every listed recipe from the caller's cookbook, or none when any of them is not saved
// @Tags cookbook
// @Accept json
// @Produce json
// @Param request body object{recipe_ids=[]int} true "Recipes to remove"
// @Success 200 {object} object{message=string,removed=int}
// @Failure 422 {object} models.APIError "Validation error"
// @Security BearerAuth
// @Router /api/v1/cookbook/bulk-delete [post]
func (cc *CookbookController) BulkRemove(c *gin.Context) {
	var req bulkRemoveRequest
	if err := bindInput(c, &req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	removed, err := cc.cookbookService.BulkRemove(c.Request.Context(), mustUserID(c), req.RecipeIDs)
	if err != nil {
		respondWithError(c, err, "Cookbook entry")
		return
	}

	metrics.CookbookChanges.WithLabelValues("removed").Add(float64(removed))
	c.JSON(http.StatusOK, gin.H{
		"message": "Recipes removed from cookbook",
		"removed": removed,
	})
}
