package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/metrics"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/services"
	"github.com/gin-gonic/gin"
)

type RatingController struct {
	ratingService services.RatingService
}

func NewRatingController(ratingService services.RatingService) *RatingController {
	return &RatingController{ratingService: ratingService}
}

// SubmitRating godoc
// @Summary Rate a recipe
// @Description Create or overwrite the caller's 1-5 star rating of a recipe
// @Tags ratings
// @Accept json
// @Produce json
// @Param rating body services.RatingInput true "Rating"
// @Success 200 {object} object{success=bool,message=string,average_rating=number,user_rating=int}
// @Failure 422 {object} models.APIError "Validation error"
// @Security BearerAuth
// @Router /api/v1/ratings [post]
func (rc *RatingController) SubmitRating(c *gin.Context) {
	var req services.RatingInput
	if err := bindInput(c, &req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	result, err := rc.ratingService.SubmitRating(c.Request.Context(), mustUserID(c), req)
	if err != nil {
		respondWithError(c, err, "Recipe")
		return
	}

	metrics.RatingsSubmitted.Inc()
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Rating saved successfully",
		"average_rating": result.AverageRating,
		"user_rating":    result.UserRating,
	})
}

// GetUserRating godoc
// @Summary Get my rating
// @Description Get the caller's rating of a recipe, 0 when not rated yet
// @Tags ratings
// @Produce json
// @Param recipeId path int true "Recipe ID"
// @Success 200 {object} object{success=bool,rating=int}
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/ratings/{recipeId} [get]
func (rc *RatingController) GetUserRating(c *gin.Context) {
	recipeID, ok := parseID(c, "recipeId")
	if !ok {
		respondBadRequest(c, "Invalid recipe ID format")
		return
	}

	rating, err := rc.ratingService.GetUserRating(c.Request.Context(), mustUserID(c), recipeID)
	if err != nil {
		respondWithError(c, err, "Rating")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rating": rating})
}
