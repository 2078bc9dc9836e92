package controllers

import (
	"fmt"
	"net/http"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/metrics"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/prediction"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/services"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/storage"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/validation"
	"github.com/gin-gonic/gin"
)

type PredictionController struct {
	predictor     prediction.Predictor
	maxImageBytes int64
}

func NewPredictionController(predictor prediction.Predictor, maxImageBytes int64) *PredictionController {
	if maxImageBytes <= 0 {
		maxImageBytes = services.DefaultMaxImageBytes
	}
	return &PredictionController{predictor: predictor, maxImageBytes: maxImageBytes}
}

// Predict godoc
// @Summary Detect plant disease
// @Description Forward a leaf photo to the plant-disease classifier and return its verdict
// @Tags prediction
// @Accept mpfd
// @Produce json
// @Param image formData file true "Leaf photo (jpeg, png)"
// @Success 200 {object} prediction.Result
// @Failure 422 {object} models.APIError "Validation error"
// @Failure 502 {object} models.APIError "Classifier failed"
// @Security BearerAuth
// @Router /api/v1/predict [post]
func (pc *PredictionController) Predict(c *gin.Context) {
	image, err := formImage(c, "image", pc.maxImageBytes)
	if err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if errs := pc.validate(image); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	result, err := pc.predictor.Predict(c.Request.Context(), image.Filename, image.Data)
	if err != nil {
		_ = c.Error(err)
		metrics.Predictions.WithLabelValues("failed").Inc()
		c.JSON(http.StatusBadGateway, models.NewAPIError(models.ErrPredictionFailed, "Failed to process image"))
		return
	}

	metrics.Predictions.WithLabelValues("succeeded").Inc()
	c.JSON(http.StatusOK, result)
}

func (pc *PredictionController) validate(image *services.ImageUpload) validation.Errors {
	errs := validation.Errors{}
	if image == nil {
		errs.Add("image", "The image field is required.")
		return errs
	}
	if image.Size > pc.maxImageBytes || int64(len(image.Data)) > pc.maxImageBytes {
		errs.Add("image", fmt.Sprintf("The image may not be greater than %d kilobytes.", pc.maxImageBytes/1024))
		return errs
	}
	if contentType, _, err := storage.DetectImage(image.Data); err != nil || contentType == "image/gif" {
		errs.Add("image", "The image must be a file of type: jpeg, png, jpg.")
	}
	return errs
}
