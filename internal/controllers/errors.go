package controllers

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/services"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var (
	log logrus.FieldLogger = logrus.StandardLogger()

	// exposeInternalErrors echoes the cause of 500 responses in details.error
	exposeInternalErrors bool
)

// SetLogger replaces the logger used to report failed requests.
func SetLogger(l logrus.FieldLogger) {
	log = l
}

// SetDevelopment toggles error details in 500 responses.
func SetDevelopment(enabled bool) {
	exposeInternalErrors = enabled
}

// respondWithError maps a service error to its status code and APIError body.
// resource names the entity in 404 messages.
func respondWithError(c *gin.Context, err error, resource string) {
	_ = c.Error(err)

	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondValidation(c, validationErr.Fields)
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "Invalid credentials"))
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "Unauthenticated"))
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "Unauthorized"))
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, resource+" not found"))
	default:
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Request failed")

		apiErr := models.NewAPIError(models.ErrInternalServer, "Internal server error")
		if exposeInternalErrors {
			apiErr.Details = map[string]interface{}{"error": err.Error()}
		}
		c.JSON(http.StatusInternalServerError, apiErr)
	}
}

func respondValidation(c *gin.Context, fields validation.Errors) {
	details := make(map[string]interface{}, len(fields))
	for field, messages := range fields {
		details[field] = messages
	}
	c.JSON(http.StatusUnprocessableEntity, models.NewAPIError(models.ErrValidationFailed, "Validation error", details))
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, message))
}
