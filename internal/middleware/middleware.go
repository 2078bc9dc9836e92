package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Context keys set by the authentication middleware
const (
	UserIDKey = "userID"
	UserKey   = "user"
)

// Authenticator resolves a bearer token to the user it was issued to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth rejects requests without a valid bearer token (RFC 6750) and
// stores the resolved user in the Gin context.
func RequireAuth(users Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			respondUnauthenticated(c)
			return
		}

		user, err := users.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthenticated) {
				logrus.WithError(err).Error("Failed to authenticate bearer token")
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					models.NewAPIError(models.ErrInternalServer, "Internal server error"))
				return
			}
			respondUnauthenticated(c)
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth resolves a bearer token when one is sent and lets guests through.
// An invalid token is treated like no token at all.
func OptionalAuth(users Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if user, err := users.Authenticate(c.Request.Context(), token); err == nil {
				setUser(c, user)
			} else if !errors.Is(err, services.ErrUnauthenticated) {
				logrus.WithError(err).Warn("Optional authentication failed")
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID, if any.
func CurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(UserIDKey, user.ID)
	c.Set(UserKey, user)
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) < len("Bearer ") || !strings.EqualFold(authHeader[:len("Bearer ")], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(authHeader[len("Bearer "):])
	return token, token != ""
}

func respondUnauthenticated(c *gin.Context) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "Unauthenticated"))
}
