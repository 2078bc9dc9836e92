package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/database"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.InitDatabase(database.DatabaseConfig{Driver: "sqlite"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestManager(t *testing.T, db *gorm.DB, cfg TokenConfig) *TokenManager {
	manager, err := NewTokenManager(db, cfg)
	require.NoError(t, err)
	return manager
}

func TestNewTokenManagerRejectsBadConfig(t *testing.T) {
	db := setupTestDB(t)

	_, err := NewTokenManager(db, TokenConfig{Format: FormatJWT})
	assert.Error(t, err)

	_, err = NewTokenManager(db, TokenConfig{Format: "paseto"})
	assert.Error(t, err)
}

func TestIssueAndResolveOpaqueToken(t *testing.T) {
	db := setupTestDB(t)
	manager := newTestManager(t, db, TokenConfig{Format: FormatOpaque, TTL: time.Hour})
	ctx := context.Background()

	token, err := manager.Issue(ctx, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotContains(t, token, ".", "opaque tokens are not JWTs")

	userID, err := manager.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	var stored models.AccessToken
	require.NoError(t, db.Where("access_token = ?", token).First(&stored).Error)
	assert.Equal(t, FirstPartyClientID, stored.ClientID)
	assert.Equal(t, int64(3600), stored.ExpiresIn)
}

func TestIssueJWTToken(t *testing.T) {
	db := setupTestDB(t)
	secret := "test-jwt-secret-key-32-characters"
	manager := newTestManager(t, db, TokenConfig{Format: FormatJWT, TTL: time.Hour, JWTSecret: secret})
	ctx := context.Background()

	first, err := manager.Issue(ctx, 7)
	require.NoError(t, err)
	second, err := manager.Issue(ctx, 7)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, strings.Count(first, "."))

	parsed, err := jwt.Parse(first, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "7", claims["uid"])
	assert.Equal(t, FirstPartyClientID, claims["aud"])

	userID, err := manager.Resolve(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)
}

func TestResolveUnknownToken(t *testing.T) {
	db := setupTestDB(t)
	manager := newTestManager(t, db, TokenConfig{TTL: time.Hour})

	_, err := manager.Resolve(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = manager.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveExpiredTokenDeletesIt(t *testing.T) {
	db := setupTestDB(t)
	manager := newTestManager(t, db, TokenConfig{TTL: time.Hour})
	ctx := context.Background()

	token, err := manager.Issue(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.AccessToken{}).
		Where("access_token = ?", token).
		Update("issued_at", time.Now().Add(-2*time.Hour)).Error)

	_, err = manager.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	var count int64
	db.Model(&models.AccessToken{}).Where("access_token = ?", token).Count(&count)
	assert.Zero(t, count)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	db := setupTestDB(t)
	manager := newTestManager(t, db, TokenConfig{})
	ctx := context.Background()

	token, err := manager.Issue(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.AccessToken{}).
		Where("access_token = ?", token).
		Update("issued_at", time.Now().AddDate(-1, 0, 0)).Error)

	userID, err := manager.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint(5), userID)
}

func TestRevokeAllInvalidatesEveryTokenOfTheUser(t *testing.T) {
	db := setupTestDB(t)
	manager := newTestManager(t, db, TokenConfig{TTL: time.Hour})
	ctx := context.Background()

	phone, err := manager.Issue(ctx, 1)
	require.NoError(t, err)
	tablet, err := manager.Issue(ctx, 1)
	require.NoError(t, err)
	other, err := manager.Issue(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, manager.RevokeAll(ctx, 1))

	_, err = manager.Resolve(ctx, phone)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = manager.Resolve(ctx, tablet)
	assert.ErrorIs(t, err, ErrInvalidToken)

	userID, err := manager.Resolve(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, uint(2), userID)
}
