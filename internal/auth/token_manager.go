package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-oauth2/oauth2/v4"
	oautherrors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/generates"
	"github.com/go-oauth2/oauth2/v4/manage"
	oauthmodels "github.com/go-oauth2/oauth2/v4/models"
	"github.com/go-oauth2/oauth2/v4/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidToken is returned for unknown, revoked or expired bearer tokens.
var ErrInvalidToken = errors.New("invalid_token")

// FirstPartyClientID identifies tokens minted by the API's own login flow.
const FirstPartyClientID = "cookbook-app"

// Token encodings
const (
	FormatOpaque = "opaque"
	FormatJWT    = "jwt"
)

// TokenConfig selects how access tokens are encoded and how long they live.
// A zero TTL issues tokens that never expire.
type TokenConfig struct {
	Format    string
	TTL       time.Duration
	JWTSecret string
}

// TokenManager issues, resolves and revokes bearer tokens on top of the
// go-oauth2 manager and the gorm token store.
type TokenManager struct {
	manager      *manage.Manager
	store        *GormTokenStore
	clientSecret string
}

func NewTokenManager(db *gorm.DB, cfg TokenConfig) (*TokenManager, error) {
	manager := manage.NewDefaultManager()
	manager.SetPasswordTokenCfg(&manage.Config{
		AccessTokenExp:    cfg.TTL,
		IsGenerateRefresh: false,
	})

	switch cfg.Format {
	case FormatJWT:
		if cfg.JWTSecret == "" {
			return nil, errors.New("jwt token format requires a secret")
		}
		manager.MapAccessGenerate(NewJWTAccessGenerate([]byte(cfg.JWTSecret), jwt.SigningMethodHS512))
	case FormatOpaque, "":
		manager.MapAccessGenerate(generates.NewAccessGenerate())
	default:
		return nil, fmt.Errorf("unsupported token format: %s", cfg.Format)
	}

	// Configure token store
	tokenStore := NewGormTokenStore(db)
	manager.MustTokenStorage(tokenStore, nil)

	// The only client is the API itself; its secret never leaves the process.
	clientSecret := uuid.New().String()
	clientStore := store.NewClientStore()
	if err := clientStore.Set(FirstPartyClientID, &oauthmodels.Client{
		ID:     FirstPartyClientID,
		Secret: clientSecret,
	}); err != nil {
		return nil, err
	}
	manager.MapClientStorage(clientStore)

	return &TokenManager{
		manager:      manager,
		store:        tokenStore,
		clientSecret: clientSecret,
	}, nil
}

// Issue mints and stores a new access token for the user.
func (m *TokenManager) Issue(ctx context.Context, userID uint) (string, error) {
	info, err := m.manager.GenerateAccessToken(ctx, oauth2.PasswordCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     FirstPartyClientID,
		ClientSecret: m.clientSecret,
		UserID:       strconv.FormatUint(uint64(userID), 10),
	})
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return info.GetAccess(), nil
}

// Resolve returns the user the token was issued to.
// Expired tokens are deleted on sight.
func (m *TokenManager) Resolve(ctx context.Context, token string) (uint, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}

	info, err := m.manager.LoadAccessToken(ctx, token)
	switch {
	case errors.Is(err, oautherrors.ErrExpiredAccessToken):
		if rmErr := m.store.RemoveByAccess(ctx, token); rmErr != nil {
			return 0, fmt.Errorf("remove expired token: %w", rmErr)
		}
		return 0, ErrInvalidToken
	case errors.Is(err, oautherrors.ErrInvalidAccessToken), errors.Is(err, oautherrors.ErrExpiredRefreshToken):
		return 0, ErrInvalidToken
	case err != nil:
		return 0, fmt.Errorf("load access token: %w", err)
	}

	userID, err := strconv.ParseUint(info.GetUserID(), 10, 64)
	if err != nil || userID == 0 {
		return 0, ErrInvalidToken
	}
	return uint(userID), nil
}

// RevokeAll deletes every token issued to the user.
func (m *TokenManager) RevokeAll(ctx context.Context, userID uint) error {
	if _, err := m.store.RemoveByUserID(ctx, userID); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}
