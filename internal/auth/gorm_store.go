package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	oauthmodels "github.com/go-oauth2/oauth2/v4/models"
	"gorm.io/gorm"
)

// GormTokenStore persists access tokens in the access_tokens table.
// It implements oauth2.TokenStore. Refresh tokens and authorization codes
// are never issued, so their lookups always miss.
type GormTokenStore struct {
	db *gorm.DB
}

func NewGormTokenStore(db *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: db}
}

func (s *GormTokenStore) Create(ctx context.Context, info oauth2.TokenInfo) error {
	userID, err := strconv.ParseUint(info.GetUserID(), 10, 64)
	if err != nil {
		return fmt.Errorf("token user id %q: %w", info.GetUserID(), err)
	}

	token := &models.AccessToken{
		ClientID:    info.GetClientID(),
		UserID:      uint(userID),
		AccessToken: info.GetAccess(),
		Scopes:      info.GetScope(),
		IssuedAt:    info.GetAccessCreateAt(),
		ExpiresIn:   int64(info.GetAccessExpiresIn() / time.Second),
	}

	return s.db.WithContext(ctx).Create(token).Error
}

func (s *GormTokenStore) RemoveByAccess(ctx context.Context, access string) error {
	return s.db.WithContext(ctx).Where("access_token = ?", access).Delete(&models.AccessToken{}).Error
}

// RemoveByUserID deletes every token issued to the user and returns how many were removed.
func (s *GormTokenStore) RemoveByUserID(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AccessToken{})
	return result.RowsAffected, result.Error
}

// GetByAccess returns nil without error when the token is unknown.
func (s *GormTokenStore) GetByAccess(ctx context.Context, access string) (oauth2.TokenInfo, error) {
	var token models.AccessToken
	err := s.db.WithContext(ctx).Where("access_token = ?", access).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &oauthmodels.Token{
		ClientID:        token.ClientID,
		UserID:          strconv.FormatUint(uint64(token.UserID), 10),
		Access:          token.AccessToken,
		Scope:           token.Scopes,
		AccessCreateAt:  token.IssuedAt,
		AccessExpiresIn: time.Duration(token.ExpiresIn) * time.Second,
	}, nil
}

func (s *GormTokenStore) RemoveByRefresh(ctx context.Context, refresh string) error {
	return nil
}

func (s *GormTokenStore) GetByRefresh(ctx context.Context, refresh string) (oauth2.TokenInfo, error) {
	return nil, nil
}

func (s *GormTokenStore) RemoveByCode(ctx context.Context, code string) error {
	return nil
}

func (s *GormTokenStore) GetByCode(ctx context.Context, code string) (oauth2.TokenInfo, error) {
	return nil, nil
}
