package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/auth"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/storage"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/validation"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TokenIssuer issues, resolves and revokes bearer tokens.
type TokenIssuer interface {
	Issue(ctx context.Context, userID uint) (string, error)
	Resolve(ctx context.Context, token string) (uint, error)
	RevokeAll(ctx context.Context, userID uint) error
}

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
	Burn(password string)
}

type RegisterInput struct {
	FirstName            string `json:"first_name" form:"first_name" validate:"required,max=255"`
	LastName             string `json:"last_name" form:"last_name" validate:"required,max=255"`
	Username             string `json:"username" form:"username" validate:"required,max=255"`
	Email                string `json:"email" form:"email" validate:"required,email,max=255"`
	Password             string `json:"password" form:"password" validate:"required,min=8,maxbytes=72"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation"`
}

type LoginInput struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// UpdateProfileInput carries only the fields the caller sent.
type UpdateProfileInput struct {
	FirstName            *string      `json:"first_name" validate:"omitnil,filled,max=255"`
	LastName             *string      `json:"last_name" validate:"omitnil,filled,max=255"`
	Username             *string      `json:"username" validate:"omitnil,filled,max=255"`
	Email                *string      `json:"email" validate:"omitnil,filled,email,max=255"`
	Password             *string      `json:"password" validate:"omitnil,filled,min=8,maxbytes=72"`
	PasswordConfirmation *string      `json:"password_confirmation"`
	Image                *ImageUpload `json:"-"`
}

// AuthResult is a user together with a freshly issued bearer token.
type AuthResult struct {
	User  models.User
	Token string
}

// UserService manages accounts and their bearer tokens
type UserService interface {
	// Register creates an account and issues its first token
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	// Login checks credentials and issues a new token
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	// Logout revokes every token of the user, not only the presented one
	Logout(ctx context.Context, userID uint) error
	// Authenticate resolves a bearer token to its user
	Authenticate(ctx context.Context, token string) (*models.User, error)
	// GetUserByID retrieves a user by its ID
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	// UpdateProfile applies the supplied fields to the user
	UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error)
}

type userService struct {
	db     *gorm.DB
	tokens TokenIssuer
	hasher PasswordHasher
	images imageKeeper
	log    logrus.FieldLogger
}

func NewUserService(db *gorm.DB, tokens TokenIssuer, hasher PasswordHasher, images storage.ImageStore, maxImageBytes int64, log logrus.FieldLogger) UserService {
	return &userService{
		db:     db,
		tokens: tokens,
		hasher: hasher,
		images: newImageKeeper(images, maxImageBytes, log),
		log:    log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	errs := validation.Struct(in)
	if errs == nil {
		errs = validation.Errors{}
	}
	if _, failed := errs["password"]; !failed && in.Password != in.PasswordConfirmation {
		errs.Add("password", "The password confirmation does not match.")
	}
	if err := s.checkUnique(ctx, 0, &in.Username, &in.Email, errs); err != nil {
		return nil, err
	}
	if err := newValidationError(errs); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateError(ctx, 0, &in.Username, &in.Email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("User registered")
	return &AuthResult{User: user, Token: token}, nil
}

func (s *userService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := newValidationError(validation.Struct(in)); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", in.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.hasher.Burn(in.Password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !s.hasher.Verify(user.Password, in.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.log.WithField("user_id", user.ID).Debug("User logged in")
	return &AuthResult{User: user, Token: token}, nil
}

func (s *userService) Logout(ctx context.Context, userID uint) error {
	if err := s.tokens.RevokeAll(ctx, userID); err != nil {
		return err
	}
	s.log.WithField("user_id", userID).Info("User logged out of every session")
	return nil
}

func (s *userService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Resolve(ctx, token)
	if errors.Is(err, auth.ErrInvalidToken) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}

	user, err := s.GetUserByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	return user, err
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		in.Username = &username
	}

	errs := validation.Struct(in)
	if errs == nil {
		errs = validation.Errors{}
	}
	if in.Password != nil && in.PasswordConfirmation != nil && *in.Password != *in.PasswordConfirmation {
		errs.Add("password", "The password confirmation does not match.")
	}
	s.images.validate("image", in.Image, errs)
	if err := s.checkUnique(ctx, user.ID, in.Username, in.Email, errs); err != nil {
		return nil, err
	}
	if err := newValidationError(errs); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.FirstName != nil {
		updates["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		updates["last_name"] = *in.LastName
	}
	if in.Username != nil {
		updates["username"] = *in.Username
	}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updates["password"] = hash
	}

	oldPicture := copyString(user.ProfilePicture)
	var newPicture *string
	if in.Image != nil {
		if newPicture, err = s.images.save(ctx, storage.ProfilePicturesDir, in.Image); err != nil {
			return nil, err
		}
		updates["profile_picture"] = *newPicture
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			s.images.release(ctx, newPicture)
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, s.duplicateError(ctx, user.ID, in.Username, in.Email)
			}
			return nil, fmt.Errorf("update user %d: %w", user.ID, err)
		}
	}
	if newPicture != nil {
		s.images.release(ctx, oldPicture)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "fields": len(updates)}).Info("Profile updated")
	return s.GetUserByID(ctx, user.ID)
}

// checkUnique records username/email collisions with accounts other than exceptID.
// Fields that already failed validation are skipped.
func (s *userService) checkUnique(ctx context.Context, exceptID uint, username, email *string, errs validation.Errors) error {
	checks := []struct {
		field string
		value *string
	}{
		{"username", username},
		{"email", email},
	}
	for _, c := range checks {
		if c.value == nil || *c.value == "" || len(errs[c.field]) > 0 {
			continue
		}
		var count int64
		query := s.db.WithContext(ctx).Model(&models.User{}).Where(c.field+" = ?", *c.value)
		if exceptID != 0 {
			query = query.Where("id <> ?", exceptID)
		}
		if err := query.Count(&count).Error; err != nil {
			return fmt.Errorf("check %s uniqueness: %w", c.field, err)
		}
		if count > 0 {
			errs.Add(c.field, fmt.Sprintf("The %s has already been taken.", c.field))
		}
	}
	return nil
}

// duplicateError explains a unique index violation lost to a concurrent write.
func (s *userService) duplicateError(ctx context.Context, exceptID uint, username, email *string) error {
	errs := validation.Errors{}
	if err := s.checkUnique(ctx, exceptID, username, email, errs); err != nil {
		return err
	}
	if len(errs) == 0 {
		errs.Add("email", "The email has already been taken.")
	}
	return &ValidationError{Fields: errs}
}
