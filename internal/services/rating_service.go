package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/validation"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingInput struct {
	RecipeID uint `json:"recipe_id" form:"recipe_id" validate:"required"`
	Rating   int  `json:"rating" form:"rating" validate:"required,gte=1,lte=5"`
}

// RatingResult is the recipe's recomputed average and the caller's own rating.
type RatingResult struct {
	AverageRating float64 `json:"average_rating"`
	UserRating    int     `json:"user_rating"`
}

// RatingService stores one star rating per (user, recipe)
type RatingService interface {
	// SubmitRating creates or overwrites the user's rating of a recipe
	SubmitRating(ctx context.Context, userID uint, in RatingInput) (*RatingResult, error)
	// GetUserRating returns the user's rating of a recipe, or 0 when there is none
	GetUserRating(ctx context.Context, userID, recipeID uint) (int, error)
}

type ratingService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewRatingService(db *gorm.DB, log logrus.FieldLogger) RatingService {
	return &ratingService{db: db, log: log}
}

func (s *ratingService) SubmitRating(ctx context.Context, userID uint, in RatingInput) (*RatingResult, error) {
	errs := validation.Struct(in)
	if errs == nil {
		errs = validation.Errors{}
	}
	if len(errs["recipe_id"]) == 0 {
		exists, err := recipeExists(ctx, s.db, in.RecipeID)
		if err != nil {
			return nil, err
		}
		if !exists {
			errs.Add("recipe_id", "The selected recipe id is invalid.")
		}
	}
	if err := newValidationError(errs); err != nil {
		return nil, err
	}

	rating := models.Rating{UserID: userID, RecipeID: in.RecipeID, Rating: in.Rating}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
	}).Create(&rating).Error
	if err != nil {
		return nil, fmt.Errorf("save rating: %w", err)
	}

	averages, err := averageRatings(ctx, s.db, []uint{in.RecipeID})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"recipe_id": in.RecipeID,
		"user_id":   userID,
		"rating":    in.Rating,
	}).Debug("Rating saved")
	return &RatingResult{AverageRating: averages[in.RecipeID], UserRating: in.Rating}, nil
}

func (s *ratingService) GetUserRating(ctx context.Context, userID, recipeID uint) (int, error) {
	var rating models.Rating
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get rating: %w", err)
	}
	return rating.Rating, nil
}

func recipeExists(ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check recipe %d: %w", id, err)
	}
	return count > 0, nil
}
