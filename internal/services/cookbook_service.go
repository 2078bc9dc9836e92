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

// CookbookService keeps the recipes each user saved. Removing an entry only
// flips its status, so saving the recipe again reuses the same row.
type CookbookService interface {
	// ListCookbook returns the user's actively saved recipes, most recently saved first
	ListCookbook(ctx context.Context, userID uint) ([]models.RecipeSummary, error)
	// AddToCookbook saves a recipe. It reports false when it was already saved.
	AddToCookbook(ctx context.Context, userID, recipeID uint) (bool, error)
	// RemoveFromCookbook unsaves a recipe. ErrNotFound when it was never saved.
	RemoveFromCookbook(ctx context.Context, userID, recipeID uint) error
	// BulkRemove unsaves every listed recipe or none of them
	BulkRemove(ctx context.Context, userID uint, recipeIDs []uint) (int64, error)
}

type cookbookService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewCookbookService(db *gorm.DB, log logrus.FieldLogger) CookbookService {
	return &cookbookService{db: db, log: log}
}

func (s *cookbookService) ListCookbook(ctx context.Context, userID uint) ([]models.RecipeSummary, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Select("recipes.*").
		Joins("JOIN cookbook ON cookbook.recipe_id = recipes.id AND cookbook.user_id = ? AND cookbook.status = ?",
			userID, models.CookbookActive).
		Preload("User").
		Order("cookbook.updated_at DESC").
		Order("recipes.id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("list cookbook of user %d: %w", userID, err)
	}
	return summarize(ctx, s.db, recipes, &userID)
}

func (s *cookbookService) AddToCookbook(ctx context.Context, userID, recipeID uint) (bool, error) {
	if recipeID == 0 {
		return false, fieldError("recipe_id", "The recipe id field is required.")
	}
	exists, err := recipeExists(ctx, s.db, recipeID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, fieldError("recipe_id", "The selected recipe id is invalid.")
	}

	added := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.CookbookEntry
		err := tx.Where("user_id = ? AND recipe_id = ?", userID, recipeID).First(&entry).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			added = true
			entry = models.CookbookEntry{UserID: userID, RecipeID: recipeID, Status: models.CookbookActive}
			// a concurrent add may have inserted the row since the lookup
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
			}).Create(&entry).Error
		case err != nil:
			return err
		case entry.Status == models.CookbookActive:
			return nil
		default:
			added = true
			return tx.Model(&entry).Update("status", models.CookbookActive).Error
		}
	})
	if err != nil {
		return false, fmt.Errorf("add recipe %d to cookbook: %w", recipeID, err)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "recipe_id": recipeID, "added": added}).Debug("Cookbook add")
	return added, nil
}

func (s *cookbookService) RemoveFromCookbook(ctx context.Context, userID, recipeID uint) error {
	var entry models.CookbookEntry
	err := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find cookbook entry: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&entry).Update("status", models.CookbookRemoved).Error; err != nil {
		return fmt.Errorf("remove recipe %d from cookbook: %w", recipeID, err)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "recipe_id": recipeID}).Debug("Cookbook remove")
	return nil
}

func (s *cookbookService) BulkRemove(ctx context.Context, userID uint, recipeIDs []uint) (int64, error) {
	if len(recipeIDs) == 0 {
		return 0, fieldError("recipe_ids", "The recipe ids field is required.")
	}

	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active []uint
		err := tx.Model(&models.CookbookEntry{}).
			Where("user_id = ? AND status = ? AND recipe_id IN ?", userID, models.CookbookActive, recipeIDs).
			Pluck("recipe_id", &active).Error
		if err != nil {
			return err
		}

		isActive := make(map[uint]bool, len(active))
		for _, id := range active {
			isActive[id] = true
		}
		errs := validation.Errors{}
		for i, id := range recipeIDs {
			if !isActive[id] {
				field := fmt.Sprintf("recipe_ids.%d", i)
				errs.Add(field, fmt.Sprintf("The selected %s is invalid.", field))
			}
		}
		if err := newValidationError(errs); err != nil {
			return err
		}

		result := tx.Model(&models.CookbookEntry{}).
			Where("user_id = ? AND status = ? AND recipe_id IN ?", userID, models.CookbookActive, recipeIDs).
			Update("status", models.CookbookRemoved)
		removed = result.RowsAffected
		return result.Error
	})
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return 0, err
		}
		return 0, fmt.Errorf("bulk remove from cookbook: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "removed": removed}).Info("Cookbook bulk remove")
	return removed, nil
}
