package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/storage"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/validation"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type StepInput struct {
	Description string `json:"description" validate:"required"`
}

// RecipeInput is a complete recipe as submitted on creation.
type RecipeInput struct {
	Name        string       `json:"name" validate:"required,max=255"`
	Description string       `json:"description" validate:"required"`
	Category    string       `json:"category" validate:"required,recipe_category"`
	Servings    string       `json:"servings" validate:"required,recipe_servings"`
	PrepTime    *int         `json:"prep_time" validate:"required,gte=0"`
	CookTime    *int         `json:"cook_time" validate:"required,gte=0"`
	Steps       []StepInput  `json:"steps" validate:"required,min=1,dive"`
	Image       *ImageUpload `json:"-"`
}

// ImageAction says what an update does with the recipe image.
type ImageAction int

const (
	ImageKeep ImageAction = iota
	ImageReplace
	ImageClear
)

// ImageChange is the image part of an update. Upload is set only for ImageReplace.
type ImageChange struct {
	Action ImageAction
	Upload *ImageUpload
}

// RecipeUpdateInput holds the fields an owner sent. A nil field is left
// untouched; a non-nil Steps replaces every existing step.
type RecipeUpdateInput struct {
	Name        *string     `json:"name" validate:"omitnil,filled,max=255"`
	Description *string     `json:"description" validate:"omitnil,filled"`
	Category    *string     `json:"category" validate:"omitnil,filled,recipe_category"`
	Servings    *string     `json:"servings" validate:"omitnil,filled,recipe_servings"`
	PrepTime    *int        `json:"prep_time" validate:"omitnil,gte=0"`
	CookTime    *int        `json:"cook_time" validate:"omitnil,gte=0"`
	Steps       []StepInput `json:"steps" validate:"omitnil,min=1,dive"`
	Image       ImageChange `json:"-"`
}

// RecipeFilter narrows ListRecipes. Empty fields match everything.
type RecipeFilter struct {
	Category string
	Search   string
}

// RecipeService provides methods to interact with the recipe database
type RecipeService interface {
	// ListRecipes retrieves every recipe matching filter, newest first.
	// is_saved is reported when viewerID is set.
	ListRecipes(ctx context.Context, viewerID *uint, filter RecipeFilter) ([]models.RecipeSummary, error)
	// ListUserRecipes retrieves the recipes authored by ownerID
	ListUserRecipes(ctx context.Context, ownerID uint) ([]models.RecipeSummary, error)
	// GetRecipe retrieves a recipe with its ordered steps
	GetRecipe(ctx context.Context, id uint, viewerID *uint) (*models.RecipeDetail, error)
	// CreateRecipe stores a recipe and its steps owned by ownerID
	CreateRecipe(ctx context.Context, ownerID uint, in RecipeInput) (*models.RecipeDetail, error)
	// UpdateRecipe applies in to a recipe owned by actorID
	UpdateRecipe(ctx context.Context, actorID, id uint, in RecipeUpdateInput) (*models.RecipeDetail, error)
	// DeleteRecipe removes a recipe owned by actorID with its steps, ratings and cookbook entries
	DeleteRecipe(ctx context.Context, actorID, id uint) error
}

type recipeService struct {
	db     *gorm.DB
	images imageKeeper
	log    logrus.FieldLogger
}

// NewRecipeService creates a new instance of RecipeService
func NewRecipeService(db *gorm.DB, images storage.ImageStore, maxImageBytes int64, log logrus.FieldLogger) RecipeService {
	return &recipeService{
		db:     db,
		images: newImageKeeper(images, maxImageBytes, log),
		log:    log,
	}
}

func (s *recipeService) ListRecipes(ctx context.Context, viewerID *uint, filter RecipeFilter) ([]models.RecipeSummary, error) {
	query := s.db.WithContext(ctx).Preload("User").Order("id DESC")

	if filter.Category != "" {
		if !models.IsCategory(filter.Category) {
			return nil, fieldError("category", "The selected category is invalid.")
		}
		query = query.Where("category = ?", filter.Category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return summarize(ctx, s.db, recipes, viewerID)
}

func (s *recipeService) ListUserRecipes(ctx context.Context, ownerID uint) ([]models.RecipeSummary, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).Preload("User").
		Where("user_id = ?", ownerID).
		Order("id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("list recipes of user %d: %w", ownerID, err)
	}
	return summarize(ctx, s.db, recipes, &ownerID)
}

func (s *recipeService) GetRecipe(ctx context.Context, id uint, viewerID *uint) (*models.RecipeDetail, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		First(&recipe, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe %d: %w", id, err)
	}

	averages, err := averageRatings(ctx, s.db, []uint{recipe.ID})
	if err != nil {
		return nil, err
	}

	var isSaved *bool
	if viewerID != nil {
		saved, err := savedRecipeIDs(ctx, s.db, *viewerID, []uint{recipe.ID})
		if err != nil {
			return nil, err
		}
		v := saved[recipe.ID]
		isSaved = &v
	}

	detail := models.NewRecipeDetail(recipe, averages[recipe.ID], isSaved)
	return &detail, nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, ownerID uint, in RecipeInput) (*models.RecipeDetail, error) {
	in.Name = strings.TrimSpace(in.Name)
	trimSteps(in.Steps)

	errs := validation.Struct(in)
	if errs == nil {
		errs = validation.Errors{}
	}
	s.images.validate("image", in.Image, errs)
	if err := newValidationError(errs); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		UserID:      ownerID,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Servings:    in.Servings,
		PrepTime:    *in.PrepTime,
		CookTime:    *in.CookTime,
		Steps:       buildSteps(0, in.Steps),
	}

	if in.Image != nil {
		image, err := s.images.save(ctx, storage.RecipeImagesDir, in.Image)
		if err != nil {
			return nil, err
		}
		recipe.Image = image
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("User").Create(&recipe).Error
	})
	if err != nil {
		s.images.release(ctx, recipe.Image)
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"recipe_id": recipe.ID,
		"user_id":   ownerID,
		"steps":     len(recipe.Steps),
	}).Info("Recipe created")
	return s.GetRecipe(ctx, recipe.ID, &ownerID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, actorID, id uint, in RecipeUpdateInput) (*models.RecipeDetail, error) {
	recipe, err := s.ownedRecipe(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	trimSteps(in.Steps)

	errs := validation.Struct(in)
	if errs == nil {
		errs = validation.Errors{}
	}
	if in.Image.Action == ImageReplace {
		if in.Image.Upload == nil {
			errs.Add("image", "The image field is required.")
		}
		s.images.validate("image", in.Image.Upload, errs)
	}
	if err := newValidationError(errs); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Category != nil {
		updates["category"] = *in.Category
	}
	if in.Servings != nil {
		updates["servings"] = *in.Servings
	}
	if in.PrepTime != nil {
		updates["prep_time"] = *in.PrepTime
	}
	if in.CookTime != nil {
		updates["cook_time"] = *in.CookTime
	}

	oldImage := copyString(recipe.Image)
	var newImage *string
	switch in.Image.Action {
	case ImageReplace:
		if newImage, err = s.images.save(ctx, storage.RecipeImagesDir, in.Image.Upload); err != nil {
			return nil, err
		}
		updates["image"] = *newImage
	case ImageClear:
		updates["image"] = nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.Steps != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Step{}).Error; err != nil {
				return err
			}
			steps := buildSteps(recipe.ID, in.Steps)
			if err := tx.Create(&steps).Error; err != nil {
				return err
			}
		}
		if len(updates) == 0 && in.Steps == nil {
			return nil
		}
		if len(updates) == 0 {
			return tx.Model(recipe).Update("updated_at", time.Now()).Error
		}
		return tx.Model(recipe).Updates(updates).Error
	})
	if err != nil {
		s.images.release(ctx, newImage)
		return nil, fmt.Errorf("update recipe %d: %w", recipe.ID, err)
	}

	if in.Image.Action != ImageKeep {
		s.images.release(ctx, oldImage)
	}

	s.log.WithFields(logrus.Fields{
		"recipe_id":      recipe.ID,
		"user_id":        actorID,
		"fields":         len(updates),
		"steps_replaced": in.Steps != nil,
	}).Info("Recipe updated")
	return s.GetRecipe(ctx, recipe.ID, &actorID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, actorID, id uint) error {
	recipe, err := s.ownedRecipe(ctx, actorID, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{&models.CookbookEntry{}, &models.Rating{}, &models.Step{}} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return fmt.Errorf("delete recipe %d: %w", recipe.ID, err)
	}

	s.images.release(ctx, recipe.Image)
	s.log.WithFields(logrus.Fields{"recipe_id": recipe.ID, "user_id": actorID}).Info("Recipe deleted")
	return nil
}

// ownedRecipe loads a recipe and checks actorID owns it.
// A missing recipe is ErrNotFound; someone else's is ErrForbidden.
func (s *recipeService) ownedRecipe(ctx context.Context, actorID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).First(&recipe, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe %d: %w", id, err)
	}
	if recipe.UserID != actorID {
		s.log.WithFields(logrus.Fields{"recipe_id": id, "user_id": actorID}).Warn("Recipe change by non-owner rejected")
		return nil, ErrForbidden
	}
	return &recipe, nil
}

func trimSteps(steps []StepInput) {
	for i := range steps {
		steps[i].Description = strings.TrimSpace(steps[i].Description)
	}
}

// buildSteps numbers steps 1..N in input order.
func buildSteps(recipeID uint, inputs []StepInput) []models.Step {
	steps := make([]models.Step, 0, len(inputs))
	for i, in := range inputs {
		steps = append(steps, models.Step{
			RecipeID:    recipeID,
			Order:       i + 1,
			Description: in.Description,
		})
	}
	return steps
}
