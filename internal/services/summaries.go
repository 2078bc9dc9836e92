package services

import (
	"context"
	"fmt"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"gorm.io/gorm"
)

type ratingAggregate struct {
	RecipeID uint
	Average  float64
}

// averageRatings returns the mean rating per recipe. Recipes without
// ratings are absent from the map and read as 0.
func averageRatings(ctx context.Context, db *gorm.DB, recipeIDs []uint) (map[uint]float64, error) {
	averages := make(map[uint]float64, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return averages, nil
	}

	var rows []ratingAggregate
	err := db.WithContext(ctx).Model(&models.Rating{}).
		Select("recipe_id, AVG(rating) AS average").
		Where("recipe_id IN ?", recipeIDs).
		Group("recipe_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("average ratings: %w", err)
	}
	for _, row := range rows {
		averages[row.RecipeID] = row.Average
	}
	return averages, nil
}

// savedRecipeIDs returns which of recipeIDs the user has in an active cookbook entry.
func savedRecipeIDs(ctx context.Context, db *gorm.DB, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	saved := make(map[uint]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return saved, nil
	}

	var ids []uint
	err := db.WithContext(ctx).Model(&models.CookbookEntry{}).
		Where("user_id = ? AND status = ? AND recipe_id IN ?", userID, models.CookbookActive, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("saved recipes: %w", err)
	}
	for _, id := range ids {
		saved[id] = true
	}
	return saved, nil
}

// summarize projects recipes (with User preloaded) into list items.
// is_saved is filled only when viewerID is set.
func summarize(ctx context.Context, db *gorm.DB, recipes []models.Recipe, viewerID *uint) ([]models.RecipeSummary, error) {
	ids := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}

	averages, err := averageRatings(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	var saved map[uint]bool
	if viewerID != nil {
		if saved, err = savedRecipeIDs(ctx, db, *viewerID, ids); err != nil {
			return nil, err
		}
	}

	out := make([]models.RecipeSummary, 0, len(recipes))
	for _, r := range recipes {
		var isSaved *bool
		if viewerID != nil {
			v := saved[r.ID]
			isSaved = &v
		}
		out = append(out, models.NewRecipeSummary(r, averages[r.ID], isSaved))
	}
	return out, nil
}
