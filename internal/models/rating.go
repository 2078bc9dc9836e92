package models

import (
	"time"
)

// Rating is the single star rating a user gave a recipe.
type Rating struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex:idx_ratings_user_recipe,priority:1;not null"`
	RecipeID  uint `gorm:"uniqueIndex:idx_ratings_user_recipe,priority:2;index;not null"`
	Rating    int  `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
