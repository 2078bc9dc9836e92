package models

import (
	"time"
)

// Cookbook entry states
const (
	CookbookRemoved int8 = 0
	CookbookActive  int8 = 1
)

// CookbookEntry marks a recipe as saved by a user. Removal flips Status
// instead of deleting the row, so a (user, recipe) pair has at most one row.
type CookbookEntry struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex:idx_cookbook_user_recipe,priority:1;not null"`
	RecipeID  uint `gorm:"uniqueIndex:idx_cookbook_user_recipe,priority:2;index;not null"`
	Status    int8 `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CookbookEntry) TableName() string {
	return "cookbook"
}
