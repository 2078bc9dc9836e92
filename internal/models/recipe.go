package models

import (
	"time"
)

// Recipe categories
const (
	CategoryAppetizer  = "appetizer"
	CategoryMainCourse = "main course"
	CategoryDessert    = "dessert"
	CategorySalad      = "salad"
	CategorySoup       = "soup"
	CategorySideDish   = "side dish"
	CategoryBreakfast  = "breakfast"
	CategoryBeverage   = "beverage"
)

// Categories lists every accepted recipe category.
var Categories = []string{
	CategoryAppetizer,
	CategoryMainCourse,
	CategoryDessert,
	CategorySalad,
	CategorySoup,
	CategorySideDish,
	CategoryBreakfast,
	CategoryBeverage,
}

// Servings lists every accepted servings value.
var Servings = []string{"1", "2", "4", "8+"}

// IsCategory reports whether c is one of Categories.
func IsCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// IsServings reports whether s is one of Servings.
func IsServings(s string) bool {
	for _, v := range Servings {
		if v == s {
			return true
		}
	}
	return false
}

type Recipe struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index;not null"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text;not null"`
	Category    string `gorm:"size:32;index;not null"`
	Servings    string `gorm:"size:8;not null"`
	Image       *string
	PrepTime    int `gorm:"not null;default:0"`
	CookTime    int `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User      User            `gorm:"foreignKey:UserID"`
	Steps     []Step          `gorm:"constraint:OnDelete:CASCADE"`
	Ratings   []Rating        `gorm:"constraint:OnDelete:CASCADE"`
	Cookbooks []CookbookEntry `gorm:"constraint:OnDelete:CASCADE"`
}

// Step is one instruction of a recipe. Order is 1-based and dense per recipe.
type Step struct {
	ID          uint   `gorm:"primaryKey"`
	RecipeID    uint   `gorm:"uniqueIndex:idx_steps_recipe_order,priority:1;not null"`
	Order       int    `gorm:"column:step_order;uniqueIndex:idx_steps_recipe_order,priority:2;not null"`
	Description string `gorm:"type:text;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
