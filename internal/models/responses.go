package models

import (
	"time"
)

// UserResponse is the account projection returned to its owner.
type UserResponse struct {
	ID             uint      `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfilePicture *string   `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Username:       u.Username,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// RecipeOwner is the public projection of a recipe's author.
type RecipeOwner struct {
	ID             uint    `json:"id"`
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture"`
}

type StepResponse struct {
	ID          uint   `json:"id"`
	Order       int    `json:"order"`
	Description string `json:"description"`
}

// RecipeSummary is the list item shape used by recipe lists and cookbooks.
// IsSaved is only set for authenticated callers.
type RecipeSummary struct {
	ID            uint        `json:"id"`
	UserID        uint        `json:"user_id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Category      string      `json:"category"`
	Servings      string      `json:"servings"`
	Image         *string     `json:"image"`
	PrepTime      int         `json:"prep_time"`
	CookTime      int         `json:"cook_time"`
	AverageRating float64     `json:"average_rating"`
	IsSaved       *bool       `json:"is_saved,omitempty"`
	User          RecipeOwner `json:"user"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// RecipeDetail adds the ordered steps to a summary.
type RecipeDetail struct {
	RecipeSummary
	Steps []StepResponse `json:"steps"`
}

// NewRecipeSummary projects r. The User association must be loaded.
func NewRecipeSummary(r Recipe, averageRating float64, isSaved *bool) RecipeSummary {
	return RecipeSummary{
		ID:            r.ID,
		UserID:        r.UserID,
		Name:          r.Name,
		Description:   r.Description,
		Category:      r.Category,
		Servings:      r.Servings,
		Image:         r.Image,
		PrepTime:      r.PrepTime,
		CookTime:      r.CookTime,
		AverageRating: averageRating,
		IsSaved:       isSaved,
		User: RecipeOwner{
			ID:             r.User.ID,
			Username:       r.User.Username,
			ProfilePicture: r.User.ProfilePicture,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// NewRecipeDetail projects r with its steps in the order they were loaded.
func NewRecipeDetail(r Recipe, averageRating float64, isSaved *bool) RecipeDetail {
	steps := make([]StepResponse, 0, len(r.Steps))
	for _, s := range r.Steps {
		steps = append(steps, StepResponse{ID: s.ID, Order: s.Order, Description: s.Description})
	}
	return RecipeDetail{
		RecipeSummary: NewRecipeSummary(r, averageRating, isSaved),
		Steps:         steps,
	}
}
