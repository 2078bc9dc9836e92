package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRatingOverwritesPreviousRating(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	chef := env.register(t, "chef")
	recipe := env.createRecipe(t, chef.User.ID, "Pasta")

	first, err := env.ratings.SubmitRating(ctx, chef.User.ID, RatingInput{RecipeID: recipe.ID, Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 5.0, first.AverageRating)
	assert.Equal(t, 5, first.UserRating)

	second, err := env.ratings.SubmitRating(ctx, chef.User.ID, RatingInput{RecipeID: recipe.ID, Rating: 2})
	require.NoError(t, err)
	assert.Equal(t, 2.0, second.AverageRating)
	assert.Equal(t, 2, second.UserRating)

	var count int64
	env.db.Model(&models.Rating{}).Where("recipe_id = ?", recipe.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	rating, err := env.ratings.GetUserRating(ctx, chef.User.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rating)
}

func TestAverageRatingAcrossUsers(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	chef := env.register(t, "chef")
	fan := env.register(t, "fan")
	recipe := env.createRecipe(t, chef.User.ID, "Pasta")

	_, err := env.ratings.SubmitRating(ctx, chef.User.ID, RatingInput{RecipeID: recipe.ID, Rating: 4})
	require.NoError(t, err)
	result, err := env.ratings.SubmitRating(ctx, fan.User.ID, RatingInput{RecipeID: recipe.ID, Rating: 1})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, result.AverageRating, 0.0001)

	detail, err := env.recipes.GetRecipe(ctx, recipe.ID, nil)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, detail.AverageRating, 0.0001)

	recipes, err := env.recipes.ListRecipes(ctx, nil, RecipeFilter{})
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.InDelta(t, 2.5, recipes[0].AverageRating, 0.0001)
}

func TestSubmitRatingValidation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	chef := env.register(t, "chef")
	recipe := env.createRecipe(t, chef.User.ID, "Pasta")

	testCases := []struct {
		name   string
		input  RatingInput
		fields []string
	}{
		{"rating too high", RatingInput{RecipeID: recipe.ID, Rating: 6}, []string{"rating"}},
		{"rating too low", RatingInput{RecipeID: recipe.ID, Rating: -1}, []string{"rating"}},
		{"rating missing", RatingInput{RecipeID: recipe.ID}, []string{"rating"}},
		{"recipe missing", RatingInput{Rating: 3}, []string{"recipe_id"}},
		{"unknown recipe", RatingInput{RecipeID: recipe.ID + 100, Rating: 3}, []string{"recipe_id"}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ratings.SubmitRating(ctx, chef.User.ID, tt.input)
			requireFieldErrors(t, err, tt.fields...)
		})
	}

	var count int64
	env.db.Model(&models.Rating{}).Count(&count)
	assert.Zero(t, count)
}

func TestGetUserRatingWithoutRating(t *testing.T) {
	env := setupTestEnv(t)
	chef := env.register(t, "chef")
	recipe := env.createRecipe(t, chef.User.ID, "Pasta")

	rating, err := env.ratings.GetUserRating(context.Background(), chef.User.ID, recipe.ID)
	require.NoError(t, err)
	assert.Zero(t, rating)

	rating, err = env.ratings.GetUserRating(context.Background(), chef.User.ID, 999)
	require.NoError(t, err)
	assert.Zero(t, rating)
}
