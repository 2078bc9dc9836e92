package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddToCookbookTwiceKeepsOneEntry(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	chef := env.register(t, "chef")
	recipe := env.createRecipe(t, chef.User.ID, "Pasta")

	added, err := env.cookbook.AddToCookbook(ctx, chef.User.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = env.cookbook.AddToCookbook(ctx, chef.User.ID, recipe.ID)
	require.NoError(t, err)
	assert.False(t, added)

	var count int64
	env.db.Model(&models.CookbookEntry{}).Count(&count)
	assert.Equal(t, int64(1), count)

	saved, err := env.cookbook.ListCookbook(ctx, chef.User.ID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.NotNil(t, saved[0].IsSaved)
	assert.True(t, *saved[0].IsSaved)
}

func TestAddToCookbookUnknownRecipe(t *testing.T) {
	env := setupTestEnv(t)
	chef := env.register(t, "chef")

	_, err := env.cookbook.AddToCookbook(context.Background(), chef.User.ID, 42)
	requireFieldErrors(t, err, "recipe_id")

	_, err = env.cookbook.AddToCookbook(context.Background(), chef.User.ID, 0)
	requireFieldErrors(t, err, "recipe_id")
}

func TestRemoveFromCookbook(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	chef := env.register(t, "chef")
	recipe := env.createRecipe(t, chef.User.ID, "Pasta")

	assert.ErrorIs(t, env.cookbook.RemoveFromCookbook(ctx, chef.User.ID, recipe.ID), ErrNotFound)

	_, err := env.cookbook.AddToCookbook(ctx, chef.User.ID, recipe.ID)
	require.NoError(t, err)
	require.NoError(t, env.cookbook.RemoveFromCookbook(ctx, chef.User.ID, recipe.ID))

	saved, err := env.cookbook.ListCookbook(ctx, chef.User.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)

	detail, err := env.recipes.GetRecipe(ctx, recipe.ID, &chef.User.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.IsSaved)
	assert.False(t, *detail.IsSaved)

	added, err := env.cookbook.AddToCookbook(ctx, chef.User.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, added)

	var entries []models.CookbookEntry
	require.NoError(t, env.db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, models.CookbookActive, entries[0].Status)
}

func TestCookbookIsPerUser(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	chef := env.register(t, "chef")
	fan := env.register(t, "fan")
	recipe := env.createRecipe(t, chef.User.ID, "Pasta")

	_, err := env.cookbook.AddToCookbook(ctx, fan.User.ID, recipe.ID)
	require.NoError(t, err)

	mine, err := env.cookbook.ListCookbook(ctx, chef.User.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
	assert.ErrorIs(t, env.cookbook.RemoveFromCookbook(ctx, chef.User.ID, recipe.ID), ErrNotFound)
}

func TestBulkRemove(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	chef := env.register(t, "chef")
	pasta := env.createRecipe(t, chef.User.ID, "Pasta")
	salad := env.createRecipe(t, chef.User.ID, "Salad")
	soup := env.createRecipe(t, chef.User.ID, "Soup")

	for _, id := range []uint{pasta.ID, salad.ID, soup.ID} {
		_, err := env.cookbook.AddToCookbook(ctx, chef.User.ID, id)
		require.NoError(t, err)
	}

	t.Run("empty list", func(t *testing.T) {
		_, err := env.cookbook.BulkRemove(ctx, chef.User.ID, nil)
		requireFieldErrors(t, err, "recipe_ids")
	})

	t.Run("one unknown id removes nothing", func(t *testing.T) {
		_, err := env.cookbook.BulkRemove(ctx, chef.User.ID, []uint{pasta.ID, 999})
		requireFieldErrors(t, err, "recipe_ids.1")

		saved, err := env.cookbook.ListCookbook(ctx, chef.User.ID)
		require.NoError(t, err)
		assert.Len(t, saved, 3)
	})

	t.Run("removes every listed entry", func(t *testing.T) {
		removed, err := env.cookbook.BulkRemove(ctx, chef.User.ID, []uint{pasta.ID, soup.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), removed)

		saved, err := env.cookbook.ListCookbook(ctx, chef.User.ID)
		require.NoError(t, err)
		require.Len(t, saved, 1)
		assert.Equal(t, salad.ID, saved[0].ID)
	})

	t.Run("already removed entries are rejected", func(t *testing.T) {
		_, err := env.cookbook.BulkRemove(ctx, chef.User.ID, []uint{salad.ID, pasta.ID})
		requireFieldErrors(t, err, "recipe_ids.1")
	})
}
