package services

import (
	"context"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/auth"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/database"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/storage"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	jpegBytes = append([]byte{0xff, 0xd8, 0xff, 0xe0}, make([]byte, 64)...)
)

type testEnv struct {
	db       *gorm.DB
	store    *storage.LocalStore
	tokens   *auth.TokenManager
	users    UserService
	recipes  RecipeService
	ratings  RatingService
	cookbook CookbookService
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.InitDatabase(database.DatabaseConfig{Driver: "sqlite"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func setupTestEnv(t *testing.T) *testEnv {
	db := setupTestDB(t)
	logger, _ := test.NewNullLogger()

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	tokens, err := auth.NewTokenManager(db, auth.TokenConfig{Format: auth.FormatOpaque, TTL: time.Hour})
	require.NoError(t, err)

	return &testEnv{
		db:       db,
		store:    store,
		tokens:   tokens,
		users:    NewUserService(db, tokens, auth.NewPasswordHasher(bcrypt.MinCost), store, 0, logger),
		recipes:  NewRecipeService(db, store, 0, logger),
		ratings:  NewRatingService(db, logger),
		cookbook: NewCookbookService(db, logger),
	}
}

func registerInput(username string) RegisterInput {
	return RegisterInput{
		FirstName:            "Test",
		LastName:             "Cook",
		Username:             username,
		Email:                username + "@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	}
}

func (e *testEnv) register(t *testing.T, username string) *AuthResult {
	t.Helper()
	result, err := e.users.Register(context.Background(), registerInput(username))
	require.NoError(t, err)
	return result
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func recipeInput(name string, steps ...string) RecipeInput {
	in := RecipeInput{
		Name:        name,
		Description: "A tasty " + name,
		Category:    models.CategoryMainCourse,
		Servings:    "2",
		PrepTime:    intPtr(10),
		CookTime:    intPtr(20),
	}
	for _, s := range steps {
		in.Steps = append(in.Steps, StepInput{Description: s})
	}
	return in
}

func (e *testEnv) createRecipe(t *testing.T, ownerID uint, name string) *models.RecipeDetail {
	t.Helper()
	recipe, err := e.recipes.CreateRecipe(context.Background(), ownerID, recipeInput(name, "Boil water", "Add pasta"))
	require.NoError(t, err)
	return recipe
}

// requireFieldErrors asserts err is a ValidationError failing exactly fields.
func requireFieldErrors(t *testing.T, err error, fields ...string) *ValidationError {
	t.Helper()
	require.Error(t, err)
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "expected *ValidationError, got %T: %v", err, err)
	require.ElementsMatch(t, fields, validationErr.Fields.Fields())
	return validationErr
}
