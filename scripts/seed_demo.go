package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/auth"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/config"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/database"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/services"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/storage"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type sampleRecipe struct {
	name, description, category, servings string
	prep, cook                            int
	steps                                 []string
}

var sampleRecipes = []sampleRecipe{
	{
		name:        "Tomato Soup",
		description: "Roasted tomato soup with basil",
		category:    models.CategorySoup,
		servings:    "4",
		prep:        10,
		cook:        35,
		steps: []string{
			"Roast the tomatoes and garlic at 200C for 25 minutes.",
			"Blend with stock and simmer for 10 minutes.",
			"Season and finish with torn basil.",
		},
	},
	{
		name:        "Pancakes",
		description: "Fluffy buttermilk pancakes",
		category:    models.CategoryBreakfast,
		servings:    "2",
		prep:        5,
		cook:        15,
		steps: []string{
			"Whisk flour, sugar, baking powder and salt.",
			"Stir in buttermilk, egg and melted butter.",
			"Cook ladlefuls on a hot buttered pan until golden.",
		},
	},
}

func main() {
	// Parse command line flags
	email := flag.String("email", "demo@cookbook.local", "Demo user email")
	password := flag.String("password", "demo-password", "Demo user password")
	username := flag.String("username", "demo", "Demo user username")
	withRecipes := flag.Bool("recipes", true, "Create sample recipes for a newly registered user")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}

	conf, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	db, err := database.InitDatabase(conf.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	tokens, err := auth.NewTokenManager(db, auth.TokenConfig{
		Format:    conf.TokenFormat,
		JWTSecret: conf.JWTSecret,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create token manager")
	}
	images, err := storage.NewLocalStore(conf.UploadDir)
	if err != nil {
		log.WithError(err).Fatal("Failed to open upload directory")
	}

	logger := log.StandardLogger()
	maxImageBytes := int64(conf.MaxUploadKB) * 1024
	users := services.NewUserService(db, tokens, auth.NewPasswordHasher(bcrypt.DefaultCost), images, maxImageBytes, logger)
	recipes := services.NewRecipeService(db, images, maxImageBytes, logger)

	ctx := context.Background()
	result, created, err := registerOrLogin(ctx, users, *username, *email, *password)
	if err != nil {
		log.WithError(err).Fatal("Failed to prepare demo user")
	}

	if created && *withRecipes {
		for _, sample := range sampleRecipes {
			if _, err := recipes.CreateRecipe(ctx, result.User.ID, sample.input()); err != nil {
				log.WithError(err).Fatalf("Failed to create recipe %q", sample.name)
			}
			fmt.Printf("Created recipe: %s\n", sample.name)
		}
	}

	fmt.Printf("Demo user: %s (ID: %d)\n", result.User.Email, result.User.ID)
	fmt.Printf("Token: %s\n", result.Token)
	fmt.Println("\nUse it for testing:")
	fmt.Printf("curl -H 'Authorization: Bearer %s' http://localhost:%d/api/v1/user\n", result.Token, conf.Port)
}

// registerOrLogin registers the demo user, falling back to a login when the account exists
func registerOrLogin(ctx context.Context, users services.UserService, username, email, password string) (*services.AuthResult, bool, error) {
	result, err := users.Register(ctx, services.RegisterInput{
		FirstName:            "Demo",
		LastName:             "User",
		Username:             username,
		Email:                email,
		Password:             password,
		PasswordConfirmation: password,
	})
	if err == nil {
		fmt.Printf("Created new user: %s\n", email)
		return result, true, nil
	}

	var verr *services.ValidationError
	if !errors.As(err, &verr) {
		return nil, false, err
	}
	result, err = users.Login(ctx, services.LoginInput{Email: email, Password: password})
	if err != nil {
		return nil, false, fmt.Errorf("user exists but login failed: %w", err)
	}
	fmt.Printf("Found existing user: %s\n", email)
	return result, false, nil
}

func (s sampleRecipe) input() services.RecipeInput {
	prep, cook := s.prep, s.cook
	in := services.RecipeInput{
		Name:        s.name,
		Description: s.description,
		Category:    s.category,
		Servings:    s.servings,
		PrepTime:    &prep,
		CookTime:    &cook,
	}
	for _, step := range s.steps {
		in.Steps = append(in.Steps, services.StepInput{Description: step})
	}
	return in
}
