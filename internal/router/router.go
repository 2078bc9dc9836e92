package router

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/controllers"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/metrics"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/middleware"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/prediction"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const serviceName = "gin-cookbook-api"

// Deps holds everything the HTTP layer needs.
type Deps struct {
	Log             logrus.FieldLogger
	Users           services.UserService
	Recipes         services.RecipeService
	Ratings         services.RatingService
	Cookbook        services.CookbookService
	Predictor       prediction.Predictor // nil disables /predict
	MaxImageBytes   int64
	StaticDir       string // local image directory served under StaticURLPrefix; empty disables it
	StaticURLPrefix string
	Development     bool
}

// New builds the gin engine with every route registered.
func New(deps Deps) *gin.Engine {
	controllers.SetLogger(deps.Log)
	controllers.SetDevelopment(deps.Development)

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(deps.Log),
		middleware.Metrics(),
	)

	setupRoutes(router, deps)
	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine, deps Deps) {
	authController := controllers.NewAuthController(deps.Users, deps.Cookbook, deps.MaxImageBytes)
	recipeController := controllers.NewRecipeController(deps.Recipes, deps.MaxImageBytes)
	ratingController := controllers.NewRatingController(deps.Ratings)
	cookbookController := controllers.NewCookbookController(deps.Cookbook)

	// Operational endpoints
	router.GET("/health", healthCheckHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if deps.StaticDir != "" && deps.StaticURLPrefix != "" {
		router.Static(deps.StaticURLPrefix, deps.StaticDir)
	}

	requireAuth := middleware.RequireAuth(deps.Users)
	optionalAuth := middleware.OptionalAuth(deps.Users)

	v1 := router.Group("/api/v1")
	{
		// Authentication routes
		v1.POST("/register", authController.Register)
		v1.POST("/login", authController.Login)

		// Public reads, personalised when a token is sent
		publicApi := v1.Group("")
		publicApi.Use(optionalAuth)
		{
			publicApi.GET("/recipes", recipeController.ListRecipes)
			publicApi.GET("/recipes/:id", recipeController.GetRecipe)
		}

		// Protected routes (requires a bearer token)
		protectedApi := v1.Group("")
		protectedApi.Use(requireAuth)
		{
			protectedApi.POST("/logout", authController.Logout)
			protectedApi.GET("/user", authController.Me)
			protectedApi.POST("/user/update", authController.UpdateProfile)
			protectedApi.GET("/user/recipes", recipeController.MyRecipes)

			protectedApi.POST("/recipes", recipeController.CreateRecipe)
			protectedApi.PUT("/recipes/:id", recipeController.UpdateRecipe)
			protectedApi.PATCH("/recipes/:id", recipeController.UpdateRecipe)
			protectedApi.POST("/recipes/:id", recipeController.SpoofedUpdate)
			protectedApi.DELETE("/recipes/:id", recipeController.DeleteRecipe)

			protectedApi.POST("/ratings", ratingController.SubmitRating)
			protectedApi.GET("/ratings/:recipeId", ratingController.GetUserRating)

			protectedApi.GET("/cookbook", cookbookController.ListCookbook)
			protectedApi.POST("/cookbook", cookbookController.AddToCookbook)
			protectedApi.POST("/cookbook/bulk-delete", cookbookController.BulkRemove)
			protectedApi.DELETE("/cookbook/:recipeId", cookbookController.RemoveFromCookbook)

			if deps.Predictor != nil {
				predictionController := controllers.NewPredictionController(deps.Predictor, deps.MaxImageBytes)
				protectedApi.POST("/predict", predictionController.Predict)
			}
		}
	}
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
	})
}
