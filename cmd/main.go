package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/gin-cookbook-api/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-cookbook-api/internal/auth"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/config"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/database"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/prediction"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/router"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/services"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/storage"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// @title Cookbook API
// @version 1.0
// @description Recipe sharing API with cookbooks and ratings
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration := loadConfig()
	applyLogLevel(configuration.LogLevel)

	// Initialize database connection
	db := setupDatabase(configuration)

	tokens, err := auth.NewTokenManager(db, auth.TokenConfig{
		Format:    configuration.TokenFormat,
		TTL:       time.Duration(configuration.TokenTTLHours) * time.Hour,
		JWTSecret: configuration.JWTSecret,
	})
	checkPanicErr(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	images := setupImageStore(ctx, configuration)
	maxImageBytes := int64(configuration.MaxUploadKB) * 1024
	logger := log.StandardLogger()

	// Initialize services
	deps := router.Deps{
		Log:             logger,
		Users:           services.NewUserService(db, tokens, auth.NewPasswordHasher(bcrypt.DefaultCost), images, maxImageBytes, logger),
		Recipes:         services.NewRecipeService(db, images, maxImageBytes, logger),
		Ratings:         services.NewRatingService(db, logger),
		Cookbook:        services.NewCookbookService(db, logger),
		MaxImageBytes:   maxImageBytes,
		StaticURLPrefix: configuration.StorageURLPrefix,
		Development:     configuration.IsDevelopment(),
	}
	if configuration.StorageDriver == config.StorageLocal {
		deps.StaticDir = configuration.UploadDir
	}
	if configuration.PredictionURL != "" {
		timeout := time.Duration(configuration.PredictionTimeoutSeconds) * time.Second
		deps.Predictor = prediction.NewClient(configuration.PredictionURL, timeout, logger)
	} else {
		log.Info("PREDICTION_URL not set, /api/v1/predict is disabled")
	}

	// Initialize Gin router
	engine := router.New(deps)

	server := &http.Server{
		Addr: fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler: cors.Handler(cors.Options{
			AllowedOrigins: configuration.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"*"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		})(engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server
	go func() {
		log.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server exited")
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// applyLogLevel overrides the environment based level when LOG_LEVEL is set
func applyLogLevel(level string) {
	if level == "" {
		return
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Invalid LOG_LEVEL %q, keeping %s", level, log.GetLevel())
		return
	}
	log.SetLevel(parsed)
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase opens the configured database and migrates the schema
func setupDatabase(conf *config.Config) *gorm.DB {
	database.SetLogger(log.StandardLogger())
	db, err := database.InitDatabase(conf.Database)
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))
	return db
}

// setupImageStore returns the image backend selected by STORAGE_DRIVER
func setupImageStore(ctx context.Context, conf *config.Config) storage.ImageStore {
	if conf.StorageDriver == config.StorageS3 {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    conf.S3Bucket,
			Region:    conf.S3Region,
			Endpoint:  conf.S3Endpoint,
			AccessKey: conf.S3AccessKey,
			SecretKey: conf.S3SecretKey,
		})
		checkPanicErr(err)
		log.WithField("bucket", conf.S3Bucket).Info("Storing images in S3")
		return store
	}

	store, err := storage.NewLocalStore(conf.UploadDir)
	checkPanicErr(err)
	log.WithField("dir", store.Root()).Info("Storing images on local disk")
	return store
}
