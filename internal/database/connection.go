package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var log logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the package logger.
func SetLogger(l logrus.FieldLogger) {
	log = l
}

// retryDelays is the backoff between connection attempts.
var retryDelays = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}

const slowQueryThreshold = 200 * time.Millisecond

// InitDatabase opens the configured database, retrying with backoff while
// the server is unreachable, and sizes the connection pool for the driver.
func InitDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	driver := strings.ToLower(cfg.Driver)
	dialector, err := dialectorFor(driver, cfg)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"db_driver": driver,
		"db_host":   cfg.Host,
		"db_name":   cfg.Name,
		"db_path":   cfg.Path,
	}).Info("Initializing database connection")

	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	for attempt := 1; ; attempt++ {
		db, err := connect(dialector, gormConfig)
		if err == nil {
			configureConnectionPool(db, driver)
			log.WithFields(logrus.Fields{
				"db_driver": driver,
				"attempt":   attempt,
			}).Info("Database initialized successfully")
			return db, nil
		}

		log.WithFields(logrus.Fields{
			"attempt":     attempt,
			"max_retries": len(retryDelays),
		}).WithError(err).Warn("Database connection attempt failed")

		if attempt >= len(retryDelays) {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempt, err)
		}
		time.Sleep(retryDelays[attempt-1])
	}
}

func dialectorFor(driver string, cfg DatabaseConfig) (gorm.Dialector, error) {
	switch driver {
	case "postgres", "postgresql":
		return postgres.Open(cfg.DSN()), nil
	case "sqlite", "":
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, sqlite)", cfg.Driver)
	}
}

// connect opens the database and pings it, since gorm.Open alone does not
// prove the server is reachable.
func connect(dialector gorm.Dialector, gormConfig *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// configureConnectionPool sets up connection pool parameters
func configureConnectionPool(db *gorm.DB, driver string) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	if driver == "sqlite" || driver == "" {
		// one writer at a time; an in-memory database also lives and dies with its connection
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		log.Debug("Connection pool configured for sqlite")
		return
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	log.WithFields(logrus.Fields{
		"max_open_conns":    25,
		"max_idle_conns":    5,
		"conn_max_lifetime": "5m",
	}).Debug("Connection pool configured")
}
