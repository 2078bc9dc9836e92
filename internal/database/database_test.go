package database

import (
	"testing"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      DatabaseConfig
		expected string
	}{
		{
			name: "postgres",
			cfg: DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "chef",
				Password: "secret", Name: "cookbook", SSLMode: "disable"},
			expected: "host=db user=chef password=secret dbname=cookbook port=5432 sslmode=disable",
		},
		{
			name:     "sqlite file enables foreign keys",
			cfg:      DatabaseConfig{Driver: "sqlite", Path: "cookbook.sqlite"},
			expected: "cookbook.sqlite?_foreign_keys=on",
		},
		{
			name:     "sqlite path with params",
			cfg:      DatabaseConfig{Driver: "sqlite", Path: "cookbook.sqlite?_busy_timeout=5000"},
			expected: "cookbook.sqlite?_busy_timeout=5000&_foreign_keys=on",
		},
		{
			name:     "empty path is in memory",
			cfg:      DatabaseConfig{},
			expected: "file::memory:?_foreign_keys=on",
		},
		{
			name:     "unknown driver",
			cfg:      DatabaseConfig{Driver: "oracle"},
			expected: "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.DSN())
		})
	}
}

func TestStringMasksPassword(t *testing.T) {
	cfg := DatabaseConfig{Driver: "postgres", Password: "hunter22"}
	assert.NotContains(t, cfg.String(), "hunter22")
	assert.Contains(t, cfg.String(), "[REDACTED]")
}

func TestInitDatabaseUnsupportedDriver(t *testing.T) {
	db, err := InitDatabase(DatabaseConfig{Driver: "oracle"})
	assert.Nil(t, db)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestInitDatabaseAndMigrate(t *testing.T) {
	db, err := InitDatabase(DatabaseConfig{Driver: "sqlite"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []interface{}{
		&models.User{}, &models.Recipe{}, &models.Step{},
		&models.Rating{}, &models.CookbookEntry{}, &models.AccessToken{},
	} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.True(t, db.Migrator().HasIndex(&models.Rating{}, "idx_ratings_user_recipe"))
	assert.True(t, db.Migrator().HasIndex(&models.CookbookEntry{}, "idx_cookbook_user_recipe"))
}
