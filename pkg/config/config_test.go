package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSqlite, cfg.DatabaseDriver)
	assert.Equal(t, SearchMemory, cfg.SearchBackend)
	assert.Equal(t, 3*time.Second, cfg.SearchTimeout)
	assert.Equal(t, 5, cfg.PostsPerPage)
	assert.Equal(t, 72*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("SEARCH_BACKEND", "mongo")
	t.Setenv("POSTS_PER_PAGE", "20")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("ENV", "production")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, SearchMongo, cfg.SearchBackend)
	assert.Equal(t, 20, cfg.PostsPerPage)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.IsProduction())
}
