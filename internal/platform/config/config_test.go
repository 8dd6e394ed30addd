package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.Equal(t, 20, cfg.PageSizeDefault)
	assert.True(t, cfg.PageLookahead)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("PAGE_SIZE_DEFAULT", "5")
	t.Setenv("PAGE_LOOKAHEAD", "false")
	t.Setenv("CACHE_TTL", "2m")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 5, cfg.PageSizeDefault)
	assert.False(t, cfg.PageLookahead)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
}

func TestValidate(t *testing.T) {
	base := Config{DBDriver: DriverMemory, PageSizeDefault: 20}

	pg := base
	pg.DBDriver = DriverPostgres
	assert.Error(t, pg.Validate(), "postgres without DSN")

	unknown := base
	unknown.DBDriver = "mongo"
	assert.Error(t, unknown.Validate())

	big := base
	big.PageSizeDefault = 101
	assert.Error(t, big.Validate())

	assert.NoError(t, base.Validate())
}

func TestWarnings(t *testing.T) {
	mem := Config{DBDriver: DriverMemory, PageSizeDefault: 20, CacheTTL: time.Minute}
	w := mem.Warnings()
	require.Len(t, w, 1)
	assert.Contains(t, w[0], "DB_DRIVER=memory")

	pg := Config{DBDriver: DriverPostgres, DBDSN: "postgres://x", CacheTTL: time.Minute}
	w = pg.Warnings()
	require.Len(t, w, 1)
	assert.Contains(t, w[0], "REDIS_URL")

	pg.RedisURL = "redis://localhost:6379/0"
	assert.Empty(t, pg.Warnings())

	pg.RedisURL = ""
	pg.CacheTTL = 0
	assert.Empty(t, pg.Warnings())
}
