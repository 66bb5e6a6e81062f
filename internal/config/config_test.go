package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	cfg, err := load(env(map[string]string{
		"LISTEN_ADDR":   ":9090",
		"MONGO_URI":     "mongodb://mongo:27017",
		"MONGO_DB":      "coolerchips",
		"REDIS_URI":     "redis:6379",
		"NEO4J_URI":     "bolt://neo4j:7687",
		"CACHE_TTL":     "30s",
		"CYCLE_POLICY":  "break",
		"CORS_ORIGINS":  "http://localhost:3000, http://example.org",
		"JWT_SECRET":    "a-long-enough-secret",
		"LOG_LEVEL":     "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "coolerchips", cfg.Mongo.Database)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "bolt://neo4j:7687", cfg.Neo4j.URI)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "break", cfg.CyclePolicy)
	assert.Equal(t, []string{"http://localhost:3000", "http://example.org"}, cfg.CORSOrigins)
}

func TestLoad_YAMLFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":7000"
cycle_policy: break
cache_ttl: 1m
mongo:
  database: from-file
auth:
  jwt_secret: file-secret-value
`), 0o600))

	cfg, err := load(env(map[string]string{"CONFIG_FILE": path, "LISTEN_ADDR": ":7001"}))
	require.NoError(t, err)

	assert.Equal(t, ":7001", cfg.ListenAddr)
	assert.Equal(t, "break", cfg.CyclePolicy)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, "from-file", cfg.Mongo.Database)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "file-secret-value", cfg.Auth.JWTSecret)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := load(env(map[string]string{"CYCLE_POLICY": "ignore"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle_policy")

	_, err = load(env(map[string]string{"CACHE_TTL": "soon"}))
	assert.ErrorContains(t, err, "CACHE_TTL")

	_, err = load(env(map[string]string{"CONFIG_FILE": "/does/not/exist.yaml"}))
	assert.ErrorContains(t, err, "read config file")
}
