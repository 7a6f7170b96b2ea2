package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsFromEnv(t *testing.T) {
	t.Setenv("DEPOT_ERP_BASE_URL", "http://erp.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "depot-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "http://erp.example.com", cfg.ERP.BaseURL)
	assert.Equal(t, 10, cfg.ERP.TokenTimeoutSeconds)
	assert.Equal(t, 30, cfg.ERP.DataTimeoutSeconds)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Cache.DepotTTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.ContainerTTL)
	assert.Equal(t, "", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
}

func TestLoad_MissingBaseURL(t *testing.T) {
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_PartialCredentials(t *testing.T) {
	t.Setenv("DEPOT_ERP_BASE_URL", "http://erp.example.com")
	t.Setenv("DEPOT_ERP_AID", "aid-only")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_ProductionRules(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.ERP.BaseURL = "http://erp.example.com"
		cfg.App.Env = "production"
		return cfg
	}

	t.Run("postgres requires password", func(t *testing.T) {
		cfg := base()
		cfg.Database.Driver = "postgres"
		assert.Error(t, cfg.validate())
	})

	t.Run("wildcard CORS rejected", func(t *testing.T) {
		cfg := base()
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.Error(t, cfg.validate())
	})

	t.Run("memory store is fine in production", func(t *testing.T) {
		cfg := base()
		assert.NoError(t, cfg.validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := &DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "depot",
		Password: "p@ss/word",
		DBName:   "depot",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	assert.NotContains(t, dsn, "p@ss/word") // must be escaped
}
