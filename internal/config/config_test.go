package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Marketplace Backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 0.16, cfg.Order.TaxRate)
	assert.Equal(t, "ORD", cfg.Order.OrderNumPrefix)
	assert.Equal(t, "https://api.openrouteservice.org", cfg.Geo.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Geo.RequestTimeout)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("ORDER_TAX_RATE", "0.08")
	t.Setenv("ORDER_NUMBER_PREFIX", "MKT")
	t.Setenv("JWT_ACCESS_EXPIRE", "15m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 0.08, cfg.Order.TaxRate)
	assert.Equal(t, "MKT", cfg.Order.OrderNumPrefix)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Security.CORSAllowedOrigins)
}

func TestLoadInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("JWT_ACCESS_EXPIRE", "soon")
	t.Setenv("APP_DEBUG", "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenExpiry)
	assert.True(t, cfg.App.Debug)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.JWT.Secret = "a-secret-that-is-at-least-32-characters!"
		cfg.Database.Host = "localhost"
		cfg.Database.Name = "marketplace_db"
		cfg.Database.User = "marketplace_user"
		cfg.Redis.Host = "localhost"
		cfg.Server.Port = "8080"
		cfg.Order.TaxRate = 0.16
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*Config) {}, wantErr: false},
		{name: "short jwt secret", mutate: func(c *Config) { c.JWT.Secret = "short" }, wantErr: true},
		{name: "missing db host", mutate: func(c *Config) { c.Database.Host = "" }, wantErr: true},
		{name: "missing db name", mutate: func(c *Config) { c.Database.Name = "" }, wantErr: true},
		{name: "missing redis host", mutate: func(c *Config) { c.Redis.Host = "" }, wantErr: true},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: true},
		{name: "negative tax rate", mutate: func(c *Config) { c.Order.TaxRate = -0.1 }, wantErr: true},
		{name: "tax rate of one", mutate: func(c *Config) { c.Order.TaxRate = 1 }, wantErr: true},
		{name: "zero tax rate is allowed", mutate: func(c *Config) { c.Order.TaxRate = 0 }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{}
	cfg.Database = DatabaseConfig{
		Host:     "db.internal",
		Port:     "5432",
		User:     "svc",
		Password: "pw",
		Name:     "marketplace_db",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5432 user=svc password=pw dbname=marketplace_db sslmode=require",
		cfg.GetDatabaseDSN())
}

func TestGetRedisAddr(t *testing.T) {
	cfg := &Config{}
	cfg.Redis.Host = "cache.internal"
	cfg.Redis.Port = "6380"

	assert.Equal(t, "cache.internal:6380", cfg.GetRedisAddr())
}

func TestEnvironmentHelpers(t *testing.T) {
	dev := &Config{App: AppConfig{Environment: "development"}}
	prod := &Config{App: AppConfig{Environment: "production"}}

	assert.True(t, dev.IsDevelopment())
	assert.False(t, dev.IsProduction())
	assert.True(t, prod.IsProduction())
	assert.False(t, prod.IsDevelopment())
}
