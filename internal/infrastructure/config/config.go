package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	ERP      ERPConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Log      LogConfig
	HTTP     HTTPConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// ERPConfig holds the upstream ERP API settings. AID/Pwd are the optional
// privileged credentials; Privileged lists the reqids tokenized through the
// credentialed endpoint.
type ERPConfig struct {
	BaseURL             string
	AID                 string
	Pwd                 string
	TokenTimeoutSeconds int
	DataTimeoutSeconds  int
	Privileged          []string
}

// CacheConfig holds collection cache settings. TTLs are per entity; the
// container listing changes faster than the reference catalogs.
type CacheConfig struct {
	Backend          string // memory or redis
	DepotTTL         time.Duration
	ContainerTTL     time.Duration
	ShippingLineTTL  time.Duration
	GoodsTTL         time.Duration
	ContainerTypeTTL time.Duration
	CompanyTTL       time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// DatabaseConfig holds registration store settings. An empty driver selects
// the in-memory store; "postgres" or "sqlite" select the durable one.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	FilePath string // sqlite only
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with DEPOT_ prefix (e.g., DEPOT_ERP_BASE_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("DEPOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		ERP: ERPConfig{
			BaseURL:             v.GetString("erp.base_url"),
			AID:                 v.GetString("erp.aid"),
			Pwd:                 v.GetString("erp.pwd"),
			TokenTimeoutSeconds: v.GetInt("erp.token_timeout_seconds"),
			DataTimeoutSeconds:  v.GetInt("erp.data_timeout_seconds"),
			Privileged:          v.GetStringSlice("erp.privileged_reqids"),
		},
		Cache: CacheConfig{
			Backend:          v.GetString("cache.backend"),
			DepotTTL:         v.GetDuration("cache.depot_ttl"),
			ContainerTTL:     v.GetDuration("cache.container_ttl"),
			ShippingLineTTL:  v.GetDuration("cache.shipping_line_ttl"),
			GoodsTTL:         v.GetDuration("cache.goods_ttl"),
			ContainerTypeTTL: v.GetDuration("cache.container_type_ttl"),
			CompanyTTL:       v.GetDuration("cache.company_ttl"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Database: DatabaseConfig{
			Driver:   v.GetString("database.driver"),
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			DBName:   v.GetString("database.dbname"),
			SSLMode:  v.GetString("database.sslmode"),
			FilePath: v.GetString("database.file_path"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "depot-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.ERP.TokenTimeoutSeconds == 0 {
		cfg.ERP.TokenTimeoutSeconds = 10
	}
	if cfg.ERP.DataTimeoutSeconds == 0 {
		cfg.ERP.DataTimeoutSeconds = 30
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.DepotTTL == 0 {
		cfg.Cache.DepotTTL = 10 * time.Minute
	}
	if cfg.Cache.ContainerTTL == 0 {
		cfg.Cache.ContainerTTL = 5 * time.Minute
	}
	if cfg.Cache.ShippingLineTTL == 0 {
		cfg.Cache.ShippingLineTTL = 10 * time.Minute
	}
	if cfg.Cache.GoodsTTL == 0 {
		cfg.Cache.GoodsTTL = 10 * time.Minute
	}
	if cfg.Cache.ContainerTypeTTL == 0 {
		cfg.Cache.ContainerTypeTTL = 10 * time.Minute
	}
	if cfg.Cache.CompanyTTL == 0 {
		cfg.Cache.CompanyTTL = 10 * time.Minute
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "depot"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.FilePath == "" {
		cfg.Database.FilePath = "depot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	// NOTE: CORS origins are intentionally not given a default fallback to "*".
	// An empty list means no cross-origin requests are allowed until explicitly
	// configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.ERP.BaseURL == "" {
		return fmt.Errorf("erp.base_url is required")
	}
	if _, err := url.Parse(c.ERP.BaseURL); err != nil {
		return fmt.Errorf("erp.base_url is not a valid URL: %w", err)
	}
	if (c.ERP.AID == "") != (c.ERP.Pwd == "") {
		return fmt.Errorf("erp.aid and erp.pwd must be set together")
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got %q", c.Cache.Backend)
	}

	switch c.Database.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be empty, 'postgres' or 'sqlite', got %q", c.Database.Driver)
	}

	if c.App.Env == "production" {
		if c.Database.Driver == "postgres" {
			if c.Database.Password == "" {
				return fmt.Errorf("database.password is required in production")
			}
			if c.Database.SSLMode == "disable" {
				return fmt.Errorf("database.sslmode cannot be 'disable' in production")
			}
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the postgres connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
