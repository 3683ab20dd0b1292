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
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Wildberries MarketplaceConfig
	Ozon        MarketplaceConfig
	FSA         RegistryConfig
	CRPT        RegistryConfig
	Audit       AuditConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite file path
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                string
	AccessTokenExpiration time.Duration
	Issuer                string
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
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// MarketplaceConfig holds seller API settings for one marketplace.
// Statically configured credentials apply to every user; a per-user key
// store can replace them without touching this section.
type MarketplaceConfig struct {
	APIBaseURL     string
	APIKey         string
	ClientID       string // Ozon only
	PageSize       int
	MaxPages       int
	TimeoutSeconds int
}

// RegistryConfig holds settings for one external compliance registry
type RegistryConfig struct {
	APIBaseURL     string
	TimeoutSeconds int
	RetryAttempts  int
	SearchLimit    int
}

// AuditConfig holds the audit check thresholds
type AuditConfig struct {
	MinPhotos              int
	MinDescriptionLength   int
	MinRating              float64
	MinReviews             int
	MinSEOKeywords         int
	MaxLogisticsShare      float64
	ThinMarginPercent      float64
	CertExpiryWarningDays  int
	RunLockTTL             time.Duration
	ShadowBanMinSamples    int
	ShadowBanPositionDrop  float64
	ShadowBanImpressFactor float64
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with AUDITOR_ prefix (e.g., AUDITOR_DATABASE_PASSWORD)
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

	v.SetEnvPrefix("AUDITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			Path:            v.GetString("database.path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
			Issuer:                v.GetString("jwt.issuer"),
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
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Wildberries: MarketplaceConfig{
			APIBaseURL:     v.GetString("wildberries.api_base_url"),
			APIKey:         v.GetString("wildberries.api_key"),
			PageSize:       v.GetInt("wildberries.page_size"),
			MaxPages:       v.GetInt("wildberries.max_pages"),
			TimeoutSeconds: v.GetInt("wildberries.timeout_seconds"),
		},
		Ozon: MarketplaceConfig{
			APIBaseURL:     v.GetString("ozon.api_base_url"),
			APIKey:         v.GetString("ozon.api_key"),
			ClientID:       v.GetString("ozon.client_id"),
			PageSize:       v.GetInt("ozon.page_size"),
			MaxPages:       v.GetInt("ozon.max_pages"),
			TimeoutSeconds: v.GetInt("ozon.timeout_seconds"),
		},
		FSA: RegistryConfig{
			APIBaseURL:     v.GetString("fsa.api_base_url"),
			TimeoutSeconds: v.GetInt("fsa.timeout_seconds"),
			RetryAttempts:  v.GetInt("fsa.retry_attempts"),
			SearchLimit:    v.GetInt("fsa.search_limit"),
		},
		CRPT: RegistryConfig{
			APIBaseURL:     v.GetString("crpt.api_base_url"),
			TimeoutSeconds: v.GetInt("crpt.timeout_seconds"),
			RetryAttempts:  v.GetInt("crpt.retry_attempts"),
		},
		Audit: AuditConfig{
			MinPhotos:              v.GetInt("audit.min_photos"),
			MinDescriptionLength:   v.GetInt("audit.min_description_length"),
			MinRating:              v.GetFloat64("audit.min_rating"),
			MinReviews:             v.GetInt("audit.min_reviews"),
			MinSEOKeywords:         v.GetInt("audit.min_seo_keywords"),
			MaxLogisticsShare:      v.GetFloat64("audit.max_logistics_share"),
			ThinMarginPercent:      v.GetFloat64("audit.thin_margin_percent"),
			CertExpiryWarningDays:  v.GetInt("audit.cert_expiry_warning_days"),
			RunLockTTL:             v.GetDuration("audit.run_lock_ttl"),
			ShadowBanMinSamples:    v.GetInt("audit.shadow_ban_min_samples"),
			ShadowBanPositionDrop:  v.GetFloat64("audit.shadow_ban_position_drop"),
			ShadowBanImpressFactor: v.GetFloat64("audit.shadow_ban_impression_factor"),
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
		cfg.App.Name = "auditor-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
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
		cfg.Database.DBName = "auditor"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "auditor.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "auditor-backend"
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
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}

	if cfg.Wildberries.APIBaseURL == "" {
		cfg.Wildberries.APIBaseURL = "https://content-api.wildberries.ru"
	}
	if cfg.Wildberries.PageSize == 0 {
		cfg.Wildberries.PageSize = 1000
	}
	if cfg.Wildberries.MaxPages == 0 {
		cfg.Wildberries.MaxPages = 20
	}
	if cfg.Wildberries.TimeoutSeconds == 0 {
		cfg.Wildberries.TimeoutSeconds = 30
	}
	if cfg.Ozon.APIBaseURL == "" {
		cfg.Ozon.APIBaseURL = "https://api-seller.ozon.ru"
	}
	if cfg.Ozon.PageSize == 0 {
		cfg.Ozon.PageSize = 1000
	}
	if cfg.Ozon.MaxPages == 0 {
		cfg.Ozon.MaxPages = 20
	}
	if cfg.Ozon.TimeoutSeconds == 0 {
		cfg.Ozon.TimeoutSeconds = 30
	}

	if cfg.FSA.APIBaseURL == "" {
		cfg.FSA.APIBaseURL = "https://pub.fsa.gov.ru/api/v1"
	}
	if cfg.FSA.TimeoutSeconds == 0 {
		cfg.FSA.TimeoutSeconds = 15
	}
	if cfg.FSA.RetryAttempts == 0 {
		cfg.FSA.RetryAttempts = 1
	}
	if cfg.FSA.SearchLimit == 0 {
		cfg.FSA.SearchLimit = 20
	}
	if cfg.CRPT.APIBaseURL == "" {
		cfg.CRPT.APIBaseURL = "https://markirovka.crpt.ru/api/v3"
	}
	if cfg.CRPT.TimeoutSeconds == 0 {
		cfg.CRPT.TimeoutSeconds = 15
	}
	if cfg.CRPT.RetryAttempts == 0 {
		cfg.CRPT.RetryAttempts = 1
	}

	if cfg.Audit.MinPhotos == 0 {
		cfg.Audit.MinPhotos = 3
	}
	if cfg.Audit.MinDescriptionLength == 0 {
		cfg.Audit.MinDescriptionLength = 300
	}
	if cfg.Audit.MinRating == 0 {
		cfg.Audit.MinRating = 4.0
	}
	if cfg.Audit.MinReviews == 0 {
		cfg.Audit.MinReviews = 10
	}
	if cfg.Audit.MinSEOKeywords == 0 {
		cfg.Audit.MinSEOKeywords = 5
	}
	if cfg.Audit.MaxLogisticsShare == 0 {
		cfg.Audit.MaxLogisticsShare = 0.20
	}
	if cfg.Audit.ThinMarginPercent == 0 {
		cfg.Audit.ThinMarginPercent = 10
	}
	if cfg.Audit.CertExpiryWarningDays == 0 {
		cfg.Audit.CertExpiryWarningDays = 30
	}
	if cfg.Audit.RunLockTTL == 0 {
		cfg.Audit.RunLockTTL = 10 * time.Minute
	}
	if cfg.Audit.ShadowBanMinSamples == 0 {
		cfg.Audit.ShadowBanMinSamples = 3
	}
	if cfg.Audit.ShadowBanPositionDrop == 0 {
		cfg.Audit.ShadowBanPositionDrop = 0.5
	}
	if cfg.Audit.ShadowBanImpressFactor == 0 {
		cfg.Audit.ShadowBanImpressFactor = 1.5
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Audit.MaxLogisticsShare < 0 || c.Audit.MaxLogisticsShare >= 1 {
		return fmt.Errorf("audit.max_logistics_share must be in [0, 1)")
	}
	if c.Audit.ShadowBanMinSamples < 2 {
		return fmt.Errorf("audit.shadow_ban_min_samples must be at least 2")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Driver == "sqlite" {
			return fmt.Errorf("database.driver cannot be 'sqlite' in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values.
// For sqlite the DSN is simply the database file path.
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
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
