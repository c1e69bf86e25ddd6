package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	App       AppConfig
	Cache     CacheConfig
	MirrorDB  MirrorDBConfig
	ProfileDB ProfileDBConfig
	Scryfall  ScryfallConfig
	Session   SessionConfig
	Sync      SyncConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"cambiacartas-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	AdminKey    string `envconfig:"ADMIN_KEY" default:""` // Admin endpoints login key
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Type     string        `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	CardTTL  time.Duration `envconfig:"CACHE_CARD_TTL" default:"5m"`
	MatchTTL time.Duration `envconfig:"CACHE_MATCH_TTL" default:"30s"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// MirrorDBConfig holds the trading database settings (card mirror,
// inventory, wishlists, sync progress).
type MirrorDBConfig struct {
	Type string `envconfig:"MIRROR_DB_TYPE" default:"sqlite"` // sqlite or postgres
	Path string `envconfig:"MIRROR_DB_PATH" default:"./data/cambiacartas.db"`
	// PostgreSQL settings
	Host     string `envconfig:"MIRROR_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"MIRROR_DB_PORT" default:"5432"`
	Name     string `envconfig:"MIRROR_DB_NAME" default:"cambiacartas"`
	User     string `envconfig:"MIRROR_DB_USER" default:"postgres"`
	Password string `envconfig:"MIRROR_DB_PASS" default:""`
	SSLMode  string `envconfig:"MIRROR_DB_SSLMODE" default:"disable"`
}

// ProfileDBConfig holds MySQL connection settings for the community site
// profiles database.
type ProfileDBConfig struct {
	Host     string `envconfig:"PROFILE_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"PROFILE_DB_PORT" default:"3306"`
	Name     string `envconfig:"PROFILE_DB_NAME" default:"cambiacartas"`
	User     string `envconfig:"PROFILE_DB_USER" default:"root"`
	Password string `envconfig:"PROFILE_DB_PASS" default:""`
}

// ScryfallConfig holds external catalog client settings.
type ScryfallConfig struct {
	BaseURL      string        `envconfig:"SCRYFALL_BASE_URL" default:"https://api.scryfall.com"`
	Timeout      time.Duration `envconfig:"SCRYFALL_TIMEOUT" default:"10s"`
	MaxRetries   int           `envconfig:"SCRYFALL_MAX_RETRIES" default:"2"`
	MaxPages     int           `envconfig:"SCRYFALL_MAX_PAGES" default:"20"`
	SuggestLimit int           `envconfig:"SCRYFALL_SUGGEST_LIMIT" default:"20"`
}

// SessionConfig holds session token settings.
type SessionConfig struct {
	TTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`
}

// SyncConfig holds catalog sync job settings.
type SyncConfig struct {
	Enabled       bool          `envconfig:"SYNC_ENABLED" default:"false"`
	Interval      time.Duration `envconfig:"SYNC_INTERVAL" default:"24h"`
	FlushInterval time.Duration `envconfig:"SYNC_FLUSH_INTERVAL" default:"30s"`
}

// PostgresDSN returns the PostgreSQL connection string.
func (m *MirrorDBConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		m.User, m.Password, m.Host, m.Port, m.Name, m.SSLMode)
}

// DSN returns the MySQL data source name.
func (p *ProfileDBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		p.User, p.Password, p.Host, p.Port, p.Name)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
