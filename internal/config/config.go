package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    Server    `yaml:"server"`
	Graph     Graph     `yaml:"graph"`
	Database  Database  `yaml:"database"`
	Links     Links     `yaml:"links"`
	Scheduler Scheduler `yaml:"scheduler"`
	S3        S3        `yaml:"s3"`
	Webhook   Webhook   `yaml:"webhook"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
}

// Address returns the full server address
func (s Server) Address() string {
	return s.Host + ":" + s.Port
}

// Graph holds Meta Graph API configuration, shared by the Facebook and
// Instagram publishing flows
type Graph struct {
	BaseURL    string        `yaml:"base_url" env:"GRAPH_BASE_URL" env-default:"https://graph.facebook.com"`
	APIVersion string        `yaml:"api_version" env:"GRAPH_API_VERSION" env-default:"v21.0"`
	Timeout    time.Duration `yaml:"timeout" env:"GRAPH_TIMEOUT" env-default:"30s"`
}

// Database holds database configuration
type Database struct {
	PostgresDSN string `yaml:"postgres_dsn" env:"DATABASE_URL"`

	MaxOpenConns int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MinIdleConns int           `yaml:"min_idle_conns" env:"DB_MIN_IDLE_CONNS" env-default:"5"`
	ConnLifetime time.Duration `yaml:"conn_lifetime" env:"DB_CONN_LIFETIME" env-default:"5m"`
}

// Links holds link-detection configuration
type Links struct {
	DebounceInterval time.Duration `yaml:"debounce_interval" env:"LINKS_DEBOUNCE_INTERVAL" env-default:"1s"`
	ResolveTimeout   time.Duration `yaml:"resolve_timeout" env:"LINKS_RESOLVE_TIMEOUT" env-default:"10s"`
	CacheTTL         time.Duration `yaml:"cache_ttl" env:"LINKS_CACHE_TTL" env-default:"24h"`
}

// Scheduler holds scheduled-post processing configuration
type Scheduler struct {
	Enabled  bool          `yaml:"enabled" env:"SCHEDULER_ENABLED" env-default:"true"`
	Interval time.Duration `yaml:"interval" env:"SCHEDULER_INTERVAL" env-default:"1m"`
}

// S3 holds S3/MinIO storage configuration
type S3 struct {
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET" env-default:"media"`
	Region          string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	PublicURL       string `yaml:"public_url" env:"S3_PUBLIC_URL" env-default:"http://localhost:9000/media"`
}

// Webhook holds webhook ingestion configuration
type Webhook struct {
	// Token expected in the X-Webhook-Token header; empty disables the check
	Token string `yaml:"token" env:"WEBHOOK_TOKEN"`
	// OwnerUserID is the account the ingested items are published under
	OwnerUserID string `yaml:"owner_user_id" env:"WEBHOOK_OWNER_USER_ID"`
}

// MustLoad loads configuration from environment and panics on error
func MustLoad() Config {
	// Load .env file if exists (for development)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
