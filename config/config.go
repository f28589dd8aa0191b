package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v8"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Remote   RemoteConfig   `yaml:"remote"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Search   SearchConfig   `yaml:"search"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type AppConfig struct {
	Env string `yaml:"env" env:"APP_ENV"`
}

type HTTPConfig struct {
	Address    string  `yaml:"address" env:"HTTP_ADDRESS"`
	SwaggerDir string  `yaml:"swagger_dir" env:"SWAGGER_DIR"`
	RateLimit  float64 `yaml:"rate_limit_per_second" env:"HTTP_RATE_LIMIT"`
	RateBurst  int     `yaml:"rate_burst" env:"HTTP_RATE_BURST"`
}

type GRPCConfig struct {
	Address string `yaml:"address" env:"GRPC_ADDRESS"`
}

// RemoteConfig points at the upstream flight API. A zero timeout leaves
// outbound calls bounded only by the request context.
type RemoteConfig struct {
	BaseURL        string `yaml:"base_url" env:"REMOTE_BASE_URL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"REMOTE_TIMEOUT_SECONDS"`
}

func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" env:"KAFKA_BROKERS" envSeparator:","`
	BookingEventsTopic string   `yaml:"booking_events_topic" env:"KAFKA_BOOKING_EVENTS_TOPIC"`
	NotificationsTopic string   `yaml:"notifications_topic" env:"KAFKA_NOTIFICATIONS_TOPIC"`
	GroupID            string   `yaml:"group_id" env:"KAFKA_GROUP_ID"`
}

type SearchConfig struct {
	PageSize               int `yaml:"page_size"`
	UpcomingLimit          int `yaml:"upcoming_limit"`
	FlightsCacheTTLSeconds int `yaml:"flights_cache_ttl_seconds"`
	ProfileCacheTTLSeconds int `yaml:"profile_cache_ttl_seconds"`
	SubmissionLockSeconds  int `yaml:"submission_lock_seconds"`
}

type WorkerConfig struct {
	DirectoryRefreshMinutes int `yaml:"directory_refresh_minutes"`
}

// LoadConfig reads the YAML file at path, applies environment overrides and
// fills defaults for anything left unset.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 8
	}
	if c.Search.UpcomingLimit <= 0 {
		c.Search.UpcomingLimit = 5
	}
	if c.Search.FlightsCacheTTLSeconds <= 0 {
		c.Search.FlightsCacheTTLSeconds = 60
	}
	if c.Search.ProfileCacheTTLSeconds <= 0 {
		c.Search.ProfileCacheTTLSeconds = 30
	}
	if c.Search.SubmissionLockSeconds <= 0 {
		c.Search.SubmissionLockSeconds = 120
	}
	if c.Worker.DirectoryRefreshMinutes <= 0 {
		c.Worker.DirectoryRefreshMinutes = 5
	}
}
