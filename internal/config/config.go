package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates server and worker settings sourced from environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// ArchiveConfig controls the debounced document archive task.
type ArchiveConfig struct {
	// Delay is how long a document must go without saves before it is archived.
	Delay       time.Duration `mapstructure:"delay"`
	Concurrency int           `mapstructure:"concurrency"`
}

// ClientConfig holds the editor-side settings used by resumectl.
type ClientConfig struct {
	APIBaseURL     string         `mapstructure:"api_base_url"`
	RequestTimeout time.Duration  `mapstructure:"request_timeout"`
	Sync           SyncConfig     `mapstructure:"sync"`
	Snapshot       SnapshotConfig `mapstructure:"snapshot"`
}

// SyncConfig tunes the autosave engine.
type SyncConfig struct {
	HeaderDebounce  time.Duration `mapstructure:"header_debounce"`
	SectionDebounce time.Duration `mapstructure:"section_debounce"`
	Quiet           time.Duration `mapstructure:"quiet"`
}

// SnapshotConfig selects where the local recovery snapshot lives.
type SnapshotConfig struct {
	// Backend is one of badger, redis or memory.
	Backend  string        `mapstructure:"backend"`
	Path     string        `mapstructure:"path"`
	Key      string        `mapstructure:"key"`
	Debounce time.Duration `mapstructure:"debounce"`
	Redis    RedisConfig   `mapstructure:"redis"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Load reads server configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v, serverEnv); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadClient reads the editor configuration from environment variables.
func LoadClient() (*ClientConfig, error) {
	v := viper.New()
	setClientDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v, clientEnv); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal client config: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")

	if err := validateClient(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "resumesync")
	v.SetDefault("database.user", "resumesync")
	v.SetDefault("database.password", "resumesync")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "resumes")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("archive.delay", "30s")
	v.SetDefault("archive.concurrency", 10)
}

func setClientDefaults(v *viper.Viper) {
	v.SetDefault("api_base_url", "http://localhost:8080")
	v.SetDefault("request_timeout", "10s")
	v.SetDefault("sync.header_debounce", "500ms")
	v.SetDefault("sync.section_debounce", "0s")
	v.SetDefault("sync.quiet", "2s")
	v.SetDefault("snapshot.backend", "badger")
	v.SetDefault("snapshot.path", ".resumesync")
	v.SetDefault("snapshot.key", "resume_builder_data")
	v.SetDefault("snapshot.debounce", "500ms")
	v.SetDefault("snapshot.redis.host", "localhost")
	v.SetDefault("snapshot.redis.port", 6379)
}

var serverEnv = map[string]string{
	"api.port":                   "API_PORT",
	"api.allowed_origins":        "API_ALLOWED_ORIGINS",
	"database.host":              "DATABASE_HOST",
	"database.port":              "DATABASE_PORT",
	"database.name":              "POSTGRES_DB",
	"database.user":              "POSTGRES_USER",
	"database.password":          "POSTGRES_PASSWORD",
	"database.sslmode":           "DATABASE_SSLMODE",
	"database.max_open_conns":    "DATABASE_MAX_OPEN_CONNS",
	"database.max_idle_conns":    "DATABASE_MAX_IDLE_CONNS",
	"database.conn_max_lifetime": "DATABASE_CONN_MAX_LIFETIME",
	"redis.host":                 "REDIS_HOST",
	"redis.port":                 "REDIS_PORT",
	"minio.endpoint":             "MINIO_ENDPOINT",
	"minio.access_key_id":        "MINIO_ACCESS_KEY_ID",
	"minio.secret_access_key":    "MINIO_SECRET_ACCESS_KEY",
	"minio.use_ssl":              "MINIO_USE_SSL",
	"minio.bucket":               "MINIO_BUCKET",
	"minio.region":               "MINIO_REGION",
	"minio.auto_create_bucket":   "MINIO_AUTO_CREATE_BUCKET",
	"archive.delay":              "ARCHIVE_DELAY",
	"archive.concurrency":        "ARCHIVE_CONCURRENCY",
}

var clientEnv = map[string]string{
	"api_base_url":          "RESUMESYNC_API_URL",
	"request_timeout":       "RESUMESYNC_REQUEST_TIMEOUT",
	"sync.header_debounce":  "RESUMESYNC_HEADER_DEBOUNCE",
	"sync.section_debounce": "RESUMESYNC_SECTION_DEBOUNCE",
	"sync.quiet":            "RESUMESYNC_QUIET_INTERVAL",
	"snapshot.backend":      "RESUMESYNC_SNAPSHOT_BACKEND",
	"snapshot.path":         "RESUMESYNC_SNAPSHOT_PATH",
	"snapshot.key":          "RESUMESYNC_SNAPSHOT_KEY",
	"snapshot.debounce":     "RESUMESYNC_SNAPSHOT_DEBOUNCE",
	"snapshot.redis.host":   "RESUMESYNC_SNAPSHOT_REDIS_HOST",
	"snapshot.redis.port":   "RESUMESYNC_SNAPSHOT_REDIS_PORT",
}

func bindEnv(v *viper.Viper, mappings map[string]string) error {
	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

// validate reports every missing or out-of-range server setting at once.
func validate(cfg Config) error {
	checks := []struct {
		bad bool
		msg string
	}{
		{cfg.API.Port <= 0, "api port must be positive"},
		{cfg.Database.Host == "", "database host is required"},
		{cfg.Database.Port <= 0, "database port must be positive"},
		{cfg.Database.Name == "", "database name is required"},
		{cfg.Database.User == "", "database user is required"},
		{cfg.Database.Password == "", "database password is required"},
		{cfg.Database.SSLMode == "", "database sslmode is required"},
		{cfg.Database.MaxOpenConns <= 0, "database max open conns must be positive"},
		{cfg.Database.MaxIdleConns < 0 || cfg.Database.MaxIdleConns > cfg.Database.MaxOpenConns, "database max idle conns must be between 0 and max open conns"},
		{cfg.Redis.Host == "", "redis host is required"},
		{cfg.Redis.Port <= 0, "redis port must be positive"},
		{cfg.MinIO.Endpoint == "", "minio endpoint is required"},
		{cfg.MinIO.AccessKeyID == "", "minio access key id is required"},
		{cfg.MinIO.SecretAccessKey == "", "minio secret access key is required"},
		{cfg.MinIO.Bucket == "", "minio bucket is required"},
		{cfg.Archive.Delay < 0, "archive delay must not be negative"},
		{cfg.Archive.Concurrency <= 0, "archive concurrency must be positive"},
	}

	var errs []error
	for _, c := range checks {
		if c.bad {
			errs = append(errs, errors.New(c.msg))
		}
	}
	return errors.Join(errs...)
}

func validateClient(cfg ClientConfig) error {
	if cfg.APIBaseURL == "" {
		return errors.New("api base url is required")
	}
	if cfg.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if cfg.Sync.HeaderDebounce < 0 || cfg.Sync.SectionDebounce < 0 {
		return errors.New("debounce windows must not be negative")
	}
	if cfg.Sync.Quiet <= 0 {
		return errors.New("quiet interval must be positive")
	}
	switch cfg.Snapshot.Backend {
	case "badger", "memory":
	case "redis":
		if cfg.Snapshot.Redis.Host == "" || cfg.Snapshot.Redis.Port <= 0 {
			return errors.New("snapshot redis address is required")
		}
	default:
		return fmt.Errorf("unknown snapshot backend %q", cfg.Snapshot.Backend)
	}
	if cfg.Snapshot.Key == "" {
		return errors.New("snapshot key is required")
	}
	return nil
}
