// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported store backends
const (
	DBTypePostgres = "postgres"
	DBTypeMongo    = "mongo"
	DBTypeMemory   = "memory"
)

// Supported media backends
const (
	MediaLocal = "local"
	MediaS3    = "s3"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int           `yaml:"port"`
	Host           string        `yaml:"host"`
	MetricsEnabled bool          `yaml:"metrics_enabled"`
	PageCacheTTL   time.Duration `yaml:"page_cache_ttl"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DatabaseConfig holds database configuration settings
type DatabaseConfig struct {
	Type     string `yaml:"type"` // "postgres", "mongo" or "memory"
	URI      string `yaml:"uri"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// AuthConfig holds session token settings
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"`
	TokenExpiration time.Duration `yaml:"token_expiration"`
}

// MediaConfig describes where uploaded post images go
type MediaConfig struct {
	Backend  string `yaml:"backend"` // "local" or "s3"
	Root     string `yaml:"root"`
	URL      string `yaml:"url"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Region string `yaml:"s3_region"`
}

// LogConfig controls the slog handler
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
	File   string `yaml:"file"`
}

// Config holds the complete application configuration
type Config struct {
	Server   *ServerConfig   `yaml:"server"`
	Database *DatabaseConfig `yaml:"database"`
	Auth     *AuthConfig     `yaml:"auth"`
	Media    *MediaConfig    `yaml:"media"`
	Log      *LogConfig      `yaml:"log"`
	Debug    bool            `yaml:"debug"`
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
		PageCacheTTL:   15 * time.Second,
		RequestTimeout: 5 * time.Second,
	}
}

// DevelopmentSecret signs sessions when JWT_SECRET is unset. Validate
// refuses it outside debug mode unless the store is in-memory.
const DevelopmentSecret = "yatube-development-secret"

// DefaultDatabaseConfig provides default database settings
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Type:    DBTypePostgres,
		Port:    5432,
		Name:    "yatube",
		SSLMode: "require",
	}
}

// Default builds a complete configuration that needs no environment.
// The store is in-memory, which is what tests and local demos use.
func Default() *Config {
	db := DefaultDatabaseConfig()
	db.Type = DBTypeMemory
	return &Config{
		Server:   DefaultConfig(),
		Database: db,
		Auth: &AuthConfig{
			JWTSecret:       DevelopmentSecret,
			TokenExpiration: 24 * time.Hour,
		},
		Media: &MediaConfig{
			Backend: MediaLocal,
			Root:    "media",
			URL:     "/media/",
		},
		Log: &LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from .env files, an optional YAML file and
// environment variables, in that order of increasing precedence.
func LoadConfig(yamlPath string) (*Config, error) {
	envLocations := []string{
		".env",       // Current directory
		"../../.env", // Project root when running from cmd/yatube
	}

	envLoaded := false
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			envLoaded = true
			break
		}
	}
	if !envLoaded {
		_ = godotenv.Load()
	}

	config := Default()
	config.Database.Type = DBTypePostgres

	if yamlPath != "" {
		if err := applyYAML(config, yamlPath); err != nil {
			return nil, err
		}
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func applyYAML(config *Config, path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(config *Config) {
	server := config.Server
	if port, ok := getEnvInt("PORT"); ok {
		server.Port = port
	}
	if host := os.Getenv("HOST"); host != "" {
		server.Host = host
	}
	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		server.MetricsEnabled = metricsEnabled == "true"
	}
	if ttl, ok := getEnvDuration("PAGE_CACHE_TTL"); ok {
		server.PageCacheTTL = ttl
	}
	if timeout, ok := getEnvDuration("REQUEST_TIMEOUT"); ok {
		server.RequestTimeout = timeout
	}

	db := config.Database
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		db.Type = dbType
	}
	switch db.Type {
	case DBTypePostgres:
		if uri := os.Getenv("DATABASE_URL"); uri != "" {
			db.URI = uri
			db.SSLMode = getSSLModeFromURI(uri)
			break
		}
		db.Host = getEnvOrDefault("DB_HOST", getOr(db.Host, "localhost"))
		if port, ok := getEnvInt("DB_PORT"); ok {
			db.Port = port
		}
		db.User = getEnvOrDefault("DB_USER", db.User)
		db.Password = getEnvOrDefault("DB_PASSWORD", db.Password)
		db.Name = getEnvOrDefault("DB_NAME", db.Name)
		db.SSLMode = getEnvOrDefault("DB_SSL_MODE", db.SSLMode)
		if db.URI == "" && db.User != "" {
			db.URI = fmt.Sprintf(
				"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
				db.User,
				db.Password,
				db.Host,
				db.Port,
				db.Name,
				db.SSLMode,
			)
		}
	case DBTypeMongo:
		db.URI = getEnvOrDefault("MONGO_URI", db.URI)
		db.Name = getEnvOrDefault("MONGO_DB", db.Name)
	}

	auth := config.Auth
	auth.JWTSecret = getEnvOrDefault("JWT_SECRET", auth.JWTSecret)
	if exp, ok := getEnvDuration("TOKEN_EXPIRATION"); ok {
		auth.TokenExpiration = exp
	}

	media := config.Media
	media.Backend = getEnvOrDefault("MEDIA_BACKEND", media.Backend)
	media.Root = getEnvOrDefault("MEDIA_ROOT", media.Root)
	media.URL = getEnvOrDefault("MEDIA_URL", media.URL)
	media.S3Bucket = getEnvOrDefault("S3_BUCKET", media.S3Bucket)
	media.S3Region = getEnvOrDefault("S3_REGION", media.S3Region)

	logCfg := config.Log
	logCfg.Level = getEnvOrDefault("LOG_LEVEL", logCfg.Level)
	logCfg.Format = getEnvOrDefault("LOG_FORMAT", logCfg.Format)
	logCfg.File = getEnvOrDefault("LOG_FILE", logCfg.File)

	if debug := os.Getenv("DEBUG"); debug != "" {
		config.Debug = debug == "true"
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("invalid port %d", c.Server.Port))
	}
	if c.Server.PageCacheTTL < 0 {
		result = multierror.Append(result, fmt.Errorf("page cache TTL must not be negative"))
	}

	switch c.Database.Type {
	case DBTypePostgres:
		if c.Database.URI == "" {
			result = multierror.Append(result, fmt.Errorf("DATABASE_URL or DB_USER/DB_PASSWORD are required when DB_TYPE is postgres"))
		}
	case DBTypeMongo:
		if c.Database.URI == "" {
			result = multierror.Append(result, fmt.Errorf("MONGO_URI is required when DB_TYPE is mongo"))
		}
	case DBTypeMemory:
	default:
		result = multierror.Append(result, fmt.Errorf("unsupported DB_TYPE %q", c.Database.Type))
	}

	switch {
	case c.Auth.JWTSecret == "":
		result = multierror.Append(result, fmt.Errorf("JWT_SECRET must not be empty"))
	case c.Auth.JWTSecret == DevelopmentSecret && !c.Debug && c.Database.Type != DBTypeMemory:
		result = multierror.Append(result, fmt.Errorf("JWT_SECRET must be set when DEBUG is off and DB_TYPE is %s", c.Database.Type))
	}

	switch c.Media.Backend {
	case MediaLocal:
		if c.Media.Root == "" {
			result = multierror.Append(result, fmt.Errorf("MEDIA_ROOT is required for local media"))
		}
	case MediaS3:
		if c.Media.S3Bucket == "" || c.Media.S3Region == "" {
			result = multierror.Append(result, fmt.Errorf("S3_BUCKET and S3_REGION are required for s3 media"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unsupported MEDIA_BACKEND %q", c.Media.Backend))
	}

	return result.ErrorOrNil()
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getOr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// getEnvDuration accepts Go durations ("15s") or bare seconds ("15").
func getEnvDuration(key string) (time.Duration, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, true
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}

// Helper function to extract sslmode from a DSN, defaults to "require"
func getSSLModeFromURI(uri string) string {
	if strings.Contains(uri, "sslmode=") {
		parts := strings.Split(uri, "?")
		if len(parts) > 1 {
			queryParams := strings.Split(parts[1], "&")
			for _, param := range queryParams {
				kv := strings.SplitN(param, "=", 2)
				if len(kv) == 2 && kv[0] == "sslmode" {
					return kv[1]
				}
			}
		}
	}
	return "require"
}
