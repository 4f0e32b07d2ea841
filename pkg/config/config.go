package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Summary sources accepted by SUMMARY_SOURCE.
const (
	SummarySourceSQL    = "sql"
	SummarySourceMemory = "memory"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Bootstrap  BootstrapConfig
	CORS       CORSConfig
	Log        LogConfig
	Summary    SummaryConfig
	BrandCache BrandCacheConfig
	Images     ImagesConfig
	Exports    ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// BootstrapConfig seeds the first admin account on an empty users table.
type BootstrapConfig struct {
	AdminUsername string
	AdminPassword string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SummaryConfig selects how the schedule summary reads the record store.
type SummaryConfig struct {
	Source       string
	QueryTimeout time.Duration
	Timezone     string
}

// BrandCacheConfig governs the Redis-backed brands_info list cache.
type BrandCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// ImagesConfig controls profile image storage and processing.
type ImagesConfig struct {
	StorageDir       string
	PublicPath       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	MaxDimension     int
	Workers          int
}

// ExportsConfig toggles the schedule summary export endpoint.
type ExportsConfig struct {
	Enabled     bool
	PDFFontPath string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.Bootstrap = BootstrapConfig{
		AdminUsername: v.GetString("BOOTSTRAP_ADMIN_USERNAME"),
		AdminPassword: v.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Summary = SummaryConfig{
		Source:       strings.ToLower(strings.TrimSpace(v.GetString("SUMMARY_SOURCE"))),
		QueryTimeout: parseDuration(v.GetString("SUMMARY_QUERY_TIMEOUT"), 10*time.Second),
		Timezone:     v.GetString("SUMMARY_TIMEZONE"),
	}

	cfg.BrandCache = BrandCacheConfig{
		Enabled: v.GetBool("ENABLE_BRAND_CACHE"),
		TTL:     parseDuration(v.GetString("BRAND_CACHE_TTL"), 5*time.Minute),
	}

	maxImageSize := v.GetInt64("IMAGES_MAX_FILE_SIZE")
	if maxImageSize <= 0 {
		maxImageSize = 5 * 1024 * 1024
	}
	cfg.Images = ImagesConfig{
		StorageDir:       v.GetString("IMAGES_STORAGE_DIR"),
		PublicPath:       strings.TrimRight(v.GetString("IMAGES_PUBLIC_PATH"), "/"),
		SignedURLSecret:  v.GetString("IMAGES_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("IMAGES_SIGNED_URL_TTL"), 30*time.Minute),
		MaxFileSizeBytes: maxImageSize,
		MaxDimension:     v.GetInt("IMAGES_MAX_DIMENSION"),
		Workers:          v.GetInt("IMAGES_WORKERS"),
	}

	cfg.Exports = ExportsConfig{
		Enabled:     v.GetBool("ENABLE_EXPORTS"),
		PDFFontPath: v.GetString("EXPORT_PDF_FONT_PATH"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	switch c.Summary.Source {
	case SummarySourceSQL, SummarySourceMemory:
	default:
		return fmt.Errorf("invalid SUMMARY_SOURCE %q: expected %q or %q", c.Summary.Source, SummarySourceSQL, SummarySourceMemory)
	}
	if _, err := time.LoadLocation(c.Summary.Timezone); err != nil {
		return fmt.Errorf("invalid SUMMARY_TIMEZONE %q: %w", c.Summary.Timezone, err)
	}
	if c.Env == EnvProduction && (c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret) {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.Port <= 0 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return nil
}

const defaultJWTSecret = "dev_secret"

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "wallsetting")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "wallsetting-api")

	v.SetDefault("BOOTSTRAP_ADMIN_USERNAME", "")
	v.SetDefault("BOOTSTRAP_ADMIN_PASSWORD", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SUMMARY_SOURCE", SummarySourceSQL)
	v.SetDefault("SUMMARY_QUERY_TIMEOUT", "10s")
	v.SetDefault("SUMMARY_TIMEZONE", "Asia/Seoul")

	v.SetDefault("ENABLE_BRAND_CACHE", false)
	v.SetDefault("BRAND_CACHE_TTL", "5m")

	v.SetDefault("IMAGES_STORAGE_DIR", "./images")
	v.SetDefault("IMAGES_PUBLIC_PATH", "/images")
	v.SetDefault("IMAGES_SIGNED_URL_SECRET", "dev_images_secret")
	v.SetDefault("IMAGES_SIGNED_URL_TTL", "30m")
	v.SetDefault("IMAGES_MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("IMAGES_MAX_DIMENSION", 1024)
	v.SetDefault("IMAGES_WORKERS", 1)

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORT_PDF_FONT_PATH", "")
}

// viper reports a missing explicit config file as a PathError rather than
// ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
