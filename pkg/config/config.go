package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage backends understood by the key/value layer.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Accounts  AccountsConfig
	Storage   StorageConfig
	Dashboard DashboardConfig
	Import    ImportConfig
	Metrics   MetricsConfig
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
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AccountsConfig holds the two fixed identities the service knows about.
type AccountsConfig struct {
	AdminEmail        string
	AdminName         string
	AdminPassword     string
	AdminPasswordHash string
	GuestEmail        string
	GuestName         string
}

// StorageConfig selects and tunes the key/value backend holding the collection.
type StorageConfig struct {
	Backend       string
	DataKey       string
	SessionKey    string
	FileDir       string
	MaxValueBytes int64
	SeedDemoData  bool
}

// DashboardConfig governs dashboard aggregation and cache tuning.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
	PercentBase  string
	TopYears     int
}

// ImportConfig limits CSV uploads.
type ImportConfig struct {
	MaxBytes int64
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
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
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
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
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Accounts = AccountsConfig{
		AdminEmail:        v.GetString("ADMIN_EMAIL"),
		AdminName:         v.GetString("ADMIN_NAME"),
		AdminPassword:     v.GetString("ADMIN_PASSWORD"),
		AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		GuestEmail:        v.GetString("GUEST_EMAIL"),
		GuestName:         v.GetString("GUEST_NAME"),
	}

	cfg.Storage = StorageConfig{
		Backend:       strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
		DataKey:       v.GetString("STORAGE_DATA_KEY"),
		SessionKey:    v.GetString("STORAGE_SESSION_KEY"),
		FileDir:       v.GetString("STORAGE_FILE_DIR"),
		MaxValueBytes: v.GetInt64("STORAGE_MAX_VALUE_BYTES"),
		SeedDemoData:  v.GetBool("SEED_DEMO_DATA"),
	}

	topYears := v.GetInt("DASHBOARD_TOP_YEARS")
	if topYears <= 0 {
		topYears = 5
	}
	cfg.Dashboard = DashboardConfig{
		CacheEnabled: v.GetBool("ENABLE_DASHBOARD_CACHE"),
		CacheTTL:     parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
		PercentBase:  strings.ToLower(strings.TrimSpace(v.GetString("DASHBOARD_PERCENT_BASE"))),
		TopYears:     topYears,
	}

	maxImport := v.GetInt64("IMPORT_MAX_BYTES")
	if maxImport <= 0 {
		maxImport = 5 * 1024 * 1024
	}
	cfg.Import = ImportConfig{MaxBytes: maxImport}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "alumni_hub")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ADMIN_EMAIL", "admin@alumni.edu")
	v.SetDefault("ADMIN_NAME", "Administrator")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("GUEST_EMAIL", "guest@alumni.edu")
	v.SetDefault("GUEST_NAME", "Guest User")

	v.SetDefault("STORAGE_BACKEND", StorageMemory)
	v.SetDefault("STORAGE_DATA_KEY", "alumniData")
	v.SetDefault("STORAGE_SESSION_KEY", "currentUser")
	v.SetDefault("STORAGE_FILE_DIR", "./data")
	v.SetDefault("STORAGE_MAX_VALUE_BYTES", 5*1024*1024)
	v.SetDefault("SEED_DEMO_DATA", true)

	v.SetDefault("ENABLE_DASHBOARD_CACHE", false)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("DASHBOARD_PERCENT_BASE", "collection")
	v.SetDefault("DASHBOARD_TOP_YEARS", 5)

	v.SetDefault("IMPORT_MAX_BYTES", 5*1024*1024)
	v.SetDefault("ENABLE_METRICS", true)
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
