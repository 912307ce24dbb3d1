package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	guidelinedomain "famconomy-go/internal/domain/guideline"
	"famconomy-go/pkg/logger"
)

type Config struct {
	HTTPPort           string
	Env                string
	OfflineSyncEnabled bool
	CORSAllowedOrigins []string
	Guidelines         GuidelinesConfig
	Cache              CacheConfig
	DB                 DBConfig
	Auth               AuthConfig
	Redis              RedisConfig
}

type GuidelinesConfig struct {
	NewRuleWindow time.Duration
}

type CacheConfig struct {
	FamilyTTL     time.Duration
	CategoriesTTL time.Duration
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret         string
	Issuer            string
	SkipAuth          bool
	MockUserID        uint
	MockUserEmail     string
	MockUserFirstName string
	MockUserLastName  string
	MockUserAvatar    string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

func Load(log logger.Logger) (Config, error) {
	err := loadDotEnv(log)
	if err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	return Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		OfflineSyncEnabled: getEnvBool("OFFLINE_SYNC_ENABLED", true),
		CORSAllowedOrigins: getEnvCSV("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		Guidelines: GuidelinesConfig{
			NewRuleWindow: time.Duration(getEnvInt("GUIDELINE_NEW_RULE_WINDOW_DAYS", guidelinedomain.DefaultNewRuleWindowDays)) * 24 * time.Hour,
		},
		Cache: CacheConfig{
			FamilyTTL:     getEnvDuration("FAMILY_CACHE_TTL", time.Minute),
			CategoriesTTL: getEnvDuration("CATEGORIES_CACHE_TTL", time.Minute),
		},
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "famconomy"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("AUTH_JWT_SECRET", ""),
			Issuer:            getEnv("AUTH_JWT_ISSUER", ""),
			SkipAuth:          getEnvBool("AUTH_SKIP", false),
			MockUserID:        getEnvUint("AUTH_MOCK_USER_ID", 1),
			MockUserEmail:     getEnv("AUTH_MOCK_USER_EMAIL", ""),
			MockUserFirstName: getEnv("AUTH_MOCK_USER_FIRST_NAME", ""),
			MockUserLastName:  getEnv("AUTH_MOCK_USER_LAST_NAME", ""),
			MockUserAvatar:    getEnv("AUTH_MOCK_USER_AVATAR_URL", ""),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvUint(key string, fallback uint) uint {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fallback
	}
	return uint(parsed)
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvCSV(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
