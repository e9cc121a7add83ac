package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/youngsunson/updatev2/core/db"
)

type Config struct {
	OTel     OTelConfig
	Analysis LLMConfig
	Settings SettingsConfig
	Env      string
	Port     string
	RedisURL string
	DB       db.Config
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	Environment    string
	SampleRatio    float64 // fraction of root traces kept; 0 keeps all
}

type LLMConfig struct {
	APIKey         string // Fallback credential when the settings store holds none
	BaseURL        string // OpenAI-compatible endpoint; defaults to Gemini's
	Model          string
	MaxTokens      int
	ResponseFormat string // "json_schema", "json_object" or "text"
	Temperature    float64
}

type SettingsConfig struct {
	Backend  string // "redis" or "file"
	Profile  string
	FilePath string
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeCLI    ServiceType = "cli"
)

const (
	SettingsBackendRedis = "redis"
	SettingsBackendFile  = "file"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the HTTP backend
//   - .env.cli for the command line tool
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("PROOFREAD_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	defaultBackend := SettingsBackendRedis
	if serviceType == ServiceTypeCLI {
		defaultBackend = SettingsBackendFile
	}

	cfg := Config{
		Env:      getEnv("PROOFREAD_ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DB: db.Config{
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 10),
			MinConns: getEnvInt32("DB_MIN_CONNS", 2),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "proofread"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("PROOFREAD_ENV", "development"),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1),
		},
		Analysis: LLMConfig{
			APIKey:         getEnv("ANALYSIS_API_KEY", ""),
			BaseURL:        getEnv("ANALYSIS_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
			Model:          getEnv("ANALYSIS_MODEL", "gemini-2.0-flash"),
			MaxTokens:      getEnvInt("ANALYSIS_MAX_TOKENS", 8192),
			ResponseFormat: getEnv("ANALYSIS_RESPONSE_FORMAT", "json_object"),
			Temperature:    getEnvFloat("ANALYSIS_TEMPERATURE", 0.2),
		},
		Settings: SettingsConfig{
			Backend:  getEnv("SETTINGS_BACKEND", defaultBackend),
			Profile:  getEnv("SETTINGS_PROFILE", "default"),
			FilePath: getEnv("SETTINGS_FILE", ""),
		},
	}

	switch cfg.Settings.Backend {
	case SettingsBackendRedis, SettingsBackendFile:
	default:
		return Config{}, fmt.Errorf("SETTINGS_BACKEND must be %q or %q, got %q",
			SettingsBackendRedis, SettingsBackendFile, cfg.Settings.Backend)
	}

	switch cfg.Analysis.ResponseFormat {
	case "json_schema", "json_object", "text":
	default:
		return Config{}, fmt.Errorf("ANALYSIS_RESPONSE_FORMAT %q is not supported", cfg.Analysis.ResponseFormat)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
