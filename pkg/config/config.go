package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v4"
)

type Config struct {
	Port          string `yaml:"port"`
	DatabaseURL   string `yaml:"database_url"`
	DBMaxConns    int    `yaml:"db_max_conns"`
	DBConnectWait int    `yaml:"db_connect_wait_seconds"` // how long to wait for postgres on startup
	JWTSecret     string `yaml:"jwt_secret"`
	JWTIssuer     string `yaml:"jwt_issuer"`
	JWTTTLMinutes int    `yaml:"jwt_ttl_minutes"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // json | console

	RedisURL            string `yaml:"redis_url"`
	ExtractionCacheTTLH int    `yaml:"extraction_cache_ttl_hours"`

	OpenRouterAPIKey   string  `yaml:"openrouter_api_key"`
	OpenRouterBase     string  `yaml:"openrouter_base"`
	OpenRouterModel    string  `yaml:"openrouter_model"`
	OpenRouterAppTitle string  `yaml:"openrouter_app_title"`
	OpenRouterReferer  string  `yaml:"openrouter_referer"`
	LLMTimeoutSeconds  int     `yaml:"llm_timeout_seconds"`
	LLMRatePerSec      float64 `yaml:"llm_rate_per_sec"`
	LLMBurst           int     `yaml:"llm_burst"`

	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// Defaults returns the configuration used when neither file nor env sets a value.
func Defaults() Config {
	return Config{
		Port:                "8080",
		DBMaxConns:          10,
		DBConnectWait:       30,
		JWTSecret:           "dev-secret-change",
		JWTIssuer:           "folio",
		JWTTTLMinutes:       60,
		LogLevel:            "info",
		LogFormat:           "json",
		ExtractionCacheTTLH: 24,
		OpenRouterModel:     "qwen/qwen2.5-32b-instruct",
		OpenRouterAppTitle:  "folio",
		LLMTimeoutSeconds:   45,
		LLMRatePerSec:       2,
		LLMBurst:            4,
		MaxUploadBytes:      15 << 20,
	}
}

// Load reads configuration in three layers: defaults, optional YAML file
// (CONFIG_FILE), then environment variables (optionally from .env).
func Load() (Config, error) {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.DBMaxConns = getEnvInt("DB_MAX_CONNS", cfg.DBMaxConns)
	cfg.DBConnectWait = getEnvInt("DB_CONNECT_WAIT_SECONDS", cfg.DBConnectWait)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = getEnv("JWT_ISSUER", cfg.JWTIssuer)
	cfg.JWTTTLMinutes = getEnvInt("JWT_TTL_MINUTES", cfg.JWTTTLMinutes)

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.ExtractionCacheTTLH = getEnvInt("EXTRACTION_CACHE_TTL_HOURS", cfg.ExtractionCacheTTLH)

	cfg.OpenRouterAPIKey = getEnv("OPENROUTER_API_KEY", cfg.OpenRouterAPIKey)
	cfg.OpenRouterBase = getEnv("OPENROUTER_BASE_URL", cfg.OpenRouterBase)
	cfg.OpenRouterModel = getEnv("OPENROUTER_MODEL", cfg.OpenRouterModel)
	cfg.OpenRouterAppTitle = getEnv("OPENROUTER_APP_TITLE", cfg.OpenRouterAppTitle)
	cfg.OpenRouterReferer = getEnv("OPENROUTER_REFERER", cfg.OpenRouterReferer)
	cfg.LLMTimeoutSeconds = getEnvInt("LLM_TIMEOUT_SECONDS", cfg.LLMTimeoutSeconds)
	cfg.LLMRatePerSec = getEnvFloat("LLM_RATE_PER_SEC", cfg.LLMRatePerSec)
	cfg.LLMBurst = getEnvInt("LLM_BURST", cfg.LLMBurst)

	cfg.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)))
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
