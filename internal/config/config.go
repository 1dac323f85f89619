package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// MemoryDBPath selects in-memory repositories instead of SQLite.
const MemoryDBPath = "memory"

// Supported LLM providers for the substitution fallback.
const (
	ProviderNone   = ""
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	ExpiryHorizonDays    int
	DefaultShelfLifeDays int
	RecommendTopK        int
	SubstitutionsPath    string

	LLMProvider  string
	GeminiAPIKey string
	GroqAPIKey   string

	// APISecret enables bearer auth on mutating routes when set.
	APISecret          string
	CORSAllowedOrigins []string

	// Telegram Config
	TelegramBotToken    string
	TelegramWebhookURL  string
	TelegramAllowUserID int64
}

// UsesMemory reports whether the in-memory repositories are selected.
func (c *Config) UsesMemory() bool {
	return c.DBPath == MemoryDBPath
}

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func NewFromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DBPath:            getEnv("GROCERY_DB_PATH", "data/grocery.db"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		SubstitutionsPath: os.Getenv("SUBSTITUTIONS_PATH"),
		LLMProvider:       strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GroqAPIKey:        os.Getenv("GROQ_API_KEY"),
		APISecret:         os.Getenv("API_SECRET"),

		// Telegram Config (Optional for the API, required for the bot)
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
	}

	var err error
	if cfg.ExpiryHorizonDays, err = getInt("EXPIRY_HORIZON_DAYS", 7); err != nil {
		return nil, err
	}
	if cfg.DefaultShelfLifeDays, err = getInt("DEFAULT_SHELF_LIFE_DAYS", 7); err != nil {
		return nil, err
	}
	if cfg.RecommendTopK, err = getInt("RECOMMEND_TOP_K", 5); err != nil {
		return nil, err
	}

	if v := os.Getenv("TELEGRAM_ALLOW_USER_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ALLOW_USER_ID must be an integer")
		}
		cfg.TelegramAllowUserID = id
	}

	for _, origin := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ExpiryHorizonDays < 0 {
		return fmt.Errorf("EXPIRY_HORIZON_DAYS must not be negative")
	}
	if c.DefaultShelfLifeDays < 0 {
		return fmt.Errorf("DEFAULT_SHELF_LIFE_DAYS must not be negative")
	}
	if c.RecommendTopK <= 0 {
		return fmt.Errorf("RECOMMEND_TOP_K must be positive")
	}

	switch c.LLMProvider {
	case ProviderNone:
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case ProviderGroq:
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}
