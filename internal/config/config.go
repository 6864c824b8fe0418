package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config — конфигурация приложения из переменных окружения.
type Config struct {
	TelegramToken string

	SheetsBaseURL string
	SpreadsheetID string
	SheetsToken   string

	SupabaseURL string
	SupabaseKey string

	StateSync     bool
	SyncInterval  time.Duration
	StateExpiry   time.Duration
	StateFresh    time.Duration
	MemoryLimitMB uint64

	AdminChatID int64
}

// LoadConfig загружает конфигурацию из .env (если есть) и окружения.
func LoadConfig() (*Config, error) {
	// .env используется только при локальном запуске
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		SheetsBaseURL: getEnv("SHEETS_BASE_URL", "https://sheets.googleapis.com"),
		SpreadsheetID: os.Getenv("SHEETS_SPREADSHEET_ID"),
		SheetsToken:   os.Getenv("SHEETS_API_TOKEN"),
		SupabaseURL:   os.Getenv("SUPABASE_URL"),
		SupabaseKey:   os.Getenv("SUPABASE_KEY"),
		StateSync:     getBool("STATE_SYNC", true),
		SyncInterval:  getDuration("STATE_SYNC_INTERVAL", 5*time.Minute),
		StateExpiry:   getDuration("STATE_EXPIRY", 30*time.Minute),
		StateFresh:    getDuration("STATE_FRESHNESS", 24*time.Hour),
		MemoryLimitMB: getUint("MEMORY_LIMIT_MB", 256),
		AdminChatID:   getInt64("ADMIN_CHAT_ID", 0),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if cfg.StateSync && (cfg.SpreadsheetID == "" || cfg.SheetsToken == "") {
		return nil, fmt.Errorf("SHEETS_SPREADSHEET_ID and SHEETS_API_TOKEN are required when STATE_SYNC is enabled")
	}
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getUint(key string, def uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
