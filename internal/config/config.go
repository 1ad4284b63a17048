package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the app.
type Config struct {
	DatabaseURL    string
	DataDir        string
	TelegramToken  string
	TelegramChatID int64
}

// Load reads configuration from a .env file (if present) and environment
// variables, with sane defaults. Telegram settings are optional.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL:   strings.TrimSpace(os.Getenv("TASKLIST_DB")),
		DataDir:       strings.TrimSpace(os.Getenv("TASKLIST_DATA_DIR")),
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".tasklist")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = filepath.Join(cfg.DataDir, "tasklist.db")
	}

	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q", raw)
		}
		cfg.TelegramChatID = chatID
	}

	return cfg, nil
}

// AttachmentsDir is where materialized attachment copies live.
func (c Config) AttachmentsDir() string {
	return filepath.Join(c.DataDir, "attachments")
}

// SettingsPath is the user-preferences file.
func (c Config) SettingsPath() string {
	return filepath.Join(c.DataDir, "settings.yaml")
}
