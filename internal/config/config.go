// Package config loads service configuration from defaults and MINUTE_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Server  ServerConfig
	OpenAI  OpenAIConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	TranscribeModel string
	SummaryModel    string
}

type StorageConfig struct {
	DataDir        string
	UploadDir      string
	MaxUploadBytes int64
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	dataDir := defaultDataDir()
	return Config{
		Server: ServerConfig{
			Port: 4100,
		},
		OpenAI: OpenAIConfig{
			BaseURL:         "https://api.openai.com/v1",
			TranscribeModel: "whisper-1",
			SummaryModel:    "gpt-4o-mini",
		},
		Storage: StorageConfig{
			DataDir:        dataDir,
			UploadDir:      filepath.Join(dataDir, "uploads"),
			MaxUploadBytes: 50 << 20, // 50MB
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "minute")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".minute"
	}
	return filepath.Join(home, ".local", "share", "minute")
}

// Load reads configuration from defaults overridden by MINUTE_* environment
// variables. The OpenAI API key is required.
func Load() (Config, error) {
	return loadWith(os.Getenv)
}

// loadWith is Load with an injectable environment lookup (used by tests).
func loadWith(getenv func(string) string) (Config, error) {
	cfg := defaults()

	if v := getenv("MINUTE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MINUTE_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := getenv("MINUTE_OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := getenv("MINUTE_OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := getenv("MINUTE_TRANSCRIBE_MODEL"); v != "" {
		cfg.OpenAI.TranscribeModel = v
	}
	if v := getenv("MINUTE_SUMMARY_MODEL"); v != "" {
		cfg.OpenAI.SummaryModel = v
	}
	if v := getenv("MINUTE_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
		cfg.Storage.UploadDir = filepath.Join(v, "uploads")
	}
	if v := getenv("MINUTE_UPLOAD_DIR"); v != "" {
		cfg.Storage.UploadDir = v
	}
	if v := getenv("MINUTE_MAX_UPLOAD_MB"); v != "" {
		mb, err := strconv.ParseInt(v, 10, 64)
		if err != nil || mb <= 0 {
			return Config{}, fmt.Errorf("invalid MINUTE_MAX_UPLOAD_MB %q", v)
		}
		cfg.Storage.MaxUploadBytes = mb << 20
	}
	if v := getenv("MINUTE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if cfg.OpenAI.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: OpenAI API key. Set it via environment variable MINUTE_OPENAI_API_KEY")
	}

	return cfg, nil
}
