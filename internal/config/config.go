// Package config loads service configuration from an optional .env file
// and JOBQUEST_* environment variables. Environment variables always win
// over .env values; there are no process-wide singletons, callers pass
// the loaded Config down to the components they construct.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig
	Storage       StorageConfig
	OpenAI        OpenAIConfig
	KnowledgeBase KnowledgeBaseConfig
	S3            S3Config
	Log           LogConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// KnowledgeBaseConfig points at the retrieval endpoint. An empty BaseURL
// or ID disables the retrieval path; recommendations then come from the
// precomputed job bank and the fallback list.
type KnowledgeBaseConfig struct {
	BaseURL    string
	ID         string
	RetryDelay time.Duration
}

// S3Config selects the region for job document fetches. When the static
// key pair is unset, credentials come from the standard AWS environment
// and config chain.
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type LogConfig struct {
	Level string
}

// SlogLevel maps the configured level name onto slog. Unrecognized names
// fall back to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaults() Config {
	return Config{
		Server:  ServerConfig{Port: 8080},
		Storage: StorageConfig{DataDir: defaultDataDir()},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		KnowledgeBase: KnowledgeBaseConfig{RetryDelay: 5 * time.Second},
		S3:            S3Config{Region: "us-east-1"},
		Log:           LogConfig{Level: "info"},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".jobquest")
}

// Load reads the given .env files (default ".env" when none given, a
// missing file is not an error) and applies environment overrides on top
// of the defaults.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return fromEnv()
}

func fromEnv() (Config, error) {
	cfg := defaults()

	cfg.Storage.DataDir = envString("JOBQUEST_DATA_DIR", cfg.Storage.DataDir)
	cfg.OpenAI.BaseURL = envString("JOBQUEST_OPENAI_BASE_URL", cfg.OpenAI.BaseURL)
	cfg.OpenAI.Model = envString("JOBQUEST_OPENAI_MODEL", cfg.OpenAI.Model)
	cfg.KnowledgeBase.BaseURL = envString("JOBQUEST_KB_URL", cfg.KnowledgeBase.BaseURL)
	cfg.KnowledgeBase.ID = envString("JOBQUEST_KB_ID", cfg.KnowledgeBase.ID)
	cfg.S3.Region = envString("JOBQUEST_S3_REGION", cfg.S3.Region)
	cfg.S3.AccessKeyID = envString("JOBQUEST_S3_ACCESS_KEY_ID", cfg.S3.AccessKeyID)
	cfg.S3.SecretAccessKey = envString("JOBQUEST_S3_SECRET_ACCESS_KEY", cfg.S3.SecretAccessKey)
	cfg.Log.Level = envString("JOBQUEST_LOG_LEVEL", cfg.Log.Level)

	// The plain OPENAI_API_KEY is honored so the same environment works
	// for other OpenAI tooling.
	cfg.OpenAI.APIKey = envString("JOBQUEST_OPENAI_API_KEY", os.Getenv("OPENAI_API_KEY"))

	port, err := envInt("JOBQUEST_PORT", cfg.Server.Port)
	if err != nil {
		return Config{}, err
	}
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid JOBQUEST_PORT: %d", port)
	}
	cfg.Server.Port = port

	delay, err := envDuration("JOBQUEST_KB_RETRY_DELAY", cfg.KnowledgeBase.RetryDelay)
	if err != nil {
		return Config{}, err
	}
	cfg.KnowledgeBase.RetryDelay = delay

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
