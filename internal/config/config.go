// Package config reads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/deepwork/internal/logger"
)

// AppName names the per-user config directory.
const AppName = "deepwork"

// Preference backends.
const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Phase-complete feedback kinds.
const (
	FeedbackAudio = "audio"
	FeedbackBell  = "bell"
	FeedbackNone  = "none"
)

// Config holds the runtime settings for the deepwork binary.
type Config struct {
	PrefsBackend string
	PrefsPath    string // empty means the per-user default for the backend
	LogLevel     logger.Level
	LogFile      string
	Feedback     string
	TickInterval time.Duration
	Voice        bool
	WhisperBin   string
	WhisperModel string
}

// LoadDotEnv loads the given .env files (default ".env") into the
// environment without overriding variables that are already set. A
// missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Load reads Config from the environment, using defaults for unset or invalid values.
func Load() Config {
	return Config{
		PrefsBackend: getEnvChoice("DEEPWORK_PREFS_BACKEND", BackendYAML, BackendYAML, BackendSQLite, BackendMemory),
		PrefsPath:    getEnv("DEEPWORK_PREFS_PATH", ""),
		LogLevel:     logger.ParseLevel(getEnv("DEEPWORK_LOG_LEVEL", "normal")),
		LogFile:      getEnv("DEEPWORK_LOG_FILE", ".deepwork-logs/deepwork.log"),
		Feedback:     getEnvChoice("DEEPWORK_FEEDBACK", FeedbackAudio, FeedbackAudio, FeedbackBell, FeedbackNone),
		TickInterval: getEnvDuration("DEEPWORK_TICK", time.Second),
		Voice:        getEnvBool("DEEPWORK_VOICE", false),
		WhisperBin:   getEnv("DEEPWORK_WHISPER_BIN", "whisper-cli"),
		WhisperModel: getEnv("DEEPWORK_WHISPER_MODEL", "bin/ggml-small.bin"),
	}
}

// DefaultFileName is the preference file name used for backend.
func DefaultFileName(backend string) string {
	if backend == BackendSQLite {
		return "settings.db"
	}
	return "settings.yaml"
}

// Validate rejects values a flag may have introduced after Load.
func (c Config) Validate() error {
	switch c.PrefsBackend {
	case BackendYAML, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown preference backend %q", c.PrefsBackend)
	}
	switch c.Feedback {
	case FeedbackAudio, FeedbackBell, FeedbackNone:
	default:
		return fmt.Errorf("unknown feedback %q", c.Feedback)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvChoice(key, fallback string, allowed ...string) string {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return fallback
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
