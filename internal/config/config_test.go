package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hammamikhairi/deepwork/internal/logger"
)

var envKeys = []string{
	"DEEPWORK_PREFS_BACKEND",
	"DEEPWORK_PREFS_PATH",
	"DEEPWORK_LOG_LEVEL",
	"DEEPWORK_LOG_FILE",
	"DEEPWORK_FEEDBACK",
	"DEEPWORK_TICK",
	"DEEPWORK_VOICE",
	"DEEPWORK_WHISPER_BIN",
	"DEEPWORK_WHISPER_MODEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	if cfg.PrefsBackend != BackendYAML || cfg.PrefsPath != "" {
		t.Errorf("prefs = %s %q", cfg.PrefsBackend, cfg.PrefsPath)
	}
	if cfg.LogLevel != logger.LevelNormal || cfg.LogFile != ".deepwork-logs/deepwork.log" {
		t.Errorf("logging = %s %q", cfg.LogLevel, cfg.LogFile)
	}
	if cfg.Feedback != FeedbackAudio || cfg.TickInterval != time.Second || cfg.Voice {
		t.Errorf("feedback=%s tick=%s voice=%v", cfg.Feedback, cfg.TickInterval, cfg.Voice)
	}
	if cfg.WhisperBin != "whisper-cli" {
		t.Errorf("whisper bin = %q", cfg.WhisperBin)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPWORK_PREFS_BACKEND", "SQLite")
	t.Setenv("DEEPWORK_PREFS_PATH", "/tmp/p.db")
	t.Setenv("DEEPWORK_LOG_LEVEL", "debug")
	t.Setenv("DEEPWORK_FEEDBACK", "bell")
	t.Setenv("DEEPWORK_TICK", "250ms")
	t.Setenv("DEEPWORK_VOICE", "true")

	cfg := Load()
	if cfg.PrefsBackend != BackendSQLite || cfg.PrefsPath != "/tmp/p.db" {
		t.Errorf("prefs = %s %q", cfg.PrefsBackend, cfg.PrefsPath)
	}
	if cfg.LogLevel != logger.LevelVerbose {
		t.Errorf("log level = %s", cfg.LogLevel)
	}
	if cfg.Feedback != FeedbackBell || cfg.TickInterval != 250*time.Millisecond || !cfg.Voice {
		t.Errorf("feedback=%s tick=%s voice=%v", cfg.Feedback, cfg.TickInterval, cfg.Voice)
	}
}

func TestLoadIgnoresGarbage(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPWORK_PREFS_BACKEND", "postgres")
	t.Setenv("DEEPWORK_FEEDBACK", "fireworks")
	t.Setenv("DEEPWORK_TICK", "-1s")
	t.Setenv("DEEPWORK_VOICE", "maybe")

	cfg := Load()
	if cfg.PrefsBackend != BackendYAML || cfg.Feedback != FeedbackAudio {
		t.Errorf("choices = %s %s", cfg.PrefsBackend, cfg.Feedback)
	}
	if cfg.TickInterval != time.Second || cfg.Voice {
		t.Errorf("tick=%s voice=%v", cfg.TickInterval, cfg.Voice)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{PrefsBackend: "etcd", Feedback: FeedbackNone}
	if err := cfg.Validate(); err == nil {
		t.Error("expected backend error")
	}
	cfg = Config{PrefsBackend: BackendMemory, Feedback: "lasers"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected feedback error")
	}
}

func TestDefaultFileName(t *testing.T) {
	if got := DefaultFileName(BackendSQLite); got != "settings.db" {
		t.Errorf("sqlite = %s", got)
	}
	if got := DefaultFileName(BackendYAML); got != "settings.yaml" {
		t.Errorf("yaml = %s", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("DEEPWORK_FEEDBACK=none\nDEEPWORK_WHISPER_BIN=/opt/whisper\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set, and
	// clearEnv set them to "". Unset the two we expect to be loaded.
	os.Unsetenv("DEEPWORK_FEEDBACK")
	os.Unsetenv("DEEPWORK_WHISPER_BIN")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	cfg := Load()
	if cfg.Feedback != FeedbackNone || cfg.WhisperBin != "/opt/whisper" {
		t.Errorf("feedback=%s bin=%s", cfg.Feedback, cfg.WhisperBin)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing file should be ignored: %v", err)
	}
}
