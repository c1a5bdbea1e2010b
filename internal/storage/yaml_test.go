package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hammamikhairi/deepwork/internal/domain"
	"github.com/hammamikhairi/deepwork/internal/logger"
)

func TestYAMLStore(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store, err := OpenYAML(filepath.Join(t.TempDir(), "deepwork", "settings.yaml"), log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	exerciseStore(t, store)
}

func TestYAMLStoreSurvivesReopen(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.yaml")

	store, err := OpenYAML(path, log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Set(ctx, domain.PrefCustomBgURI, "file:///tmp/bg.png"); err != nil {
		t.Fatalf("set uri: %v", err)
	}
	if err := store.Set(ctx, domain.PrefBackgroundIndex, "-1"); err != nil {
		t.Fatalf("set index: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.Contains(string(raw), "custom_bg_uri") {
		t.Fatalf("expected key in yaml file, got:\n%s", raw)
	}

	reopened, err := OpenYAML(path, log)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got, _ := reopened.Get(ctx, domain.PrefBackgroundIndex); got != "-1" {
		t.Fatalf("expected -1 after reopen, got %q", got)
	}
	if got, _ := reopened.Get(ctx, domain.PrefCustomBgURI); got != "file:///tmp/bg.png" {
		t.Fatalf("expected uri after reopen, got %q", got)
	}
}

func TestYAMLStoreNonMappingStartsEmpty(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("- not\n- a\n- mapping\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := OpenYAML(path, log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.Get(ctx, domain.PrefLastMode); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Set(ctx, domain.PrefLastMode, "1"); err != nil {
		t.Fatalf("set after bad file: %v", err)
	}
}

func TestYAMLStoreInvalidSyntaxStartsEmpty(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("background_index: [unclosed\n\t:::"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := OpenYAML(path, log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := LoadPreferences(context.Background(), store, log); got != domain.DefaultPreferences() {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestYAMLStoreKeepsValidEntries(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	raw := "background_index: \"3\"\npower_save_mode: {nested: 1}\nlast_mode: 1\ncustom_bg_uri:\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store, err := OpenYAML(path, log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got, _ := store.Get(ctx, domain.PrefBackgroundIndex); got != "3" {
		t.Fatalf("background_index = %q, want 3", got)
	}
	if got, _ := store.Get(ctx, domain.PrefLastMode); got != "1" {
		t.Fatalf("last_mode = %q, want 1", got)
	}
	for _, key := range []domain.PrefKey{domain.PrefPowerSaveMode, domain.PrefCustomBgURI} {
		if _, err := store.Get(ctx, key); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound, got %v", key, err)
		}
	}

	prefs := LoadPreferences(ctx, store, log)
	if prefs.BackgroundIndex != 3 || prefs.LastMode != domain.ModeDeepWork || prefs.PowerSaveMode {
		t.Fatalf("unexpected preferences %+v", prefs)
	}
}

func TestYAMLStoreEmptyFile(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := OpenYAML(path, log)
	if err != nil {
		t.Fatalf("open empty file: %v", err)
	}
	if err := store.Set(context.Background(), domain.PrefLastMode, "1"); err != nil {
		t.Fatalf("set after empty open: %v", err)
	}
}
