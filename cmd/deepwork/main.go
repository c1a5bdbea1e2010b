// DeepWork is a terminal focus timer with Pomodoro and Deep Work modes.
//
// Usage:
//
//	deepwork [-verbose] [-quiet] [-backend yaml|sqlite|memory] [-prefs path]
//	         [-feedback audio|bell|none] [-voice] [-log-file path]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"time"

	"github.com/hammamikhairi/deepwork/internal/command"
	"github.com/hammamikhairi/deepwork/internal/config"
	"github.com/hammamikhairi/deepwork/internal/display"
	"github.com/hammamikhairi/deepwork/internal/domain"
	"github.com/hammamikhairi/deepwork/internal/engine"
	"github.com/hammamikhairi/deepwork/internal/haptic"
	"github.com/hammamikhairi/deepwork/internal/logger"
	"github.com/hammamikhairi/deepwork/internal/storage"
	"github.com/hammamikhairi/deepwork/internal/voice"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	cfg := config.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", cfg.LogFile, "file to write logs to (use \"stderr\" to log to console)")
	backend := flag.String("backend", cfg.PrefsBackend, "preference store: yaml, sqlite or memory")
	prefsPath := flag.String("prefs", cfg.PrefsPath, "preference file (default: per-user config dir)")
	feedback := flag.String("feedback", cfg.Feedback, "phase-complete feedback: audio, bell or none")
	voiceOn := flag.Bool("voice", cfg.Voice, "enable voice commands via local Whisper STT")
	customBg := flag.String("background-image", "", "use this image URI as a custom background")
	flag.Parse()

	cfg.LogFile = *logFile
	cfg.PrefsBackend = *backend
	cfg.PrefsPath = *prefsPath
	cfg.Feedback = *feedback
	cfg.Voice = *voiceOn
	if *verbose {
		cfg.LogLevel = logger.LevelVerbose
	}
	if *quiet {
		cfg.LogLevel = logger.LevelOff
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	// Logs go to a file by default so the UI stays clean.
	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" && cfg.LogFile != "stderr" {
		if dir := filepath.Dir(cfg.LogFile); dir != "" && dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.LogFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// The whisper transcriber logs through the standard library logger.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(cfg.LogLevel, logOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore := openStore(cfg, log.Named("store"))
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("closing preference store: %v", err)
		}
	}()

	eng := engine.New(store, buildHaptics(cfg.Feedback, log.Named("haptic")), log.Named("engine"),
		engine.WithTickInterval(cfg.TickInterval),
	)
	eng.Load(ctx)
	if *customBg != "" {
		eng.SetCustomBackground(*customBg)
	}

	parser := command.NewParser(log.Named("command"))
	ui := display.NewUI(eng, parser, eng.Subscribe(64))

	if cfg.Voice {
		if _, err := os.Stat(cfg.WhisperModel); err != nil {
			fmt.Fprintf(os.Stderr, "error: whisper model not found at %s\n", cfg.WhisperModel)
			os.Exit(1)
		}
		_ = os.MkdirAll(".deepwork-stt", 0o755)
		listener := voice.NewListener(cfg.WhisperBin, cfg.WhisperModel, log.Named("voice"))
		go listener.Run(ctx)
		go relayVoice(ctx, listener.C(), parser, eng, ui, log)
		log.Info("voice input enabled (bin=%s, model=%s)", cfg.WhisperBin, cfg.WhisperModel)
	}

	subtitle := "space to start · q to quit"
	if cfg.Voice {
		subtitle = "say \"hey timer\" followed by a command, or use the keys"
	}
	fmt.Print(display.RenderBanner(subtitle))

	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer closeCancel()
	if err := eng.Close(closeCtx); err != nil {
		log.Error("engine shutdown: %v", err)
	}
}

// openStore builds the preference store named by cfg. The returned func
// releases it. A store that cannot be opened is replaced by an in-memory
// one: preferences are advisory and never block startup.
func openStore(cfg config.Config, log *logger.Logger) (domain.PreferenceStore, func() error) {
	noop := func() error { return nil }
	if cfg.PrefsBackend == config.BackendMemory {
		return storage.NewMemoryStore(log), noop
	}

	path := cfg.PrefsPath
	if path == "" {
		p, err := storage.DefaultPath(config.AppName, config.DefaultFileName(cfg.PrefsBackend))
		if err != nil {
			log.Warn("no config dir, preferences will not persist: %v", err)
			return storage.NewMemoryStore(log), noop
		}
		path = p
	}

	switch cfg.PrefsBackend {
	case config.BackendSQLite:
		s, err := storage.OpenSQLite(path, log)
		if err != nil {
			log.Warn("opening %s: %v, preferences will not persist", path, err)
			return storage.NewMemoryStore(log), noop
		}
		return s, s.Close
	default:
		s, err := storage.OpenYAML(path, log)
		if err != nil {
			log.Warn("opening %s: %v, preferences will not persist", path, err)
			return storage.NewMemoryStore(log), noop
		}
		log.Info("preferences file: %s", s.Path())
		return s, noop
	}
}

// buildHaptics picks the phase-complete feedback. Audio falls back to the
// terminal bell when there is no output device.
func buildHaptics(kind string, log *logger.Logger) domain.Haptics {
	switch kind {
	case config.FeedbackNone:
		return haptic.NewNoOp(log)
	case config.FeedbackBell:
		return haptic.NewBell(os.Stdout)
	}
	tone, err := haptic.NewTone(haptic.DefaultPattern, log)
	if err != nil {
		if errors.Is(err, domain.ErrNoAudio) {
			log.Warn("%v, using terminal bell", err)
		} else {
			log.Error("audio feedback: %v, using terminal bell", err)
		}
		return haptic.NewBell(os.Stdout)
	}
	return tone
}

// relayVoice turns heard text into engine commands.
func relayVoice(ctx context.Context, heard <-chan string, parser *command.Parser, eng *engine.Engine, ui *display.UI, log *logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-heard:
			ui.PrintVoice(text)
			cmd, err := parser.Parse(text)
			if err != nil {
				log.Info("voice: %v", err)
				continue
			}
			if cmd == domain.CommandQuit {
				ui.Quit()
				return
			}
			if err := eng.Dispatch(cmd); err != nil {
				log.Warn("voice: %s: %v", cmd, err)
			}
		}
	}
}
