// Package engine implements the timer state machine. The transition
// functions in this package are pure; Engine is the shell that owns the
// single live TimerState, runs the effects those transitions request and
// publishes the results.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/deepwork/internal/domain"
	"github.com/hammamikhairi/deepwork/internal/logger"
	"github.com/hammamikhairi/deepwork/internal/storage"
	"github.com/hammamikhairi/deepwork/internal/timer"
)

// Driver is the tick source the engine arms while the clock runs.
type Driver interface {
	Arm(ctx context.Context, tick timer.TickFunc, expire func())
	Disarm()
}

// Option configures the engine.
type Option func(*Engine)

// WithDriver replaces the default one-second driver.
func WithDriver(d Driver) Option {
	return func(e *Engine) {
		e.driver = d
	}
}

// WithTickInterval sets the period of the default driver. Useful for
// tests and demos; the countdown still moves one second per tick.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.tickInterval = d
	}
}

// WithHapticTimeout bounds a single Buzz call.
func WithHapticTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.hapticTimeout = d
		}
	}
}

// Engine owns the live TimerState. Every method is safe for concurrent
// use; all mutations are serialised on one mutex.
type Engine struct {
	store         domain.PreferenceStore
	writer        *storage.Writer
	haptics       domain.Haptics
	log           *logger.Logger
	driver        Driver
	tickInterval  time.Duration
	hapticTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	buzzWG sync.WaitGroup

	mu     sync.Mutex
	state  domain.TimerState
	armGen uint64 // bumped on every arm/disarm; stale ticks compare against it
	events []chan domain.Event
	closed bool
}

// New creates an engine at the default state. Call Load to merge stored
// preferences.
func New(store domain.PreferenceStore, haptics domain.Haptics, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		haptics:       haptics,
		log:           log,
		tickInterval:  time.Second,
		hapticTimeout: 3 * time.Second,
		state:         domain.DefaultState(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.driver == nil {
		e.driver = timer.New(log.Named("timer"), timer.WithInterval(e.tickInterval))
	}
	e.writer = storage.NewWriter(store, log.Named("prefs"))
	e.ctx, e.cancel = context.WithCancel(context.Background())
	return e
}

// Load reads the stored preferences once and merges them into the state.
// Missing or unreadable values fall back to defaults.
func (e *Engine) Load(ctx context.Context) {
	prefs := storage.LoadPreferences(ctx, e.store, e.log)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = ApplyPreferences(e.state, prefs)
	e.log.Info("preferences loaded (mode=%s, background=%d, power_save=%v)",
		e.state.Mode, e.state.SelectedBackgroundIndex, e.state.PowerSaveMode)
	e.emitLocked(domain.Event{Type: domain.EventState, State: e.state, At: time.Now()})
}

// State returns the current snapshot.
func (e *Engine) State() domain.TimerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Subscribe registers an observer channel. Slow observers miss events
// rather than stall the engine.
func (e *Engine) Subscribe(buffer int) <-chan domain.Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan domain.Event, buffer)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(ch)
		return ch
	}
	e.events = append(e.events, ch)
	return ch
}

// Start sets the clock running. No-op while already running.
func (e *Engine) Start() { e.do("start", Start) }

// Pause stops the clock.
func (e *Engine) Pause() { e.do("pause", Pause) }

// Toggle flips between running and paused.
func (e *Engine) Toggle() { e.do("toggle", Toggle) }

// Reset returns to a fresh focus phase in the current mode.
func (e *Engine) Reset() { e.do("reset", Reset) }

// Skip completes the current phase immediately.
func (e *Engine) Skip() { e.do("skip", Skip) }

// SwitchMode starts a fresh focus phase in mode and persists it.
func (e *Engine) SwitchMode(mode domain.Mode) {
	e.do("switch_mode", func(s domain.TimerState) Transition { return SwitchMode(s, mode) })
}

// SetBackgroundIndex selects a catalog background.
func (e *Engine) SetBackgroundIndex(index int) {
	e.do("set_background", func(s domain.TimerState) Transition { return SetBackgroundIndex(s, index) })
}

// SetCustomBackground selects a user image.
func (e *Engine) SetCustomBackground(uri string) {
	e.do("set_custom_background", func(s domain.TimerState) Transition { return SetCustomBackground(s, uri) })
}

// NextBackground advances to the next catalog background.
func (e *Engine) NextBackground() {
	e.do("next_background", func(s domain.TimerState) Transition {
		return SetBackgroundIndex(s, domain.NextBackgroundIndex(s.SelectedBackgroundIndex))
	})
}

// TogglePowerSaveMode flips the power-save flag and persists it.
func (e *Engine) TogglePowerSaveMode() { e.do("power_save", TogglePowerSaveMode) }

// Dispatch runs the operation named by cmd. Commands the engine does not
// own (quit, unknown) return domain.ErrUnknownCommand.
func (e *Engine) Dispatch(cmd domain.Command) error {
	switch cmd {
	case domain.CommandToggle:
		e.Toggle()
	case domain.CommandStart:
		e.Start()
	case domain.CommandPause:
		e.Pause()
	case domain.CommandReset:
		e.Reset()
	case domain.CommandSkip:
		e.Skip()
	case domain.CommandModePomodoro:
		e.SwitchMode(domain.ModePomodoro)
	case domain.CommandModeDeepWork:
		e.SwitchMode(domain.ModeDeepWork)
	case domain.CommandSwitchMode:
		e.do("switch_mode", func(s domain.TimerState) Transition {
			if s.Mode == domain.ModeDeepWork {
				return SwitchMode(s, domain.ModePomodoro)
			}
			return SwitchMode(s, domain.ModeDeepWork)
		})
	case domain.CommandNextBackground:
		e.NextBackground()
	case domain.CommandPowerSave:
		e.TogglePowerSaveMode()
	default:
		return domain.ErrUnknownCommand
	}
	return nil
}

// Close stops the clock, waits for pending preference writes and
// in-flight feedback, and closes every subscriber channel.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.disarmLocked()
	events := e.events
	e.events = nil
	e.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}

	err := e.writer.Close(ctx)

	buzzDone := make(chan struct{})
	go func() {
		e.buzzWG.Wait()
		close(buzzDone)
	}()
	select {
	case <-buzzDone:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	e.cancel()
	return err
}

// Flush waits until queued preference writes have been attempted.
func (e *Engine) Flush(ctx context.Context) error {
	return e.writer.Flush(ctx)
}

func (e *Engine) do(name string, fn func(domain.TimerState) Transition) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		e.log.Debug("ignoring %s after close", name)
		return
	}
	before := e.state
	e.applyLocked(fn(e.state))
	e.log.Debug("%s: %s/%s %s -> %s/%s %s running=%v sessions=%d",
		name, before.Mode, before.Phase, before.FormattedRemaining(),
		e.state.Mode, e.state.Phase, e.state.FormattedRemaining(),
		e.state.IsRunning, e.state.CompletedFocusSessions)
}

// applyLocked installs t.State and carries out its effects in order.
func (e *Engine) applyLocked(t Transition) {
	completed := e.state.Phase
	e.state = t.State
	now := time.Now()

	for _, eff := range t.Effects {
		switch eff.Type {
		case domain.EffectArm:
			e.armLocked()
		case domain.EffectDisarm:
			e.disarmLocked()
		case domain.EffectPhaseComplete:
			e.log.Info("phase %s complete, next %s (%s)", completed, e.state.Phase, e.state.FormattedRemaining())
			e.emitLocked(domain.Event{Type: domain.EventPhaseComplete, State: e.state, Completed: completed, At: now})
			e.buzz()
		case domain.EffectPersist:
			e.writer.Set(eff.Key, eff.Value)
		case domain.EffectForget:
			e.writer.Delete(eff.Key)
		}
	}

	e.emitLocked(domain.Event{Type: domain.EventState, State: e.state, At: now})
}

func (e *Engine) armLocked() {
	e.armGen++
	gen := e.armGen
	e.driver.Arm(e.ctx,
		func() bool { return e.onTick(gen) },
		func() { e.onExpire(gen) },
	)
}

func (e *Engine) disarmLocked() {
	e.armGen++
	e.driver.Disarm()
}

// onTick is the driver's tick callback for the cycle armed as gen. A tick
// from a cancelled cycle is dropped so it cannot eat into a new phase.
func (e *Engine) onTick(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.armGen || e.closed {
		return false
	}
	e.state = Tick(e.state).State
	e.emitLocked(domain.Event{Type: domain.EventState, State: e.state, At: time.Now()})
	return Expired(e.state)
}

func (e *Engine) onExpire(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.armGen || e.closed || !Expired(e.state) {
		return
	}
	e.applyLocked(CompletePhase(e.state))
}

// buzz fires the haptic signal without blocking the caller. Failures are
// logged and dropped.
func (e *Engine) buzz() {
	if e.haptics == nil {
		return
	}
	e.buzzWG.Add(1)
	go func() {
		defer e.buzzWG.Done()
		defer func() {
			if r := recover(); r != nil {
				e.log.Error("haptics panicked: %v", r)
			}
		}()
		ctx, cancel := context.WithTimeout(e.ctx, e.hapticTimeout)
		defer cancel()
		if err := e.haptics.Buzz(ctx); err != nil {
			e.log.Warn("haptics: %v", err)
		}
	}()
}

func (e *Engine) emitLocked(event domain.Event) {
	for _, ch := range e.events {
		select {
		case ch <- event:
		default:
		}
	}
}
