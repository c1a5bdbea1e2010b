// Package domain holds the timer types shared by every layer: modes,
// phases, the TimerState snapshot and its derived views, preference keys,
// and the ports the core depends on.
package domain

import "time"

// Phase durations.
const (
	FocusDuration      = 25 * time.Minute
	DeepWorkDuration   = 60 * time.Minute
	ShortBreakDuration = 5 * time.Minute
	LongBreakDuration  = 15 * time.Minute

	// SessionsBeforeLongBreak is the number of completed focus phases
	// that earn a long break instead of a short one.
	SessionsBeforeLongBreak = 4

	// TickStep is the amount of countdown consumed by a single tick.
	TickStep = time.Second
)

// Mode selects the focus length and whether sessions are counted on screen.
type Mode int

const (
	ModePomodoro Mode = iota
	ModeDeepWork
)

// String returns a human-readable mode.
func (m Mode) String() string {
	switch m {
	case ModePomodoro:
		return "pomodoro"
	case ModeDeepWork:
		return "deep_work"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModePomodoro || m == ModeDeepWork
}

// FocusDuration returns the full focus length for the mode.
func (m Mode) FocusDuration() time.Duration {
	if m == ModeDeepWork {
		return DeepWorkDuration
	}
	return FocusDuration
}

// Phase is where the timer is within the work/rest cycle.
type Phase int

const (
	PhaseFocus Phase = iota
	PhaseShortBreak
	PhaseLongBreak
)

// String returns a human-readable phase.
func (p Phase) String() string {
	switch p {
	case PhaseFocus:
		return "focus"
	case PhaseShortBreak:
		return "short_break"
	case PhaseLongBreak:
		return "long_break"
	default:
		return "unknown"
	}
}

// NominalDuration returns the full length of a phase in the given mode.
func NominalDuration(mode Mode, phase Phase) time.Duration {
	switch phase {
	case PhaseShortBreak:
		return ShortBreakDuration
	case PhaseLongBreak:
		return LongBreakDuration
	default:
		return mode.FocusDuration()
	}
}
