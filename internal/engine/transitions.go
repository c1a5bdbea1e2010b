package engine

import (
	"github.com/hammamikhairi/deepwork/internal/domain"
)

// Transition is the result of applying a command to a state: the
// replacement state plus the side effects the shell must carry out, in
// order.
type Transition struct {
	State   domain.TimerState
	Effects []domain.Effect
}

func stay(s domain.TimerState) Transition {
	return Transition{State: s}
}

// Start sets the clock running. It does not touch the remaining time.
func Start(s domain.TimerState) Transition {
	if s.IsRunning {
		return stay(s)
	}
	s.IsRunning = true
	return Transition{State: s, Effects: []domain.Effect{{Type: domain.EffectArm}}}
}

// Pause stops the clock. Pausing a stopped clock still disarms, which is
// harmless.
func Pause(s domain.TimerState) Transition {
	s.IsRunning = false
	return Transition{State: s, Effects: []domain.Effect{{Type: domain.EffectDisarm}}}
}

// Toggle pauses a running clock and starts a stopped one.
func Toggle(s domain.TimerState) Transition {
	if s.IsRunning {
		return Pause(s)
	}
	return Start(s)
}

// Reset returns to a fresh focus phase for the current mode.
func Reset(s domain.TimerState) Transition {
	s.Phase = domain.PhaseFocus
	s.IsRunning = false
	s.CompletedFocusSessions = 0
	s.TimeRemaining = s.Mode.FocusDuration()
	return Transition{State: s, Effects: []domain.Effect{{Type: domain.EffectDisarm}}}
}

// Skip ends the current phase immediately.
func Skip(s domain.TimerState) Transition {
	next := CompletePhase(s)
	effects := make([]domain.Effect, 0, len(next.Effects)+1)
	effects = append(effects, domain.Effect{Type: domain.EffectDisarm})
	effects = append(effects, next.Effects...)
	return Transition{State: next.State, Effects: effects}
}

// SwitchMode starts a fresh focus phase in mode and remembers it.
func SwitchMode(s domain.TimerState, mode domain.Mode) Transition {
	if !mode.Valid() {
		mode = domain.ModePomodoro
	}
	s.Mode = mode
	s.Phase = domain.PhaseFocus
	s.IsRunning = false
	s.CompletedFocusSessions = 0
	s.TimeRemaining = mode.FocusDuration()
	return Transition{State: s, Effects: []domain.Effect{
		{Type: domain.EffectDisarm},
		domain.Persist(domain.PrefLastMode, domain.EncodeInt(int(mode))),
	}}
}

// SetBackgroundIndex selects a catalog background and drops any custom one.
func SetBackgroundIndex(s domain.TimerState, index int) Transition {
	s.SelectedBackgroundIndex = index
	s.CustomBackgroundURI = ""
	return Transition{State: s, Effects: []domain.Effect{
		domain.Persist(domain.PrefBackgroundIndex, domain.EncodeInt(index)),
		domain.Forget(domain.PrefCustomBgURI),
	}}
}

// SetCustomBackground selects a user-picked image.
func SetCustomBackground(s domain.TimerState, uri string) Transition {
	s.SelectedBackgroundIndex = domain.CustomBackgroundIndex
	s.CustomBackgroundURI = uri
	return Transition{State: s, Effects: []domain.Effect{
		domain.Persist(domain.PrefBackgroundIndex, domain.EncodeInt(domain.CustomBackgroundIndex)),
		domain.Persist(domain.PrefCustomBgURI, uri),
	}}
}

// TogglePowerSaveMode flips the display-only power-save flag.
func TogglePowerSaveMode(s domain.TimerState) Transition {
	s.PowerSaveMode = !s.PowerSaveMode
	return Transition{State: s, Effects: []domain.Effect{
		domain.Persist(domain.PrefPowerSaveMode, domain.EncodeBool(s.PowerSaveMode)),
	}}
}

// Tick consumes one TickStep of a running countdown, never going below
// zero. A stopped clock is left alone.
func Tick(s domain.TimerState) Transition {
	if !s.IsRunning || s.TimeRemaining <= 0 {
		return stay(s)
	}
	s.TimeRemaining -= domain.TickStep
	if s.TimeRemaining < 0 {
		s.TimeRemaining = 0
	}
	return stay(s)
}

// Expired reports whether a running countdown has reached zero and the
// phase must be completed.
func Expired(s domain.TimerState) bool {
	return s.IsRunning && s.TimeRemaining <= 0
}

// CompletePhase moves to the next phase and signals the boundary. The
// clock is always stopped afterwards.
func CompletePhase(s domain.TimerState) Transition {
	switch s.Phase {
	case domain.PhaseFocus:
		sessions := s.CompletedFocusSessions + 1
		if sessions >= domain.SessionsBeforeLongBreak {
			s.Phase = domain.PhaseLongBreak
			s.TimeRemaining = domain.LongBreakDuration
			s.CompletedFocusSessions = 0
		} else {
			s.Phase = domain.PhaseShortBreak
			s.TimeRemaining = domain.ShortBreakDuration
			s.CompletedFocusSessions = sessions
		}
	default:
		s.Phase = domain.PhaseFocus
		s.TimeRemaining = s.Mode.FocusDuration()
	}
	s.IsRunning = false
	return Transition{State: s, Effects: []domain.Effect{{Type: domain.EffectPhaseComplete}}}
}

// ApplyPreferences merges loaded preferences into s. The last mode is only
// restored while the clock is still untouched; once the user has started
// or switched, their choice wins over the stored one.
func ApplyPreferences(s domain.TimerState, prefs domain.Preferences) domain.TimerState {
	s.SelectedBackgroundIndex = prefs.BackgroundIndex
	s.CustomBackgroundURI = prefs.CustomBgURI
	s.PowerSaveMode = prefs.PowerSaveMode
	if prefs.LastMode != s.Mode && pristine(s) {
		s.Mode = prefs.LastMode
		s.Phase = domain.PhaseFocus
		s.CompletedFocusSessions = 0
		s.TimeRemaining = s.Mode.FocusDuration()
	}
	return s
}

func pristine(s domain.TimerState) bool {
	return !s.IsRunning &&
		s.Phase == domain.PhaseFocus &&
		s.CompletedFocusSessions == 0 &&
		s.TimeRemaining == s.Mode.FocusDuration()
}
