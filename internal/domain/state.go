package domain

import (
	"fmt"
	"time"
)

// CustomBackgroundIndex marks a user-picked image as the active background.
const CustomBackgroundIndex = -1

// TimerState is an immutable snapshot of the clock. Transitions replace it
// wholesale; nothing mutates a TimerState after it has been handed out.
type TimerState struct {
	Mode                   Mode
	Phase                  Phase
	IsRunning              bool
	TimeRemaining          time.Duration
	CompletedFocusSessions int

	SelectedBackgroundIndex int
	CustomBackgroundURI     string // empty when absent
	PowerSaveMode           bool
}

// DefaultState returns the state the application starts with before
// preferences are merged in.
func DefaultState() TimerState {
	return TimerState{
		Mode:          ModePomodoro,
		Phase:         PhaseFocus,
		TimeRemaining: FocusDuration,
	}
}

// NominalDuration returns the full length of the current phase.
func (s TimerState) NominalDuration() time.Duration {
	return NominalDuration(s.Mode, s.Phase)
}

// FormattedRemaining renders the countdown as MM:SS.
func (s TimerState) FormattedRemaining() string {
	return FormatRemaining(s.TimeRemaining)
}

// FormatRemaining renders d as zero-padded MM:SS. Minutes are not wrapped
// at an hour, so a full deep-work phase reads 60:00.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// PhaseLabel is the text shown above the countdown.
func (s TimerState) PhaseLabel() string {
	switch {
	case s.Mode == ModeDeepWork && s.Phase == PhaseFocus:
		return "Deep Work"
	case s.Phase == PhaseShortBreak:
		return "Break"
	case s.Phase == PhaseLongBreak:
		return "Long Break"
	default:
		return "Focus"
	}
}

// Progress is the elapsed fraction of the current phase, clamped to [0, 1].
func (s TimerState) Progress() float64 {
	total := s.NominalDuration()
	if total <= 0 {
		return 1
	}
	progress := 1 - float64(s.TimeRemaining)/float64(total)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// ShowsSessions reports whether the session counter is meaningful for the mode.
func (s TimerState) ShowsSessions() bool {
	return s.Mode == ModePomodoro
}
