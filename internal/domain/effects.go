package domain

import "time"

// EffectType classifies a side effect requested by a transition.
type EffectType int

const (
	// EffectArm asks the shell to start the tick cycle.
	EffectArm EffectType = iota
	// EffectDisarm asks the shell to cancel any pending tick.
	EffectDisarm
	// EffectPhaseComplete signals that a phase boundary was crossed.
	EffectPhaseComplete
	// EffectPersist writes Value under Key.
	EffectPersist
	// EffectForget removes Key from the store.
	EffectForget
)

// String returns a human-readable effect type.
func (t EffectType) String() string {
	switch t {
	case EffectArm:
		return "arm"
	case EffectDisarm:
		return "disarm"
	case EffectPhaseComplete:
		return "phase_complete"
	case EffectPersist:
		return "persist"
	case EffectForget:
		return "forget"
	default:
		return "unknown"
	}
}

// Effect is one side effect emitted by a transition. Key and Value are
// only set for persistence effects.
type Effect struct {
	Type  EffectType
	Key   PrefKey
	Value string
}

// Persist builds a persistence effect.
func Persist(key PrefKey, value string) Effect {
	return Effect{Type: EffectPersist, Key: key, Value: value}
}

// Forget builds a deletion effect.
func Forget(key PrefKey) Effect {
	return Effect{Type: EffectForget, Key: key}
}

// EventType defines the kind of Event delivered to observers.
type EventType string

const (
	EventState         EventType = "state"
	EventPhaseComplete EventType = "phase_complete"
)

// Event is a state update for observers such as the presentation layer.
// For EventPhaseComplete, Completed is the phase that just ended and
// State is already the next phase.
type Event struct {
	Type      EventType
	State     TimerState
	Completed Phase
	At        time.Time
}
