package domain

// Command is a user action the presentation or voice layer can send.
type Command int

const (
	CommandUnknown Command = iota
	CommandToggle
	CommandStart
	CommandPause
	CommandReset
	CommandSkip
	CommandModePomodoro
	CommandModeDeepWork
	CommandSwitchMode
	CommandNextBackground
	CommandPowerSave
	CommandQuit
)

// String returns a human-readable command.
func (c Command) String() string {
	switch c {
	case CommandToggle:
		return "toggle"
	case CommandStart:
		return "start"
	case CommandPause:
		return "pause"
	case CommandReset:
		return "reset"
	case CommandSkip:
		return "skip"
	case CommandModePomodoro:
		return "mode_pomodoro"
	case CommandModeDeepWork:
		return "mode_deep_work"
	case CommandSwitchMode:
		return "switch_mode"
	case CommandNextBackground:
		return "next_background"
	case CommandPowerSave:
		return "power_save"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}
