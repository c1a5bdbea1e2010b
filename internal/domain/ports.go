package domain

import "context"

// PreferenceStore persists scalar preferences as strings. Implementations
// can be in-memory, a YAML file, SQLite, or anything else with key-value
// semantics.
type PreferenceStore interface {
	// Get returns ErrNotFound when key has never been written.
	Get(ctx context.Context, key PrefKey) (string, error)
	Set(ctx context.Context, key PrefKey, value string) error
	Delete(ctx context.Context, key PrefKey) error
}

// Haptics delivers the "phase complete" signal to the user. Errors are
// advisory; callers log and drop them.
type Haptics interface {
	Buzz(ctx context.Context) error
}
