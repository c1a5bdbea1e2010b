package storage

import (
	"context"
	"errors"

	"github.com/hammamikhairi/deepwork/internal/domain"
	"github.com/hammamikhairi/deepwork/internal/logger"
)

// LoadPreferences reads every preference key from store and decodes them.
// Read failures are logged and treated as absent values, so the result is
// always usable.
func LoadPreferences(ctx context.Context, store domain.PreferenceStore, log *logger.Logger) domain.Preferences {
	raw := make(map[domain.PrefKey]string, len(domain.PrefKeys))
	for _, key := range domain.PrefKeys {
		v, err := store.Get(ctx, key)
		switch {
		case err == nil:
			raw[key] = v
		case errors.Is(err, domain.ErrNotFound):
		default:
			log.Warn("reading preference %s: %v", key, err)
		}
	}
	return domain.DecodePreferences(raw)
}
