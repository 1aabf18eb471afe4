// Package pagination normalizes the slice and ordering parameters of list
// commands.
package pagination

import apperrors "github.com/louisbranch/storefront/internal/platform/errors"

// LimitConfig configures page size normalization.
type LimitConfig struct {
	Default int
	Max     int
}

// SortConfig lists the sort keys a command accepts.
type SortConfig struct {
	Default string
	Allowed []string
}

// ClampLimit applies defaults and limits for page sizes. Zero selects the
// default.
func ClampLimit(value int, cfg LimitConfig) int {
	limit := value
	if limit <= 0 {
		limit = cfg.Default
	}
	if cfg.Max > 0 && limit > cfg.Max {
		limit = cfg.Max
	}
	if limit <= 0 {
		limit = 1
	}
	return limit
}

// NormalizeSort validates key and applies the default.
func NormalizeSort(key string, cfg SortConfig) (string, error) {
	if key == "" {
		return cfg.Default, nil
	}
	for _, allowed := range cfg.Allowed {
		if key == allowed {
			return key, nil
		}
	}
	return "", apperrors.Validation(apperrors.CodeParamsInvalid, `Unknown sort key "%s"`, key)
}
