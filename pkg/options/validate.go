package options

import (
	"fmt"

	"github.com/thatch45/maras-go/internal/hashreg"
	marasErrors "github.com/thatch45/maras-go/pkg/errors"
)

// Validate checks that o describes a configuration that create can safely
// serialize and every later open can safely parse. It returns an
// *errors.EngineError with code INVALID_CONFIG describing the first
// violation found.
func (o *Options) Validate() error {
	if (o.HashLimit & (o.HashLimit + 1)) != 0 {
		return marasErrors.NewInvalidConfigError(
			"hash_limit",
			fmt.Sprintf("must be of the form 2^n-1, got %d", o.HashLimit),
		)
	}

	if _, err := hashreg.Lookup(o.KeyHash); err != nil {
		return marasErrors.NewInvalidConfigError(
			"key_hash",
			fmt.Sprintf("unknown hash name %q", o.KeyHash),
		)
	}

	if len(o.EntryMap) == 0 {
		return marasErrors.NewInvalidConfigError("entry_map", "must name at least one field")
	}

	if o.Fmt == "" {
		return marasErrors.NewInvalidConfigError("fmt", "must not be empty")
	}

	if o.HeaderLen <= 0 {
		return marasErrors.NewInvalidConfigError(
			"header_len",
			fmt.Sprintf("must be positive, got %d", o.HeaderLen),
		)
	}

	if o.KeyDelim == "" {
		return marasErrors.NewInvalidConfigError("key_delim", "must not be empty")
	}

	if o.OpenFd <= 0 {
		return marasErrors.NewInvalidConfigError(
			"open_fd",
			fmt.Sprintf("must be positive, got %d", o.OpenFd),
		)
	}

	return nil
}
