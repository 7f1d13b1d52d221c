package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrTemporary marks upstream degradation (embedding provider, generator)
	// that is worth retrying or surfacing as reduced-service telemetry. Empty
	// retrieval results are values, never this error.
	ErrTemporary    = errors.New("temporary failure")
	ErrSnapshotLoad = errors.New("snapshot load failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
