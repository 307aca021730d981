// Package assert reports broken internal invariants.
//
// Builds with the debug tag panic at the point of failure so the bug shows
// up with a stack trace. Release builds return an error wrapping
// ErrInvariant instead and let the caller refuse the operation.
package assert

import (
	"errors"
	"fmt"
)

// ErrInvariant is returned by Unreachable in release builds.
var ErrInvariant = errors.New("internal invariant violated")

func failure(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
