//go:build !debug

package assert

// Debug reports whether invariant failures panic.
const Debug = false

// Unreachable reports a state that correct code never reaches.
func Unreachable(format string, args ...any) error {
	return failure(format, args...)
}
