//go:build debug

package assert

// Debug reports whether invariant failures panic.
const Debug = true

// Unreachable reports a state that correct code never reaches.
func Unreachable(format string, args ...any) error {
	panic(failure(format, args...))
}
