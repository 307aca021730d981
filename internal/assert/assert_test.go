package assert

import (
	"errors"
	"strings"
	"testing"
)

func TestUnreachable(t *testing.T) {
	if Debug {
		defer func() {
			r := recover()
			err, ok := r.(error)
			if !ok || !errors.Is(err, ErrInvariant) {
				t.Errorf("recovered %v, want ErrInvariant", r)
			}
		}()
	}

	err := Unreachable("row %d missing", 7)
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("Unreachable() = %v, want ErrInvariant", err)
	}
	if !strings.Contains(err.Error(), "row 7 missing") {
		t.Errorf("message = %q", err.Error())
	}
}
