package lua

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/gopher-lua/parse"
)

// Diagnostic is a syntax error found by Check. Line is 1-based.
type Diagnostic struct {
	Line    int
	Column  int
	Message string
	Token   string
}

func (d Diagnostic) String() string {
	if d.Token != "" {
		return fmt.Sprintf("%d:%d: %s near %q", d.Line, d.Column, d.Message, d.Token)
	}
	return fmt.Sprintf("%d:%d: %s", d.Line, d.Column, d.Message)
}

// Check parses text with the Lua 5.1 grammar of the embedded runtime and
// returns the first syntax error, if any. Extensions the tokenizer accepts,
// such as goto labels and integer division, are reported as errors here.
func Check(text string) []Diagnostic {
	_, err := parse.Parse(strings.NewReader(text), "<buffer>")
	if err == nil {
		return nil
	}
	var perr *parse.Error
	if errors.As(err, &perr) {
		return []Diagnostic{{
			Line:    perr.Pos.Line,
			Column:  perr.Pos.Column,
			Message: perr.Message,
			Token:   perr.Token,
		}}
	}
	return []Diagnostic{{Message: err.Error()}}
}
