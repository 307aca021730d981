package lua

import "strings"

// AutoIndent returns the indent level change contributed by text, used to
// indent the line after text when the user presses enter.
func AutoIndent(text string) int {
	sc := newScanner([]rune(text))
	level := 0
	for t := sc.next(); t.kind != kindEOF; t = sc.next() {
		switch t.kind {
		case kindDo, kindFunction, kindThen, kindRepeat, kindLCurly, kindElse, kindElseif:
			level++
		case kindUntil, kindReturn:
			level--
		}
	}
	return level
}

func indentDelta(k kind) int {
	switch k {
	case kindDo, kindFunction, kindThen, kindRepeat, kindLCurly, kindElse:
		return 1
	case kindUntil, kindEnd, kindRCurly:
		return -1
	}
	return 0
}

// Format reindents text with width spaces per level. Runs of whitespace
// inside a line collapse to one space and trailing spaces before a newline
// are dropped. Branch keywords (else, elseif, case, default) sit half a
// level out.
func Format(text string, width int) string {
	sc := newScanner([]rune(text))
	b := make([]byte, 0, len(text))

	level := 0
	lineStart := true
	indent := func(n int) {
		if n > 0 {
			b = append(b, strings.Repeat(" ", n)...)
		}
	}

	for t := sc.next(); t.kind != kindEOF; t = sc.next() {
		lit := sc.text(t)

		switch {
		case t.kind == kindNewline:
			if n := len(b); n > 0 && b[n-1] == ' ' {
				b = b[:n-1]
			}
			b = append(b, '\n')
			lineStart = true
			level = max(level, 0)
		case lineStart:
			switch t.kind {
			case kindSpace:
				continue
			case kindElse, kindElseif, kindCase, kindDefault:
				indent(level*width - width/2)
			case kindDoubleColon, kindAt:
			case kindEnd, kindUntil, kindRCurly:
				level--
				indent(level * width)
			default:
				indent(level * width)
				level += indentDelta(t.kind)
			}
			b = append(b, lit...)
			lineStart = false
		case t.kind == kindSpace:
			b = append(b, ' ')
		default:
			b = append(b, lit...)
			level += indentDelta(t.kind)
		}
	}
	return string(b)
}
