package lua

import "unicode"

// kind is the raw lexical class of a token.
type kind int

const (
	kindEOF kind = iota
	kindSpace
	kindNewline
	kindName
	kindNumber
	kindString
	kindLongString
	kindComment
	kindBlockComment
	kindAssign
	kindAt
	kindDoubleColon
	kindLParen
	kindRParen
	kindLBrack
	kindRBrack
	kindLCurly
	kindRCurly
	kindComma
	kindDot
	kindOperator
	kindOther

	// Reserved words. The scanner also knows the switch extension.
	kindAnd
	kindBreak
	kindCase
	kindContinue
	kindDefault
	kindDo
	kindElse
	kindElseif
	kindEnd
	kindFalse
	kindFor
	kindFunction
	kindGoto
	kindIf
	kindIn
	kindLocal
	kindNil
	kindNot
	kindOr
	kindRepeat
	kindReturn
	kindSwitch
	kindThen
	kindTrue
	kindUntil
	kindWhile
)

var reserved = map[string]kind{
	"and":      kindAnd,
	"break":    kindBreak,
	"case":     kindCase,
	"continue": kindContinue,
	"default":  kindDefault,
	"do":       kindDo,
	"else":     kindElse,
	"elseif":   kindElseif,
	"end":      kindEnd,
	"false":    kindFalse,
	"for":      kindFor,
	"function": kindFunction,
	"goto":     kindGoto,
	"if":       kindIf,
	"in":       kindIn,
	"local":    kindLocal,
	"nil":      kindNil,
	"not":      kindNot,
	"or":       kindOr,
	"repeat":   kindRepeat,
	"return":   kindReturn,
	"switch":   kindSwitch,
	"then":     kindThen,
	"true":     kindTrue,
	"until":    kindUntil,
	"while":    kindWhile,
}

func (k kind) reserved() bool { return k >= kindAnd }

// token is one lexeme. Line and column locate its first character.
type token struct {
	kind   kind
	start  int
	end    int
	line   int
	column int
}

func (t token) len() int { return t.end - t.start }

// scanner splits Lua source into lexemes. Every character belongs to
// exactly one lexeme; malformed input yields kindOther or an unterminated
// string or comment, never an error.
type scanner struct {
	src    []rune
	pos    int
	line   int
	column int
}

func newScanner(src []rune) *scanner {
	return &scanner{src: src}
}

func (s *scanner) peek(n int) rune {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

func (s *scanner) advance() {
	if s.src[s.pos] == '\n' {
		s.line++
		s.column = 0
	} else {
		s.column++
	}
	s.pos++
}

func (s *scanner) skip(n int) {
	for i := 0; i < n && s.pos < len(s.src); i++ {
		s.advance()
	}
}

func (s *scanner) text(t token) string {
	return string(s.src[t.start:t.end])
}

// next returns the next lexeme, or one of kind kindEOF at the end.
func (s *scanner) next() token {
	t := token{start: s.pos, line: s.line, column: s.column}
	t.kind = s.scan()
	t.end = s.pos
	return t
}

func (s *scanner) scan() kind {
	if s.pos >= len(s.src) {
		return kindEOF
	}
	c := s.src[s.pos]

	switch {
	case c == '\n':
		s.advance()
		return kindNewline
	case isSpace(c):
		for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
			s.advance()
		}
		return kindSpace
	case isNameStart(c):
		start := s.pos
		for s.pos < len(s.src) && isNamePart(s.src[s.pos]) {
			s.advance()
		}
		if k, ok := reserved[string(s.src[start:s.pos])]; ok {
			return k
		}
		return kindName
	case isDigit(c) || (c == '.' && isDigit(s.peek(1))):
		s.number()
		return kindNumber
	case c == '"' || c == '\'':
		s.quoted(c)
		return kindString
	case c == '[':
		if level, ok := s.longOpen(0); ok {
			s.longBody(level, 0)
			return kindLongString
		}
		s.advance()
		return kindLBrack
	case c == '-' && s.peek(1) == '-':
		if level, ok := s.longOpen(2); ok {
			s.longBody(level, 2)
			return kindBlockComment
		}
		for s.pos < len(s.src) && s.src[s.pos] != '\n' {
			s.advance()
		}
		return kindComment
	}

	return s.punct(c)
}

func (s *scanner) punct(c rune) kind {
	n := s.peek(1)
	switch c {
	case '(':
		s.advance()
		return kindLParen
	case ')':
		s.advance()
		return kindRParen
	case ']':
		s.advance()
		return kindRBrack
	case '{':
		s.advance()
		return kindLCurly
	case '}':
		s.advance()
		return kindRCurly
	case ',':
		s.advance()
		return kindComma
	case '@':
		s.advance()
		return kindAt
	case '.':
		switch {
		case n == '.' && s.peek(2) == '.':
			s.skip(3)
			return kindOperator
		case n == '.':
			s.skip(2)
			return kindOperator
		}
		s.advance()
		return kindDot
	case ':':
		if n == ':' {
			s.skip(2)
			return kindDoubleColon
		}
		s.advance()
		return kindOperator
	case '=':
		if n == '=' {
			s.skip(2)
			return kindOperator
		}
		s.advance()
		return kindAssign
	case '~', '<', '>':
		if n == '=' || (c == '<' && n == '<') || (c == '>' && n == '>') {
			s.skip(2)
			return kindOperator
		}
		s.advance()
		return kindOperator
	case '/':
		if n == '/' {
			s.skip(2)
			return kindOperator
		}
		s.advance()
		return kindOperator
	case '+', '-', '*', '%', '^', '#', '&', '|', ';':
		s.advance()
		return kindOperator
	}
	s.advance()
	return kindOther
}

func (s *scanner) number() {
	if s.src[s.pos] == '0' && (s.peek(1) == 'x' || s.peek(1) == 'X') {
		s.skip(2)
		s.digits(isHexDigit, 'p', 'P')
		return
	}
	s.digits(isDigit, 'e', 'E')
}

// digits consumes a mantissa with at most one point and an optional
// signed exponent introduced by e1 or e2.
func (s *scanner) digits(isDigitFn func(rune) bool, e1, e2 rune) {
	seenPoint := false
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case isDigitFn(c):
			s.advance()
		case c == '.' && !seenPoint && s.peek(1) != '.':
			seenPoint = true
			s.advance()
		case c == e1 || c == e2:
			s.advance()
			if p := s.peek(0); p == '+' || p == '-' {
				s.advance()
			}
			for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
				s.advance()
			}
			return
		default:
			return
		}
	}
}

// quoted consumes a short string. It ends after the closing quote, or
// before an unescaped newline, or at the end of input.
func (s *scanner) quoted(q rune) {
	s.advance()
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == q:
			s.advance()
			return
		case c == '\n':
			return
		case c == '\\':
			s.skip(2)
		default:
			s.advance()
		}
	}
}

// longOpen reports whether a long bracket [=*[ starts at offset from the
// current position, and its level.
func (s *scanner) longOpen(offset int) (int, bool) {
	if s.peek(offset) != '[' {
		return 0, false
	}
	level := 0
	for s.peek(offset+1+level) == '=' {
		level++
	}
	return level, s.peek(offset+1+level) == '['
}

// longBody consumes a long bracket of the given level starting after
// prefix characters, up to and including the matching close or the end of
// input.
func (s *scanner) longBody(level, prefix int) {
	s.skip(prefix + level + 2)
	for s.pos < len(s.src) {
		if s.src[s.pos] == ']' && s.closes(level) {
			s.skip(level + 2)
			return
		}
		s.advance()
	}
}

func (s *scanner) closes(level int) bool {
	for i := 1; i <= level; i++ {
		if s.peek(i) != '=' {
			return false
		}
	}
	return s.peek(level+1) == ']'
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v'
}

func isNameStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isNamePart(c rune) bool {
	return isNameStart(c) || unicode.IsDigit(c)
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c rune) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
