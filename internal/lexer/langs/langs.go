// Package langs resolves language names and file names to scanners.
package langs

import (
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/dshills/codecore/internal/lexer"
	"github.com/dshills/codecore/internal/lexer/chromalex"
	"github.com/dshills/codecore/internal/lexer/lua"
)

// Lookup returns the scanner for name. "lua" uses the native scanner;
// other names go to chroma. An empty name or "none" yields nil.
func Lookup(name string) (lexer.Language, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return nil, nil
	case "lua":
		return lua.Default(), nil
	}
	l, err := chromalex.New(name)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Detect names the language of a file from its name, then from a shebang
// or editor modeline in text. It returns "" when nothing matches.
func Detect(filename, text string) string {
	if filename != "" {
		if name, _ := enry.GetLanguageByFilename(filename); name != "" {
			return name
		}
		if name, _ := enry.GetLanguageByExtension(filename); name != "" {
			return name
		}
	}
	content := []byte(text)
	if name, _ := enry.GetLanguageByShebang(content); name != "" {
		return name
	}
	if name, _ := enry.GetLanguageByModeline(content); name != "" {
		return name
	}
	return ""
}

// ForFile picks a scanner for a file. Names chroma does not know fall back
// to chroma's own matching and content analysis.
func ForFile(filename, text string) lexer.Language {
	if name := Detect(filename, text); name != "" {
		if l, err := Lookup(name); err == nil && l != nil {
			return l
		}
	}
	return chromalex.Detect(filename, text)
}
