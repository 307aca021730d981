package config

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dshills/codecore/internal/engine"
	"github.com/dshills/codecore/internal/engine/metrics"
	"github.com/dshills/codecore/internal/engine/undo"
	"github.com/dshills/codecore/internal/highlight"
	"github.com/dshills/codecore/internal/lexer/langs"
	"github.com/dshills/codecore/internal/logging"
)

// Limits enforced by Validate.
const (
	MaxTabWidth = 16
	MinRowWidth = 8
)

// Config holds every codecore setting.
type Config struct {
	Editor EditorConfig `toml:"editor" yaml:"editor"`
	Lexer  LexerConfig  `toml:"lexer" yaml:"lexer"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

// EditorConfig configures the text engine.
type EditorConfig struct {
	TabWidth int  `toml:"tab_width" yaml:"tab_width"`
	WordWrap bool `toml:"word_wrap" yaml:"word_wrap"`
	// RowWidth is the wrap width in columns. Zero leaves wrapping pending
	// until a width is known.
	RowWidth       int      `toml:"row_width" yaml:"row_width"`
	EastAsianWidth bool     `toml:"east_asian_width" yaml:"east_asian_width"`
	MergeWindow    Duration `toml:"merge_window" yaml:"merge_window"`
	// MaxUndo caps the undo history. Zero means unlimited.
	MaxUndo       int `toml:"max_undo" yaml:"max_undo"`
	LineCacheSize int `toml:"line_cache_size" yaml:"line_cache_size"`
}

// LexerConfig selects the tokenizer.
type LexerConfig struct {
	// Language is "lua", a chroma lexer name, or empty for none.
	Language     string `toml:"language" yaml:"language"`
	AutoTokenize bool   `toml:"auto_tokenize" yaml:"auto_tokenize"`
	Palette      string `toml:"palette" yaml:"palette"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			TabWidth:      4,
			RowWidth:      80,
			MergeWindow:   Duration(undo.DefaultMergeWindow),
			LineCacheSize: 4,
		},
		Lexer: LexerConfig{
			AutoTokenize: true,
			Palette:      "default",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Validate checks every setting and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	bad := func(key string, value any, msg string) {
		errs = append(errs, &ValidationError{Key: key, Value: value, Message: msg})
	}

	if c.Editor.TabWidth < 1 || c.Editor.TabWidth > MaxTabWidth {
		bad("editor.tab_width", c.Editor.TabWidth, fmt.Sprintf("must be between 1 and %d", MaxTabWidth))
	}
	if c.Editor.RowWidth != 0 && c.Editor.RowWidth < MinRowWidth {
		bad("editor.row_width", c.Editor.RowWidth, fmt.Sprintf("must be 0 or at least %d", MinRowWidth))
	}
	if c.Editor.MergeWindow < 0 {
		bad("editor.merge_window", c.Editor.MergeWindow, "must not be negative")
	}
	if c.Editor.MaxUndo < 0 {
		bad("editor.max_undo", c.Editor.MaxUndo, "must not be negative")
	}
	if c.Editor.LineCacheSize < 1 {
		bad("editor.line_cache_size", c.Editor.LineCacheSize, "must be at least 1")
	}
	if _, err := langs.Lookup(c.Lexer.Language); err != nil {
		bad("lexer.language", c.Lexer.Language, err.Error())
	}
	if highlight.Lookup(c.Lexer.Palette) == nil {
		bad("lexer.palette", c.Lexer.Palette, "unknown palette")
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		bad("log.level", c.Log.Level, "unknown level")
	}
	return errors.Join(errs...)
}

// EngineOptions converts the settings into engine options.
func (c *Config) EngineOptions() ([]engine.Option, error) {
	lang, err := langs.Lookup(c.Lexer.Language)
	if err != nil {
		return nil, err
	}
	return []engine.Option{
		engine.WithMetrics(metrics.NewMonospace(c.Editor.RowWidth, c.Editor.TabWidth, c.Editor.EastAsianWidth)),
		engine.WithWordWrap(c.Editor.WordWrap),
		engine.WithMergeWindow(time.Duration(c.Editor.MergeWindow)),
		engine.WithMaxUndoEntries(c.Editor.MaxUndo),
		engine.WithLineCacheSize(c.Editor.LineCacheSize),
		engine.WithLanguage(lang),
		engine.WithAutoTokenize(c.Lexer.AutoTokenize),
	}, nil
}

// Logger builds a logger at the configured level writing to out.
func (c *Config) Logger(out io.Writer) *logging.Logger {
	level, _ := logging.ParseLevel(c.Log.Level)
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Output = out
	return logging.New(cfg)
}

// Duration is a time.Duration written as a string such as "750ms".
type Duration time.Duration

// String formats d like time.Duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
