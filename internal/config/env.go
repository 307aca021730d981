package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CODECORE_"

// LookupFunc looks up an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envBinding struct {
	name string
	key  string
	set  func(c *Config, v string) error
}

func envBindings() []envBinding {
	return []envBinding{
		{"TAB_WIDTH", "editor.tab_width", intSetter(func(c *Config) *int { return &c.Editor.TabWidth })},
		{"WORD_WRAP", "editor.word_wrap", boolSetter(func(c *Config) *bool { return &c.Editor.WordWrap })},
		{"ROW_WIDTH", "editor.row_width", intSetter(func(c *Config) *int { return &c.Editor.RowWidth })},
		{"EAST_ASIAN_WIDTH", "editor.east_asian_width", boolSetter(func(c *Config) *bool { return &c.Editor.EastAsianWidth })},
		{"MERGE_WINDOW", "editor.merge_window", func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			c.Editor.MergeWindow = Duration(d)
			return nil
		}},
		{"MAX_UNDO", "editor.max_undo", intSetter(func(c *Config) *int { return &c.Editor.MaxUndo })},
		{"LINE_CACHE_SIZE", "editor.line_cache_size", intSetter(func(c *Config) *int { return &c.Editor.LineCacheSize })},
		{"LANGUAGE", "lexer.language", stringSetter(func(c *Config) *string { return &c.Lexer.Language })},
		{"AUTO_TOKENIZE", "lexer.auto_tokenize", boolSetter(func(c *Config) *bool { return &c.Lexer.AutoTokenize })},
		{"PALETTE", "lexer.palette", stringSetter(func(c *Config) *string { return &c.Lexer.Palette })},
		{"LOG_LEVEL", "log.level", stringSetter(func(c *Config) *string { return &c.Log.Level })},
	}
}

// ApplyEnv overrides settings from CODECORE_* variables, e.g.
// CODECORE_TAB_WIDTH=8 or CODECORE_LOG_LEVEL=debug. Empty values are
// applied as given. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, b := range envBindings() {
		v, ok := lookup(EnvPrefix + b.name)
		if !ok {
			continue
		}
		if err := b.set(c, v); err != nil {
			return fmt.Errorf("%s%s (%s): %w", EnvPrefix, b.name, b.key, err)
		}
	}
	return nil
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func stringSetter(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}
