package config

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/codecore/internal/engine"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestParseTOML(t *testing.T) {
	src := `
[editor]
tab_width = 8
word_wrap = true
row_width = 100
merge_window = "750ms"

[lexer]
language = "lua"

[log]
level = "debug"
`
	cfg, err := Parse(strings.NewReader(src), FormatTOML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Editor.TabWidth != 8 || !cfg.Editor.WordWrap || cfg.Editor.RowWidth != 100 {
		t.Errorf("Editor = %+v", cfg.Editor)
	}
	if got := time.Duration(cfg.Editor.MergeWindow); got != 750*time.Millisecond {
		t.Errorf("MergeWindow = %v, want 750ms", got)
	}
	if cfg.Lexer.Language != "lua" {
		t.Errorf("Language = %q", cfg.Lexer.Language)
	}
	// Untouched keys keep their defaults.
	if !cfg.Lexer.AutoTokenize || cfg.Lexer.Palette != "default" {
		t.Errorf("Lexer defaults lost: %+v", cfg.Lexer)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q", cfg.Log.Level)
	}
}

func TestParseYAML(t *testing.T) {
	src := `
editor:
  tab_width: 2
  merge_window: 2s
lexer:
  language: python
  palette: monokai
`
	cfg, err := Parse(strings.NewReader(src), FormatYAML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Editor.TabWidth != 2 {
		t.Errorf("TabWidth = %d", cfg.Editor.TabWidth)
	}
	if got := time.Duration(cfg.Editor.MergeWindow); got != 2*time.Second {
		t.Errorf("MergeWindow = %v", got)
	}
	if cfg.Lexer.Language != "python" || cfg.Lexer.Palette != "monokai" {
		t.Errorf("Lexer = %+v", cfg.Lexer)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestParseEmptyYAML(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""), FormatYAML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Editor.TabWidth != Default().Editor.TabWidth {
		t.Errorf("empty input changed defaults: %+v", cfg.Editor)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		format Format
	}{
		{"toml syntax", "[editor]\ntab_width = = 3\n", FormatTOML},
		{"toml unknown key", "[editor]\ntab_size = 3\n", FormatTOML},
		{"toml bad duration", "[editor]\nmerge_window = \"soon\"\n", FormatTOML},
		{"yaml unknown key", "editor:\n  tab_size: 3\n", FormatYAML},
		{"yaml wrong type", "editor:\n  tab_width: wide\n", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src), tt.format)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse() error = %v, want *ParseError", err)
			}
			if pe.Path != "<reader>" {
				t.Errorf("Path = %q", pe.Path)
			}
		})
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"codecore.toml", FormatTOML},
		{"dir/codecore.YAML", FormatYAML},
		{"codecore.yml", FormatYAML},
	}
	for _, tt := range tests {
		got, err := FormatFor(tt.path)
		if err != nil || got != tt.want {
			t.Errorf("FormatFor(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
		}
	}
	if _, err := FormatFor("codecore.json"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("FormatFor(json) error = %v, want ErrUnknownFormat", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Editor.TabWidth = 0
	cfg.Editor.RowWidth = 3
	cfg.Lexer.Palette = "neon"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("Validate() = %v, want ErrValidationFailed", err)
	}
	for _, key := range []string{"editor.tab_width", "editor.row_width", "lexer.palette", "log.level"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("Validate() error missing %s: %v", key, err)
		}
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Error("errors.As(*ValidationError) failed")
	}
}

func TestValidateUnknownLanguage(t *testing.T) {
	cfg := Default()
	cfg.Lexer.Language = "no-such-language"
	if err := cfg.Validate(); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Validate() = %v, want ErrValidationFailed", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CODECORE_TAB_WIDTH":    "2",
		"CODECORE_WORD_WRAP":    "true",
		"CODECORE_MERGE_WINDOW": "10ms",
		"CODECORE_LANGUAGE":     "lua",
		"CODECORE_LOG_LEVEL":    "error",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.Editor.TabWidth != 2 || !cfg.Editor.WordWrap {
		t.Errorf("Editor = %+v", cfg.Editor)
	}
	if time.Duration(cfg.Editor.MergeWindow) != 10*time.Millisecond {
		t.Errorf("MergeWindow = %v", cfg.Editor.MergeWindow)
	}
	if cfg.Lexer.Language != "lua" || cfg.Log.Level != "error" {
		t.Errorf("Lexer = %+v, Log = %+v", cfg.Lexer, cfg.Log)
	}
}

func TestApplyEnvBadValue(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "CODECORE_MAX_UNDO" {
			return "lots", true
		}
		return "", false
	}
	cfg := Default()
	err := cfg.ApplyEnv(lookup)
	if err == nil || !strings.Contains(err.Error(), "editor.max_undo") {
		t.Errorf("ApplyEnv() error = %v", err)
	}
	if cfg.Editor.MaxUndo != 0 {
		t.Errorf("MaxUndo changed to %d", cfg.Editor.MaxUndo)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codecore.toml")
	if err := os.WriteFile(path, []byte("[editor]\ntab_width = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CODECORE_ROW_WIDTH", "120")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Editor.TabWidth != 8 {
		t.Errorf("TabWidth = %d, want 8", cfg.Editor.TabWidth)
	}
	if cfg.Editor.RowWidth != 120 {
		t.Errorf("RowWidth = %d, want env override 120", cfg.Editor.RowWidth)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want ErrNotExist", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codecore.yaml")
	if err := os.WriteFile(path, []byte("editor:\n  tab_width: 99\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Load() error = %v, want ErrValidationFailed", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Editor.MergeWindow = Duration(1500 * time.Millisecond)
	cfg.Lexer.Language = "lua"

	for _, format := range []Format{FormatTOML, FormatYAML} {
		data, err := cfg.Marshal(format)
		if err != nil {
			t.Fatalf("Marshal(%s) error = %v", format, err)
		}
		got, err := Parse(bytes.NewReader(data), format)
		if err != nil {
			t.Fatalf("Parse(%s) error = %v\n%s", format, err, data)
		}
		if *got != *cfg {
			t.Errorf("%s round trip = %+v, want %+v", format, got, cfg)
		}
	}
	if _, err := cfg.Marshal("ini"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Marshal(ini) error = %v", err)
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Editor.RowWidth = 10
	cfg.Editor.WordWrap = true
	cfg.Lexer.Language = "lua"
	cfg.Lexer.AutoTokenize = false

	opts, err := cfg.EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions() error = %v", err)
	}
	e, err := engine.New(append(opts, engine.WithContent("aaaa bbbb cccc"))...)
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	defer e.Close()

	if got := e.RowCount(); got != 2 {
		t.Errorf("RowCount() = %d, want 2", got)
	}
	if lang := e.Language(); lang == nil || lang.Name() != "lua" {
		t.Errorf("Language() = %v, want lua", lang)
	}
	if e.Tokenizing() {
		t.Error("auto tokenize ran although disabled")
	}
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "error"
	var buf bytes.Buffer
	log := cfg.Logger(&buf)

	log.Warn("dropped")
	log.Error("kept")
	if out := buf.String(); strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Errorf("output = %q", out)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codecore.toml")
	if err := os.WriteFile(path, []byte("[editor]\ntab_width = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan *Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config, err error) {
			if err == nil {
				reloads <- cfg
			}
		}, WithDebounce(10*time.Millisecond))
	}()

	// The watch may not be registered yet, so keep writing until a reload
	// shows up.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case cfg := <-reloads:
			if cfg.Editor.TabWidth != 8 {
				t.Errorf("reloaded TabWidth = %d, want 8", cfg.Editor.TabWidth)
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch() = %v", err)
			}
			return
		case <-tick.C:
			if err := os.WriteFile(path, []byte("[editor]\ntab_width = 8\n"), 0o644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no reload within 5s")
		}
	}
}

func TestWatchUnknownFormat(t *testing.T) {
	err := Watch(context.Background(), "codecore.ini", func(*Config, error) {})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Watch() = %v, want ErrUnknownFormat", err)
	}
}
