// Package main is the entry point for the codecore command, which loads a
// file into the text engine and prints what the engine sees.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/codecore/internal/config"
	"github.com/dshills/codecore/internal/engine"
	"github.com/dshills/codecore/internal/lexer"
	"github.com/dshills/codecore/internal/lexer/langs"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options are the parsed command line flags.
type options struct {
	configPath string
	language   string
	logLevel   string
	mode       string
	width      int
	wrap       bool
	watch      bool
	file       string
}

var errUsage = errors.New("usage")

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	var showVersion bool

	fs := flag.NewFlagSet("codecore", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.language, "lang", "", "Language: lua, a chroma lexer name, none (default: from file)")
	fs.StringVar(&opts.language, "l", "", "Language (shorthand)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.mode, "mode", "tokens", "Output: tokens, rows, folds, words, color, check, format")
	fs.StringVar(&opts.mode, "m", "tokens", "Output (shorthand)")
	fs.IntVar(&opts.width, "width", -1, "Row width in columns (overrides config)")
	fs.BoolVar(&opts.wrap, "wrap", false, "Enable word wrap")
	fs.BoolVar(&opts.watch, "watch", false, "Reprint whenever the config file changes")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "codecore - text engine inspector\n\n")
		fmt.Fprintf(stderr, "Usage: codecore [options] [file]\n\n")
		fmt.Fprintf(stderr, "Reads standard input when no file is given.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  codecore init.lua                 Print tokens\n")
		fmt.Fprintf(stderr, "  codecore -m rows -wrap -width 40 README\n")
		fmt.Fprintf(stderr, "  codecore -m check init.lua        Report Lua syntax errors\n")
		fmt.Fprintf(stderr, "  codecore -m color -l go main.go   Highlight to the terminal\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if showVersion {
		fmt.Fprintf(stderr, "codecore %s\nCommit: %s\nBuilt: %s\n", version, commit, date)
		return opts, flag.ErrHelp
	}
	switch fs.NArg() {
	case 0:
	case 1:
		opts.file = fs.Arg(0)
	default:
		fs.Usage()
		return opts, errUsage
	}
	if _, ok := printers[opts.mode]; !ok {
		return opts, fmt.Errorf("unknown mode %q", opts.mode)
	}
	if opts.watch && opts.configPath == "" {
		return opts, errors.New("-watch needs -config")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 2
	}

	text, err := readInput(opts.file, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	code := render(cfg, opts, text, stdout, stderr)
	if !opts.watch {
		return code
	}

	err = config.Watch(ctx, opts.configPath, func(c *config.Config, err error) {
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return
		}
		applyFlags(c, opts)
		render(c, opts, text, stdout, stderr)
	}, config.WithWatchLogger(cfg.Logger(stderr)))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return code
}

func readInput(file string, stdin io.Reader) (string, error) {
	if file == "" || file == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(file)
	return string(data), err
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	} else if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config, opts options) {
	if opts.language != "" {
		cfg.Lexer.Language = opts.language
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.width >= 0 {
		cfg.Editor.RowWidth = opts.width
	}
	if opts.wrap {
		cfg.Editor.WordWrap = true
	}
}

// render loads text into a fresh engine and prints it in the chosen mode.
func render(cfg *config.Config, opts options, text string, stdout, stderr io.Writer) int {
	log := cfg.Logger(stderr)

	engOpts, err := cfg.EngineOptions()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if cfg.Lexer.Language == "" {
		// Detection needs the text, so it happens here rather than in config.
		engOpts = append(engOpts, engine.WithLanguage(langs.ForFile(opts.file, text)))
	}
	engOpts = append(engOpts,
		engine.WithContent(text),
		engine.WithReadOnly(),
		engine.WithLogger(log),
	)

	e, err := engine.New(engOpts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer e.Close()

	var res *lexer.Result
	if e.Language() != nil {
		if !e.Tokenizing() && e.Tokens() == nil {
			if err := e.Tokenize(); err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return 1
			}
		}
		e.WaitTokenize()
		res = e.Tokens()
	}

	p := printers[opts.mode]
	code, err := p(&view{cfg: cfg, engine: e, tokens: res, out: stdout})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return code
}
