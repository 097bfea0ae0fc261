package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

type options struct {
	configPath string
	exts       []string
	tokenExts  []string
	ignore     []string
	protect    []string
	jobs       int
	keepGoing  bool
	check      bool
	quiet      bool
	logLevel   string
}

type cliApp struct {
	stdout io.Writer
	stderr io.Writer
	opts   options
}

func run(argv []string, stdout, stderr io.Writer) error {
	return runContext(context.Background(), argv, stdout, stderr)
}

func runContext(ctx context.Context, argv []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(normalizeLegacyArgs(argv))
	return cmd.ExecuteContext(ctx)
}

func (app *cliApp) execute(ctx context.Context, flags *pflag.FlagSet, positionals []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := app.resolveConfig(flags, positionals)
	if err != nil {
		return err
	}
	logger, err := newLogger(app.stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	progress := app.stdout
	if cfg.Quiet {
		progress = io.Discard
	}

	report, err := Run(ctx, cfg, progress, logger)
	if err != nil {
		return err
	}
	if cfg.Check {
		fmt.Fprintf(progress, "check: %d of %d file(s) need filename formatting\n", len(report.Changed), report.Scanned)
		if len(report.Changed) > 0 {
			return fmt.Errorf("%w: %s", ErrChangesPending, strings.Join(report.Changed, ", "))
		}
		return nil
	}
	fmt.Fprintf(progress, "done: scanned %d file(s), wrapped %d filename(s) in %d file(s)\n",
		report.Scanned, report.Wrapped, len(report.Changed))
	return nil
}

// resolveConfig layers explicitly set flags and the positional root over the
// file and environment configuration.
func (app *cliApp) resolveConfig(flags *pflag.FlagSet, positionals []string) (Config, error) {
	opts := app.opts
	cfg, err := LoadConfig(opts.configPath, flags.Changed("config"))
	if err != nil {
		return Config{}, err
	}
	if flags.Changed("ext") {
		cfg.Extensions = opts.exts
	}
	if flags.Changed("token-ext") {
		cfg.TokenExtensions = opts.tokenExts
	}
	if flags.Changed("ignore") {
		cfg.Ignore = opts.ignore
	}
	if flags.Changed("protect") {
		cfg.Protect = opts.protect
	}
	if flags.Changed("jobs") {
		cfg.Jobs = opts.jobs
	}
	if flags.Changed("keep-going") {
		cfg.KeepGoing = opts.keepGoing
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	cfg.Check = opts.check
	cfg.Quiet = opts.quiet
	if len(positionals) == 1 {
		cfg.Root = positionals[0]
	}
	if err := cfg.Normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var legacyLongFlagSet = map[string]struct{}{
	"check":      {},
	"quiet":      {},
	"keep-going": {},
	"jobs":       {},
	"ext":        {},
	"token-ext":  {},
	"ignore":     {},
	"protect":    {},
	"config":     {},
	"log-level":  {},
}

// normalizeLegacyArgs rewrites single-dash long flags (-check, -jobs=4) into
// their double-dash form. Shorthand flags pass through untouched.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	modified := false
	converted := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			converted = append(converted, args[i:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") || len(arg) <= 2 {
			converted = append(converted, arg)
			continue
		}
		name, value, hasValue := strings.Cut(arg[1:], "=")
		if _, ok := legacyLongFlagSet[name]; ok {
			if hasValue {
				converted = append(converted, "--"+name+"="+value)
			} else {
				converted = append(converted, "--"+name)
			}
			modified = true
			continue
		}
		converted = append(converted, arg)
	}
	if !modified {
		return args
	}
	return converted
}
