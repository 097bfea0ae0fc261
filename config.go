package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultRoot       = "src/content/docs"
	defaultConfigPath = ".codify.yaml"
)

// Config controls one annotation run.
type Config struct {
	Root            string   `yaml:"root"`
	Extensions      []string `yaml:"extensions"`
	TokenExtensions []string `yaml:"token_extensions"`
	Ignore          []string `yaml:"ignore"`
	Protect         []string `yaml:"protect"`
	Jobs            int      `yaml:"jobs"`
	KeepGoing       bool     `yaml:"keep_going"`
	LogLevel        string   `yaml:"log_level"`

	Check bool `yaml:"-"`
	Quiet bool `yaml:"-"`
}

// DefaultConfig mirrors the site layout: MDX pages under src/content/docs.
// Only fenced code is protected unless protections are opted into.
func DefaultConfig() Config {
	return Config{
		Root:            defaultRoot,
		Extensions:      []string{".mdx"},
		TokenExtensions: append([]string(nil), DefaultTokenExtensions...),
		Ignore:          []string{"node_modules", ".git"},
		Protect:         []string{"none"},
		Jobs:            1,
		LogLevel:        "info",
	}
}

// LoadConfig layers the YAML file at path and the environment over the
// defaults. A missing file is only an error when required is set.
func LoadConfig(path string, required bool) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: .env: %v", ErrInvalidConfig, err)
	}

	cfg := DefaultConfig()
	if path == "" {
		path = defaultConfigPath
	}
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !required:
	default:
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if root := os.Getenv("CODIFY_ROOT"); root != "" {
		c.Root = root
	}
	if exts := os.Getenv("CODIFY_EXTENSIONS"); exts != "" {
		c.Extensions = splitList(exts)
	}
	if jobs := os.Getenv("CODIFY_JOBS"); jobs != "" {
		n, err := strconv.Atoi(jobs)
		if err != nil {
			return fmt.Errorf("%w: CODIFY_JOBS=%q", ErrInvalidConfig, jobs)
		}
		c.Jobs = n
	}
	if level := os.Getenv("CODIFY_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	return nil
}

// Normalize validates the config and brings extensions into ".ext" form.
func (c *Config) Normalize() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("%w: empty root", ErrInvalidConfig)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("%w: jobs must be at least 1, got %d", ErrInvalidConfig, c.Jobs)
	}
	exts := make([]string, 0, len(c.Extensions))
	for _, ext := range c.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		return fmt.Errorf("%w: no file extensions to walk", ErrInvalidConfig)
	}
	c.Extensions = exts
	if _, err := ParseProtection(c.Protect); err != nil {
		return err
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, s)
	}
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
