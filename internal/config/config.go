// Package config loads flashshell's YAML configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	BackendLocal  = "local"
	BackendMemory = "memory"
)

type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Document DocumentConfig `yaml:"document"`
	Shell    ShellConfig    `yaml:"shell"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type StoreConfig struct {
	Backend       string `yaml:"backend"`        // local or memory
	Root          string `yaml:"root"`           // directory served by the local backend
	CapacityBytes int64  `yaml:"capacity_bytes"` // reported as total space
}

type DocumentConfig struct {
	MaxBytes     int64 `yaml:"max_bytes"`
	AtomicWrites bool  `yaml:"atomic_writes"`
}

type ShellConfig struct {
	Prompt        string   `yaml:"prompt"`
	Banner        bool     `yaml:"banner"`
	ConfirmTokens []string `yaml:"confirm_tokens"`
	MaxLineBytes  int      `yaml:"max_line_bytes"` // longer input lines are rejected
}

type ServerConfig struct {
	Listen string `yaml:"listen"` // empty serves stdin only
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
	Output string `yaml:"output"` // stderr, stdout or a file path
}

func Defaults() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:       BackendLocal,
			Root:          "./data",
			CapacityBytes: 1 << 20,
		},
		Document: DocumentConfig{
			MaxBytes: 4096,
		},
		Shell: ShellConfig{
			Prompt:        "> ",
			Banner:        true,
			ConfirmTokens: []string{"Y", "YES"},
			MaxLineBytes:  8192,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Load reads a YAML config file and applies env var overrides. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := ApplyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps FLASHSHELL_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("FLASHSHELL_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("FLASHSHELL_STORE_ROOT"); v != "" {
		cfg.Store.Root = v
	}
	if v := os.Getenv("FLASHSHELL_STORE_CAPACITY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("FLASHSHELL_STORE_CAPACITY_BYTES: %w", err)
		}
		cfg.Store.CapacityBytes = n
	}
	if v := os.Getenv("FLASHSHELL_DOCUMENT_MAX_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("FLASHSHELL_DOCUMENT_MAX_BYTES: %w", err)
		}
		cfg.Document.MaxBytes = n
	}
	if v := os.Getenv("FLASHSHELL_DOCUMENT_ATOMIC_WRITES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FLASHSHELL_DOCUMENT_ATOMIC_WRITES: %w", err)
		}
		cfg.Document.AtomicWrites = b
	}
	if v := os.Getenv("FLASHSHELL_SHELL_CONFIRM_TOKENS"); v != "" {
		cfg.Shell.ConfirmTokens = strings.Split(v, ",")
	}
	if v := os.Getenv("FLASHSHELL_SHELL_MAX_LINE_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FLASHSHELL_SHELL_MAX_LINE_BYTES: %w", err)
		}
		cfg.Shell.MaxLineBytes = n
	}
	if v := os.Getenv("FLASHSHELL_SERVER_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("FLASHSHELL_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FLASHSHELL_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("FLASHSHELL_LOGGING_OUTPUT"); v != "" {
		cfg.Logging.Output = v
	}
	return nil
}

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

func (v *ValidationError) add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate reports every problem in cfg at once as a *ValidationError.
func Validate(cfg *Config) error {
	ve := &ValidationError{}

	switch cfg.Store.Backend {
	case BackendLocal:
		if strings.TrimSpace(cfg.Store.Root) == "" {
			ve.add("store.root is required for the local backend")
		}
	case BackendMemory:
	default:
		ve.add("store.backend %q must be %q or %q", cfg.Store.Backend, BackendLocal, BackendMemory)
	}

	if cfg.Store.CapacityBytes <= 0 {
		ve.add("store.capacity_bytes must be positive, got %d", cfg.Store.CapacityBytes)
	}
	if cfg.Document.MaxBytes <= 0 {
		ve.add("document.max_bytes must be positive, got %d", cfg.Document.MaxBytes)
	}

	if cfg.Shell.MaxLineBytes <= 0 {
		ve.add("shell.max_line_bytes must be positive, got %d", cfg.Shell.MaxLineBytes)
	}

	tokens := 0
	for _, t := range cfg.Shell.ConfirmTokens {
		if strings.TrimSpace(t) != "" {
			tokens++
		}
	}
	if tokens == 0 {
		ve.add("shell.confirm_tokens needs at least one token")
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		ve.add("logging.level %q is not one of debug, info, warn, error", cfg.Logging.Level)
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "console", "json":
	default:
		ve.add("logging.format %q must be console or json", cfg.Logging.Format)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}
