// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Package config assembles the mdstudio configuration from defaults, a YAML
// file, a .env file, MDSTUDIO_* environment variables and command-line flags.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/mdstudio/mdstudio/internal/xdg"
)

// CodeInvalidConfig is the oops code of every configuration error.
const CodeInvalidConfig = "INVALID_CONFIG"

// EnvPrefix prefixes every environment variable read into Config.
const EnvPrefix = "MDSTUDIO_"

// Indent width bounds.
const (
	MinIndentWidth = 1
	MaxIndentWidth = 8
)

// Config is the resolved mdstudio configuration.
type Config struct {
	OutputDir   string `koanf:"output_dir" env:"OUTPUT_DIR"`
	MainFile    string `koanf:"main_file" env:"MAIN_FILE"`
	DeclFile    string `koanf:"decl_file" env:"DECL_FILE"`
	IndentWidth int    `koanf:"indent_width" env:"INDENT_WIDTH"`
	PluginsDir  string `koanf:"plugins_dir" env:"PLUGINS_DIR"`
	LogFormat   string `koanf:"log_format" env:"LOG_FORMAT"`
	LogLevel    string `koanf:"log_level" env:"LOG_LEVEL"`
	// Jobs caps parallel project compilations. Zero means GOMAXPROCS.
	Jobs        int    `koanf:"jobs" env:"JOBS"`
	MetricsFile string `koanf:"metrics_file" env:"METRICS_FILE"`
	// Timestamp is an RFC 3339 override for the generated file header.
	Timestamp string `koanf:"timestamp" env:"TIMESTAMP"`

	// sourceDateEpoch is SOURCE_DATE_EPOCH, if set.
	sourceDateEpoch *int64
}

// buildEnv holds variables read without the MDSTUDIO_ prefix.
type buildEnv struct {
	SourceDateEpoch *int64 `env:"SOURCE_DATE_EPOCH"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OutputDir:   "build",
		MainFile:    "main.c",
		DeclFile:    "resources.h",
		IndentWidth: 4,
		PluginsDir:  xdg.PluginsDir(),
		LogFormat:   "json",
		LogLevel:    "info",
	}
}

// defaults flattens Default into koanf keys.
func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"output_dir":   d.OutputDir,
		"main_file":    d.MainFile,
		"decl_file":    d.DeclFile,
		"indent_width": d.IndentWidth,
		"plugins_dir":  d.PluginsDir,
		"log_format":   d.LogFormat,
		"log_level":    d.LogLevel,
		"jobs":         d.Jobs,
		"metrics_file": d.MetricsFile,
		"timestamp":    d.Timestamp,
	}
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// File is an explicit config file. It must exist when set.
	File string
	// DefaultFile is read when File is empty and the path exists.
	DefaultFile string
	// Dotenv is the .env file to read. Missing files are ignored.
	Dotenv string
	// Flags contributes the flags the user changed. Flag names use dashes
	// where keys use underscores.
	Flags *pflag.FlagSet
}

// DefaultLoadOptions reads the XDG config file and ./.env.
func DefaultLoadOptions(flags *pflag.FlagSet, file string) LoadOptions {
	return LoadOptions{
		File:        file,
		DefaultFile: xdg.ConfigFile(),
		Dotenv:      ".env",
		Flags:       flags,
	}
}

// Load resolves a Config. Later layers win: defaults, the YAML file, .env,
// the environment, then changed flags.
func Load(opts LoadOptions) (Config, error) {
	k := koanf.New(".")
	for key, val := range defaults() {
		if err := k.Set(key, val); err != nil {
			return Config{}, oops.Code(CodeInvalidConfig).With("key", key).Wrapf(err, "set default")
		}
	}

	path, explicit := opts.File, opts.File != ""
	if !explicit {
		path = opts.DefaultFile
	}
	if path != "" {
		if err := loadFile(k, path, explicit); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code(CodeInvalidConfig).Wrapf(err, "decode config")
	}

	if opts.Dotenv != "" {
		if err := godotenv.Load(opts.Dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, oops.Code(CodeInvalidConfig).With("path", opts.Dotenv).Wrapf(err, "read dotenv")
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, oops.Code(CodeInvalidConfig).Wrapf(err, "parse environment")
	}
	var build buildEnv
	if err := env.Parse(&build); err != nil {
		return Config{}, oops.Code(CodeInvalidConfig).Wrapf(err, "parse SOURCE_DATE_EPOCH")
	}
	cfg.sourceDateEpoch = build.SourceDateEpoch

	if opts.Flags != nil {
		if err := applyFlags(&cfg, opts.Flags); err != nil {
			return Config{}, err
		}
	}
	return cfg, cfg.Validate()
}

func loadFile(k *koanf.Koanf, path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return oops.Code(CodeInvalidConfig).With("path", path).Wrapf(err, "config file")
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return oops.Code(CodeInvalidConfig).With("path", path).Wrapf(err, "load config file")
	}
	return nil
}

// applyFlags overlays only the flags the user set on the command line.
func applyFlags(cfg *Config, flags *pflag.FlagSet) error {
	k := koanf.New(".")
	provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
		if !f.Changed {
			return "", nil
		}
		return strings.ReplaceAll(f.Name, "-", "_"), f.Value.String()
	})
	if err := k.Load(provider, nil); err != nil {
		return oops.Code(CodeInvalidConfig).Wrapf(err, "load flags")
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return oops.Code(CodeInvalidConfig).Wrapf(err, "decode flags")
	}
	return nil
}

// Validate rejects values the generator cannot use.
func (c Config) Validate() error {
	switch {
	case c.OutputDir == "":
		return invalid("output_dir", "must not be empty")
	case c.MainFile == "" || strings.ContainsAny(c.MainFile, `/\`):
		return invalid("main_file", "must be a plain file name")
	case c.DeclFile == "" || strings.ContainsAny(c.DeclFile, `/\`):
		return invalid("decl_file", "must be a plain file name")
	case c.MainFile == c.DeclFile:
		return invalid("decl_file", "must differ from main_file")
	case c.IndentWidth < MinIndentWidth || c.IndentWidth > MaxIndentWidth:
		return invalid("indent_width", "must be between "+strconv.Itoa(MinIndentWidth)+" and "+strconv.Itoa(MaxIndentWidth))
	case c.Jobs < 0:
		return invalid("jobs", "must not be negative")
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return invalid("log_format", "must be json or text")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log_level", "must be debug, info, warn or error")
	}
	if c.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339, c.Timestamp); err != nil {
			return oops.Code(CodeInvalidConfig).With("key", "timestamp").Wrapf(err, "timestamp must be RFC 3339")
		}
	}
	return nil
}

// GeneratedAt returns the header timestamp: the timestamp key, then
// SOURCE_DATE_EPOCH, then now.
func (c Config) GeneratedAt(now func() time.Time) time.Time {
	if c.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339, c.Timestamp); err == nil {
			return t.UTC()
		}
	}
	if c.sourceDateEpoch != nil {
		return time.Unix(*c.sourceDateEpoch, 0).UTC()
	}
	return now().UTC()
}

func invalid(key, reason string) error {
	return oops.Code(CodeInvalidConfig).With("key", key).Errorf("%s %s", key, reason)
}
