// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdstudio/mdstudio/internal/config"
	"github.com/mdstudio/mdstudio/pkg/errutil"
)

var clearedEnv = []string{
	"MDSTUDIO_OUTPUT_DIR", "MDSTUDIO_MAIN_FILE", "MDSTUDIO_DECL_FILE",
	"MDSTUDIO_INDENT_WIDTH", "MDSTUDIO_PLUGINS_DIR", "MDSTUDIO_LOG_FORMAT",
	"MDSTUDIO_LOG_LEVEL", "MDSTUDIO_JOBS", "MDSTUDIO_METRICS_FILE",
	"MDSTUDIO_TIMESTAMP", "SOURCE_DATE_EPOCH",
}

// isolate unsets every variable Load reads, restoring them afterwards.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", "/data")
	for _, key := range clearedEnv {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("output-dir", "build", "")
	fs.Int("indent-width", 4, "")
	fs.Int("jobs", 0, "")
	fs.String("log-format", "json", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(config.LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "build", cfg.OutputDir)
	assert.Equal(t, "main.c", cfg.MainFile)
	assert.Equal(t, "resources.h", cfg.DeclFile)
	assert.Equal(t, 4, cfg.IndentWidth)
	assert.Equal(t, "/data/mdstudio/plugins", cfg.PluginsDir)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.Jobs)
	assert.Empty(t, cfg.MetricsFile)
}

func TestLoad_Layers(t *testing.T) {
	isolate(t)
	path := writeFile(t, "config.yaml", "output_dir: from-file\nindent_width: 2\njobs: 3\nmain_file: game.c\n")
	t.Setenv("MDSTUDIO_INDENT_WIDTH", "6")
	t.Setenv("MDSTUDIO_JOBS", "5")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--jobs", "7"}))

	cfg, err := config.Load(config.LoadOptions{File: path, Flags: flags})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.OutputDir, "file beats defaults")
	assert.Equal(t, "game.c", cfg.MainFile)
	assert.Equal(t, 6, cfg.IndentWidth, "env beats file")
	assert.Equal(t, 7, cfg.Jobs, "changed flag beats env")
	assert.Equal(t, "json", cfg.LogFormat, "unchanged flag keeps lower layers")
}

func TestLoad_DefaultFileOnlyWhenPresent(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(config.LoadOptions{DefaultFile: filepath.Join(t.TempDir(), "missing.yaml")})
	require.NoError(t, err)
	assert.Equal(t, "build", cfg.OutputDir)

	present := writeFile(t, "config.yaml", "output_dir: out\n")
	cfg, err = config.Load(config.LoadOptions{DefaultFile: present})
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	isolate(t)

	_, err := config.Load(config.LoadOptions{File: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, config.CodeInvalidConfig)
}

func TestLoad_MalformedFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, "config.yaml", "output_dir: [unclosed\n")

	_, err := config.Load(config.LoadOptions{File: path})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, config.CodeInvalidConfig)
	errutil.AssertErrorContext(t, err, "path", path)
}

func TestLoad_Dotenv(t *testing.T) {
	isolate(t)
	t.Cleanup(func() {
		_ = os.Unsetenv("MDSTUDIO_OUTPUT_DIR")
		_ = os.Unsetenv("MDSTUDIO_MAIN_FILE")
	})
	t.Setenv("MDSTUDIO_MAIN_FILE", "real.c")
	dotenv := writeFile(t, ".env", "MDSTUDIO_OUTPUT_DIR=dotenv-out\nMDSTUDIO_MAIN_FILE=dotenv.c\n")

	cfg, err := config.Load(config.LoadOptions{Dotenv: dotenv})
	require.NoError(t, err)

	assert.Equal(t, "dotenv-out", cfg.OutputDir)
	assert.Equal(t, "real.c", cfg.MainFile, "real environment is not overridden")
}

func TestLoad_MissingDotenvIgnored(t *testing.T) {
	isolate(t)

	_, err := config.Load(config.LoadOptions{Dotenv: filepath.Join(t.TempDir(), ".env")})
	assert.NoError(t, err)
}

func TestLoad_BadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("MDSTUDIO_JOBS", "many")

	_, err := config.Load(config.LoadOptions{})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, config.CodeInvalidConfig)
}

func TestLoad_ValidatesResult(t *testing.T) {
	isolate(t)
	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--indent-width", "12"}))

	_, err := config.Load(config.LoadOptions{Flags: flags})
	require.Error(t, err)
	errutil.AssertErrorContext(t, err, "key", "indent_width")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		key    string
	}{
		{name: "empty output dir", mutate: func(c *config.Config) { c.OutputDir = "" }, key: "output_dir"},
		{name: "main file with path", mutate: func(c *config.Config) { c.MainFile = "src/main.c" }, key: "main_file"},
		{name: "empty decl file", mutate: func(c *config.Config) { c.DeclFile = "" }, key: "decl_file"},
		{name: "same unit names", mutate: func(c *config.Config) { c.DeclFile = c.MainFile }, key: "decl_file"},
		{name: "indent zero", mutate: func(c *config.Config) { c.IndentWidth = 0 }, key: "indent_width"},
		{name: "indent too wide", mutate: func(c *config.Config) { c.IndentWidth = 9 }, key: "indent_width"},
		{name: "negative jobs", mutate: func(c *config.Config) { c.Jobs = -1 }, key: "jobs"},
		{name: "unknown log format", mutate: func(c *config.Config) { c.LogFormat = "xml" }, key: "log_format"},
		{name: "unknown log level", mutate: func(c *config.Config) { c.LogLevel = "trace" }, key: "log_level"},
		{name: "bad timestamp", mutate: func(c *config.Config) { c.Timestamp = "yesterday" }, key: "timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, config.CodeInvalidConfig)
			errutil.AssertErrorContext(t, err, "key", tt.key)
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, config.Default().Validate())
	})
}

func TestGeneratedAt(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 5, 6, 7, 8, 9, 0, time.FixedZone("X", 3600)) }

	t.Run("now when nothing is set", func(t *testing.T) {
		isolate(t)
		cfg, err := config.Load(config.LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, now().UTC(), cfg.GeneratedAt(now))
	})

	t.Run("source date epoch", func(t *testing.T) {
		isolate(t)
		t.Setenv("SOURCE_DATE_EPOCH", "1700000000")
		cfg, err := config.Load(config.LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, time.Unix(1700000000, 0).UTC(), cfg.GeneratedAt(now))
	})

	t.Run("timestamp key wins", func(t *testing.T) {
		isolate(t)
		t.Setenv("SOURCE_DATE_EPOCH", "1700000000")
		t.Setenv("MDSTUDIO_TIMESTAMP", "2026-01-02T03:04:05Z")
		cfg, err := config.Load(config.LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), cfg.GeneratedAt(now))
	})
}
