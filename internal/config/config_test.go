package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `machine:
  product_a: Cola
  history_limit: 10
driver:
  mode: script
  script: inputs.txt
logger:
  level: debug
metrics:
  enabled: true
shutdown_timeout: 2s
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "Meet", cfg.Machine.ProductA)
	assert.Equal(t, "Etirps", cfg.Machine.ProductB)
	assert.Equal(t, DriverTerminal, cfg.Driver.Mode)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "vending.yml", sampleYAML)

	cfg, mgr, err := Load(path)
	require.NoError(t, err)
	defer mgr.Close()

	assert.Equal(t, "Cola", cfg.Machine.ProductA)
	assert.Equal(t, "Etirps", cfg.Machine.ProductB, "unset keys keep defaults")
	assert.Equal(t, 10, cfg.Machine.HistoryLimit)
	assert.Equal(t, DriverScript, cfg.Driver.Mode)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, OutputStderr, cfg.Logger.Output)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	assert.Same(t, cfg, Current(mgr))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "vending.yml", sampleYAML)
	t.Setenv("VENDING_PRODUCT_B", "Soda")
	t.Setenv("VENDING_LOG_LEVEL", "warn")
	t.Setenv("VENDING_SHUTDOWN_TIMEOUT", "750ms")

	cfg, mgr, err := Load(path)
	require.NoError(t, err)
	defer mgr.Close()

	assert.Equal(t, "Cola", cfg.Machine.ProductA)
	assert.Equal(t, "Soda", cfg.Machine.ProductB)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, 750*time.Millisecond, cfg.ShutdownTimeout)
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	path := writeConfig(t, "vending.yml", "driver:\n  mode: script\n")

	_, _, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "vending.json", `{"machine": {"product_b": "Tea"}, "logger": {"level": "error"}}`)

	cfg, mgr, err := Load(path)
	require.NoError(t, err)
	defer mgr.Close()

	assert.Equal(t, "Tea", cfg.Machine.ProductB)
	assert.Equal(t, "error", cfg.Logger.Level)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.Logger.Level = "loud" }},
		{"bad mode", func(c *Config) { c.Driver.Mode = "web" }},
		{"script without file", func(c *Config) { c.Driver.Mode = DriverScript }},
		{"bad output", func(c *Config) { c.Logger.Output = "syslog" }},
		{"file without name", func(c *Config) { c.Logger.Output = OutputFile; c.Logger.Filename = "" }},
		{"bad rotate", func(c *Config) { c.Logger.Output = OutputFile; c.Logger.Rotate = "weekly" }},
		{"negative history", func(c *Config) { c.Machine.HistoryLimit = -1 }},
		{"metrics without addr", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Addr = "" }},
		{"metrics path", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Path = "metrics" }},
		{"negative timeout", func(c *Config) { c.ShutdownTimeout = -time.Second }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	assert.ErrorIs(t, ValidateAny("nope"), ErrInvalidConfig)
	assert.NoError(t, ValidateAny(Defaults()))
}
