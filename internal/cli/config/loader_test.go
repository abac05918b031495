package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	// An explicitly named but absent config file is an error.
	require.Error(t, err)

	cfg, err = LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultServePort, cfg.ServePort)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "grove.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output: json\nserve_port: 9000\n"), 0o644))

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, 9000, cfg.ServePort)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "grove.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("serve_port: 9000\n"), 0o644))

	t.Setenv("GROVE_SERVE_PORT", "9001")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.ServePort, "env vars beat the config file, weak typing converts the string")
}

func TestLoadConfig_FlagsOverrideEverything(t *testing.T) {
	t.Setenv("GROVE_SERVE_PORT", "9001")
	t.Setenv("GROVE_VERBOSE", "true")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("serve-port", 0, "")
	flags.String("output", "", "")
	require.NoError(t, flags.Parse([]string{"--serve-port", "9002", "--output", "json"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, 9002, cfg.ServePort)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.True(t, cfg.Verbose, "env var still applies for flags that were not set")
}

func TestLoadConfig_UnchangedFlagsDoNotOverride(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("serve-port", 0, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, DefaultServePort, cfg.ServePort, "an unset flag must not clobber the default")
}

func TestLoadConfig_PortRange(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "grove.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("serve_port: 70000\n"), 0o644))

	_, err := LoadConfig(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
