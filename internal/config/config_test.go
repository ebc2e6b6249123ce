package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, InteractiveAuto, cfg.Interactive)
	assert.Equal(t, 3, cfg.Prompt.Attempts)
	assert.False(t, cfg.Prompt.Optional)
	assert.True(t, cfg.Prompt.Groups)
	assert.True(t, cfg.Keyring.Enabled)
	assert.Equal(t, "paramflow", cfg.Keyring.Service)
	assert.Len(t, cfg.ResolverOptions(), 3)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	content := `log:
  level: debug
interactive: never
prompt:
  optional: true
  attempts: 5
env_files:
  - ci.env
keyring:
  service: acme
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("PARAMFLOW_PROMPT_ATTEMPTS", "2")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, InteractiveNever, cfg.Interactive)
	assert.True(t, cfg.Prompt.Optional)
	assert.Equal(t, 2, cfg.Prompt.Attempts)
	assert.Equal(t, []string{"ci.env"}, cfg.EnvFiles)
	assert.Equal(t, "acme", cfg.Keyring.Service)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidSettings(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	t.Setenv("PARAMFLOW_INTERACTIVE", "sometimes")
	_, err := Load(New(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid interactive mode 'sometimes'")
}

func TestInteractiveFor(t *testing.T) {
	tests := []struct {
		mode     string
		terminal bool
		want     bool
	}{
		{InteractiveAuto, true, true},
		{InteractiveAuto, false, false},
		{InteractiveAlways, false, true},
		{InteractiveNever, true, false},
	}

	for _, tt := range tests {
		cfg := &Config{Interactive: tt.mode}
		assert.Equal(t, tt.want, cfg.InteractiveFor(tt.terminal), "mode %s terminal %v", tt.mode, tt.terminal)
	}
}
