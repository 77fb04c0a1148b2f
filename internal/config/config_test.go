package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, BackendLocal, cfg.Store.Backend)
	assert.Equal(t, int64(4096), cfg.Document.MaxBytes)
	assert.False(t, cfg.Document.AtomicWrites)
	assert.Equal(t, []string{"Y", "YES"}, cfg.Shell.ConfirmTokens)
	assert.Equal(t, "> ", cfg.Shell.Prompt)
	assert.Equal(t, 8192, cfg.Shell.MaxLineBytes)
	assert.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Defaults(), cfg)
	})

	t.Run("yaml overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flashshell.yaml")
		content := `
store:
  backend: memory
document:
  max_bytes: 512
  atomic_writes: true
shell:
  confirm_tokens: [OK]
logging:
  level: debug
  format: json
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, BackendMemory, cfg.Store.Backend)
		assert.Equal(t, int64(512), cfg.Document.MaxBytes)
		assert.True(t, cfg.Document.AtomicWrites)
		assert.Equal(t, []string{"OK"}, cfg.Shell.ConfirmTokens)
		assert.Equal(t, "debug", cfg.Logging.Level)
		// untouched fields keep their defaults
		assert.Equal(t, "./data", cfg.Store.Root)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("store: [\n"), 0o600))

		_, err := Load(path)
		assert.ErrorContains(t, err, "parse config")
	})
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("FLASHSHELL_STORE_BACKEND", "memory")
	t.Setenv("FLASHSHELL_DOCUMENT_MAX_BYTES", "2048")
	t.Setenv("FLASHSHELL_DOCUMENT_ATOMIC_WRITES", "true")
	t.Setenv("FLASHSHELL_SHELL_CONFIRM_TOKENS", "Y,OUI")
	t.Setenv("FLASHSHELL_SERVER_LISTEN", "127.0.0.1:2323")
	t.Setenv("FLASHSHELL_SHELL_MAX_LINE_BYTES", "1024")

	cfg := Defaults()
	require.NoError(t, ApplyEnvOverrides(cfg))

	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, int64(2048), cfg.Document.MaxBytes)
	assert.True(t, cfg.Document.AtomicWrites)
	assert.Equal(t, []string{"Y", "OUI"}, cfg.Shell.ConfirmTokens)
	assert.Equal(t, "127.0.0.1:2323", cfg.Server.Listen)
	assert.Equal(t, 1024, cfg.Shell.MaxLineBytes)
}

func TestApplyEnvOverrides_BadNumber(t *testing.T) {
	t.Setenv("FLASHSHELL_DOCUMENT_MAX_BYTES", "lots")

	err := ApplyEnvOverrides(Defaults())
	assert.ErrorContains(t, err, "FLASHSHELL_DOCUMENT_MAX_BYTES")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "sdcard" },
			wantErr: "store.backend",
		},
		{
			name:    "local backend without root",
			mutate:  func(c *Config) { c.Store.Root = " " },
			wantErr: "store.root",
		},
		{
			name:    "zero document ceiling",
			mutate:  func(c *Config) { c.Document.MaxBytes = 0 },
			wantErr: "document.max_bytes",
		},
		{
			name:    "no confirm tokens",
			mutate:  func(c *Config) { c.Shell.ConfirmTokens = []string{"", " "} },
			wantErr: "shell.confirm_tokens",
		},
		{
			name:    "zero line cap",
			mutate:  func(c *Config) { c.Shell.MaxLineBytes = 0 },
			wantErr: "shell.max_line_bytes",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:   "memory backend needs no root",
			mutate: func(c *Config) { c.Store.Backend = BackendMemory; c.Store.Root = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
