package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/deepvalue/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Defaults()
	cfg.Providers.FMP.APIKey = "fmp-key"
	cfg.Providers.AlphaVantage.APIKey = "alpha-key"
	return cfg
}

func TestLoad_FromFile(t *testing.T) {
	t.Setenv(EnvFMPKey, "")
	t.Setenv(EnvAlphaVantageKey, "")
	t.Setenv("TEST_S3_SECRET", "shh")

	content := []byte(`
providers:
  timeout: 5s
  fmp:
    api_key: "file-fmp"
report:
  divider: "----"
archive:
  enabled: true
  type: s3
  s3:
    bucket: reports
    secret_key: "${TEST_S3_SECRET}"
`)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, content, 0644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Providers.Timeout)
	assert.Equal(t, "file-fmp", cfg.Providers.FMP.APIKey)
	assert.Equal(t, "https://www.alphavantage.co/query", cfg.Providers.AlphaVantage.BaseURL)
	assert.Equal(t, "----", cfg.Report.Divider)
	assert.Equal(t, "s3", cfg.Archive.Type)
	assert.Equal(t, "shh", cfg.Archive.S3.SecretKey)
}

func TestLoad_EnvironmentKeys(t *testing.T) {
	t.Setenv(EnvFMPKey, "env-fmp")
	t.Setenv(EnvAlphaVantageKey, "env-alpha")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-fmp", cfg.Providers.FMP.APIKey)
	assert.Equal(t, "env-alpha", cfg.Providers.AlphaVantage.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Providers.Timeout)
	assert.Equal(t, "===============================", cfg.Report.Divider)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConfigInvalid))
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv(EnvFMPKey, "")
	os.Unsetenv(EnvFMPKey)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("API_KEY_FMP=from-dotenv\n"), 0600))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-dotenv", os.Getenv(EnvFMPKey))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), ".env")))
	assert.NoError(t, LoadEnvFile(""))
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 30*time.Second, cfg.Providers.Timeout)
	assert.Equal(t, "localfs", cfg.Archive.Type)
	assert.False(t, cfg.Archive.Enabled)
	assert.Equal(t, "text", cfg.Report.Format)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr *core.Error
	}{
		{"valid config", func(c *Config) {}, nil},
		{"missing fmp key", func(c *Config) { c.Providers.FMP.APIKey = "" }, core.ErrConfigMissing},
		{"missing alpha key", func(c *Config) { c.Providers.AlphaVantage.APIKey = "" }, core.ErrConfigMissing},
		{"zero timeout", func(c *Config) { c.Providers.Timeout = 0 }, core.ErrConfigInvalid},
		{"archive localfs", func(c *Config) { c.Archive.Enabled = true }, nil},
		{"archive s3 without bucket", func(c *Config) {
			c.Archive.Enabled = true
			c.Archive.Type = "s3"
		}, core.ErrConfigMissing},
		{"archive unknown type", func(c *Config) {
			c.Archive.Enabled = true
			c.Archive.Type = "ftp"
		}, core.ErrConfigInvalid},
		{"disabled archive ignores type", func(c *Config) { c.Archive.Type = "ftp" }, nil},
		{"json format", func(c *Config) { c.Report.Format = "json" }, nil},
		{"unknown format", func(c *Config) { c.Report.Format = "html" }, core.ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.Equal(t, core.ExitConfig, core.ExitCode(err))
		})
	}
}
