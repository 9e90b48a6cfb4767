package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/newthinker/deepvalue/internal/core"
	"github.com/spf13/viper"
)

// Environment variables holding the provider API keys.
const (
	EnvFMPKey          = "API_KEY_FMP"
	EnvAlphaVantageKey = "API_KEY_ALPHA"
)

type Config struct {
	Providers ProvidersConfig `mapstructure:"providers"`
	Report    ReportConfig    `mapstructure:"report"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ProvidersConfig struct {
	FMP          ProviderConfig `mapstructure:"fmp"`
	AlphaVantage ProviderConfig `mapstructure:"alphavantage"`
	Timeout      time.Duration  `mapstructure:"timeout"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// ReportConfig controls the text output.
type ReportConfig struct {
	Divider string `mapstructure:"divider"`
	Format  string `mapstructure:"format"` // "text" or "json"
}

// ArchiveConfig holds run archive settings.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Providers: ProvidersConfig{
			FMP:          ProviderConfig{BaseURL: "https://financialmodelingprep.com/api/v3"},
			AlphaVantage: ProviderConfig{BaseURL: "https://www.alphavantage.co/query"},
			Timeout:      30 * time.Second,
		},
		Report: ReportConfig{
			Divider: "===============================",
			Format:  "text",
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "reports",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("providers.fmp.base_url", d.Providers.FMP.BaseURL)
	v.SetDefault("providers.alphavantage.base_url", d.Providers.AlphaVantage.BaseURL)
	v.SetDefault("providers.timeout", d.Providers.Timeout)
	v.SetDefault("report.divider", d.Report.Divider)
	v.SetDefault("report.format", d.Report.Format)
	v.SetDefault("archive.enabled", d.Archive.Enabled)
	v.SetDefault("archive.type", d.Archive.Type)
	v.SetDefault("archive.path", d.Archive.Path)
}

// Load reads configuration from an optional file, then the environment.
// The API keys always come from API_KEY_FMP and API_KEY_ALPHA when set.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("providers.fmp.api_key", EnvFMPKey); err != nil {
		return nil, fmt.Errorf("binding %s: %w", EnvFMPKey, err)
	}
	if err := v.BindEnv("providers.alphavantage.api_key", EnvAlphaVantageKey); err != nil {
		return nil, fmt.Errorf("binding %s: %w", EnvAlphaVantageKey, err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("reading config: %w", err))
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unmarshaling config: %w", err))
	}

	return &cfg, nil
}

// LoadEnvFile loads a dotenv file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("loading %s: %w", path, err))
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Providers.FMP.APIKey == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("%s is not set", EnvFMPKey))
	}
	if c.Providers.AlphaVantage.APIKey == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("%s is not set", EnvAlphaVantageKey))
	}
	if c.Providers.Timeout <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("providers.timeout must be positive, got %s", c.Providers.Timeout))
	}

	switch c.Report.Format {
	case "text", "json":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown report format %q", c.Report.Format))
	}

	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "localfs":
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive.path required when archive type is localfs"))
			}
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive.s3.bucket required when archive type is s3"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown archive type %q", c.Archive.Type))
		}
	}

	return nil
}
