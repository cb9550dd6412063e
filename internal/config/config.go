// Package config loads quizengine settings from defaults, an optional YAML
// file, QUIZENGINE_* environment variables and bound command-line flags, in
// increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/wahaj323/quizengine/internal/llm"
	"github.com/wahaj323/quizengine/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. QUIZENGINE_SERVER_ADDR.
const EnvPrefix = "QUIZENGINE"

type Config struct {
	// User is the learner identity of local commands.
	User string `mapstructure:"user"`

	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Client   ClientConfig   `mapstructure:"client"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	LLM      llm.Config     `mapstructure:"llm"`
}

type DatabaseConfig struct {
	// Driver is sqlite or postgres.
	Driver string `mapstructure:"driver"`

	// DSN is a file path for sqlite and a connection URL for postgres. An
	// empty sqlite DSN resolves to store.DefaultDBPath.
	DSN string `mapstructure:"dsn"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`

	// SubmitRate is the sustained submissions per second allowed per user,
	// SubmitBurst the bucket size.
	SubmitRate  float64 `mapstructure:"submit_rate"`
	SubmitBurst int     `mapstructure:"submit_burst"`
}

// ClientConfig points the terminal client at a remote server.
type ClientConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`

	// File is the JSON log destination. Rotation follows the size, backup
	// and age limits.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// New returns a viper instance with every default registered and the
// environment bound. Callers bind flags on it before Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("user", defaultUser())

	v.SetDefault("database.driver", store.DriverSQLite)
	v.SetDefault("database.dsn", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.submit_rate", 1.0)
	v.SetDefault("server.submit_burst", 5)

	v.SetDefault("client.url", "")
	v.SetDefault("client.token", "")
	v.SetDefault("client.timeout", 30*time.Second)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "quizengine")
	v.SetDefault("auth.ttl", 24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", DefaultLogPath())
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)

	// Every key needs a default for AutomaticEnv to reach it on Unmarshal.
	l := llm.DefaultConfig()
	v.SetDefault("llm.provider", l.Provider)
	for name, k := range map[string]llm.KeyConfig{
		llm.ProviderAnthropic:  l.Anthropic,
		llm.ProviderOpenAI:     l.OpenAI,
		llm.ProviderOpenRouter: l.OpenRouter,
		llm.ProviderGemini:     l.Gemini,
	} {
		v.SetDefault("llm."+name+".api_key", k.APIKey)
		v.SetDefault("llm."+name+".model", k.Model)
		v.SetDefault("llm."+name+".base_url", k.BaseURL)
	}
	v.SetDefault("llm.retry.max_attempts", l.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", l.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", l.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", l.Retry.Multiplier)
	v.SetDefault("llm.timeout", l.Timeout)
}

// Load reads the config file and decodes v. With an empty file the default
// location is tried and may be absent; an explicit file must exist.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		return fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver)
	}
	if c.Database.Driver == store.DriverPostgres && c.Database.DSN == "" {
		return errors.New("database.dsn is required for postgres")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ValidateServer adds the checks of serve mode.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret is required to serve the API")
	}
	if c.Server.SubmitRate <= 0 || c.Server.SubmitBurst < 1 {
		return errors.New("server.submit_rate and server.submit_burst must be positive")
	}
	return nil
}

// ResolveDSN returns the database DSN, falling back to the default SQLite
// file.
func (c *Config) ResolveDSN() (string, error) {
	if c.Database.DSN != "" {
		if c.Database.Driver == store.DriverSQLite {
			return c.Database.DSN, store.EnsureDir(c.Database.DSN)
		}
		return c.Database.DSN, nil
	}
	return store.DefaultDBPath()
}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "quizengine"), nil
}

// DefaultLogPath returns $XDG_STATE_HOME/quizengine/quizengine.log, falling
// back to ~/.local/state.
func DefaultLogPath() string {
	state := os.Getenv("XDG_STATE_HOME")
	if state == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "quizengine.log")
		}
		state = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(state, "quizengine", "quizengine.log")
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "learner"
}
