package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const defaultShutdownTimeout = 10 * time.Second

type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
	// ShutdownTimeout is nil when the key is absent. An explicit 0 disables
	// the shutdown bound.
	ShutdownTimeout *time.Duration `yaml:"shutdown_timeout"`
}

func (a AppConfig) GracefulTimeout() time.Duration {
	if a.ShutdownTimeout == nil {
		return defaultShutdownTimeout
	}
	return *a.ShutdownTimeout
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ScheduleConfig calls a component method on a cron schedule.
type ScheduleConfig struct {
	Name   string `yaml:"name"`
	Spec   string `yaml:"spec"`
	ID     string `yaml:"component"`
	Method string `yaml:"method"`
	Args   []any  `yaml:"args"`
}

type Config struct {
	App       AppConfig        `yaml:"app"`
	Log       LogConfig        `yaml:"log"`
	Schedules []ScheduleConfig `yaml:"schedules"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads an optional .env file, then the YAML file at path (skipped when
// path is empty), then applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DEEPCALL_APP_NAME"); v != "" {
		c.App.Name = v
	}
	if v := os.Getenv("DEEPCALL_ENV"); v != "" {
		c.App.Environment = v
	}
	if v := os.Getenv("DEEPCALL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "deepcall"
	}
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.ShutdownTimeout == nil {
		d := defaultShutdownTimeout
		c.App.ShutdownTimeout = &d
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.App.GracefulTimeout() < 0 {
		errs = append(errs, errors.New("app.shutdown_timeout must not be negative"))
	}
	for i, s := range c.Schedules {
		if s.ID == "" || s.Method == "" {
			errs = append(errs, fmt.Errorf("schedules[%d]: component and method are required", i))
		}
		if _, err := cron.ParseStandard(s.Spec); err != nil {
			errs = append(errs, fmt.Errorf("schedules[%d]: invalid spec %q: %w", i, s.Spec, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
