package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	wink "github.com/tj-smith47/wink-go"
	"gopkg.in/yaml.v3"
)

// config is the CLI configuration, read from YAML and overridden by
// WINK_* environment variables and flags.
type config struct {
	wink.Credentials `yaml:",inline"`

	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// flagSource is the part of *cli.Context that config resolution reads.
type flagSource interface {
	IsSet(name string) bool
	String(name string) string
	Duration(name string) time.Duration
}

// defaultConfigPath returns $HOME/.config/wink/config.yaml.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "wink", "config.yaml"), nil
}

// loadConfig reads path. A missing file yields an empty config unless the
// path was given explicitly.
func loadConfig(path string, explicit bool) (*config, error) {
	var cfg config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			logrus.WithField("path", path).Debug("No config file, using flags and environment")
			return &cfg, nil
		}
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// resolveConfig loads the config file and applies flag and environment
// overrides, then fills defaults.
func resolveConfig(flags flagSource) (*config, error) {
	path := flags.String("config")
	explicit := flags.IsSet("config")
	if path == "" {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return nil, err
		}
	}

	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"client-id", &cfg.ClientID},
		{"client-secret", &cfg.ClientSecret},
		{"username", &cfg.Username},
		{"password", &cfg.Passphrase},
		{"base-url", &cfg.BaseURL},
	}
	for _, o := range overrides {
		if flags.IsSet(o.flag) {
			*o.dst = flags.String(o.flag)
		}
	}
	if flags.IsSet("timeout") {
		cfg.Timeout = flags.Duration("timeout")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = wink.DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = wink.DefaultTimeout
	}
	return cfg, nil
}
