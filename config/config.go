// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the node configuration file.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/stakeyard/stakeyard/stakeyard"
)

// Config is the node configuration. Zero values fall back to defaults,
// except the role lists which simply stay empty.
type Config struct {
	DataDir        string `yaml:"dataDir"`
	APIAddr        string `yaml:"apiAddr"`
	AllowedOrigins string `yaml:"allowedOrigins"`
	MetricsAddr    string `yaml:"metricsAddr"`

	PoolAddr string `yaml:"poolAddr"`
	AssetA   string `yaml:"assetA"`
	AssetB   string `yaml:"assetB"`

	Admins    []string `yaml:"admins"`
	Rewarders []string `yaml:"rewarders"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:        ".stakeyard",
		APIAddr:        "localhost:8669",
		AllowedOrigins: "*",
	}
}

// Load reads and validates a configuration file. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WithMessage(err, "parse config")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = Default().DataDir
	}
	if cfg.APIAddr == "" {
		cfg.APIAddr = Default().APIAddr
	}
	if cfg.AllowedOrigins == "" {
		cfg.AllowedOrigins = Default().AllowedOrigins
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for _, field := range []struct {
		name, value string
	}{
		{"poolAddr", c.PoolAddr},
		{"assetA", c.AssetA},
		{"assetB", c.AssetB},
	} {
		if field.value == "" {
			continue
		}
		if _, err := stakeyard.ParseAddress(field.value); err != nil {
			return errors.WithMessagef(err, "config field %s", field.name)
		}
	}
	for _, addr := range append(append([]string(nil), c.Admins...), c.Rewarders...) {
		if _, err := stakeyard.ParseAddress(addr); err != nil {
			return errors.WithMessage(err, "config role member")
		}
	}
	return nil
}

// AddressOf parses a configured address field, returning the zero address
// for an empty value.
func AddressOf(value string) (stakeyard.Address, error) {
	if value == "" {
		return stakeyard.Address{}, nil
	}
	addr, err := stakeyard.ParseAddress(value)
	if err != nil {
		return stakeyard.Address{}, err
	}
	return *addr, nil
}
