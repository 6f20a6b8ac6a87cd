// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package itep provides access to an ITEP gene clustering database and to
// the files laid out under an ITEP root directory.
package itep

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RootEnv is the environment variable holding the ITEP root directory.
const RootEnv = "ITEPROOT"

// ConfigName is the name of the optional configuration file in the ITEP
// root directory.
const ConfigName = "itep.yaml"

// Config locates the ITEP database and data files.
type Config struct {
	// Root is the ITEP root directory. It defaults to $ITEPROOT,
	// or the working directory if that is not set.
	Root string `yaml:"root"`

	// Database is the path to the SQLite database. It defaults
	// to Root/db/DATABASE.sqlite.
	Database string `yaml:"database"`

	// GenBank is the directory holding per-organism GenBank
	// files. It defaults to Root/genbank.
	GenBank string `yaml:"genbank"`
}

// LoadConfig returns the configuration read from the YAML file at path
// with defaults applied. If path is empty, Root/itep.yaml is read if it
// exists.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{Root: os.Getenv(RootEnv)}
	if cfg.Root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("itep: could not determine root directory: %w", err)
		}
		cfg.Root = wd
	}

	optional := path == ""
	if optional {
		path = filepath.Join(cfg.Root, ConfigName)
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("itep: invalid config file %s: %w", path, err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("itep: failed to read config: %w", err)
	}

	if cfg.Database == "" {
		cfg.Database = filepath.Join(cfg.Root, "db", "DATABASE.sqlite")
	}
	if cfg.GenBank == "" {
		cfg.GenBank = filepath.Join(cfg.Root, "genbank")
	}
	return cfg, nil
}

// GenBankPath returns the expected location of the GenBank file for the
// organism.
func (c *Config) GenBankPath(organism string) string {
	return filepath.Join(c.GenBank, organism+".gbk")
}
