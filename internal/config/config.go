// Copyright 2022 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

// Package config loads the ambient process configuration: logging, the temp
// directory root used by the §4.4 scoped temp file primitive, the default
// state backend URL, and the install retry budget.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config provides the runner's process-level configuration.
type Config struct {
	Debug     bool   `envconfig:"DEBUG"`
	Trace     bool   `envconfig:"TRACE"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"` // "text" or "json"

	TempDir string `envconfig:"TEMP_DIR"` // empty means os.TempDir()

	// StateBackendURL is the default base_path for the StateStore, e.g.
	// "s3://bucket/path", "azure://container/path", "gs://bucket/path", or a
	// plain filesystem path. Runners may override this per-instance.
	StateBackendURL string `envconfig:"STATE_BACKEND_URL" default:"."`

	InstallMaxRetries int `envconfig:"INSTALL_MAX_RETRIES" default:"3"`
}

// Load loads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{}
	err := envconfig.Process("ELX", &cfg)
	return cfg, err
}
