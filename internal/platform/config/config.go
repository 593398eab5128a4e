// Package config loads process settings from the environment, optionally
// seeded from dotenv files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvPort            = "PORT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
	EnvAppVersion      = "APP_VERSION"

	DefaultPort            = 8080
	DefaultShutdownTimeout = 10 * time.Second
)

// projectIDEnvVars lists the variables Google Cloud runtimes use for the
// project ID, in lookup order.
var projectIDEnvVars = []string{
	"GOOGLE_CLOUD_PROJECT",
	"GCP_PROJECT",
	"GCLOUD_PROJECT",
	"PROJECT_ID",
}

// Config holds the settings read at startup.
type Config struct {
	Port            int
	ShutdownTimeout time.Duration
	// Version is empty unless APP_VERSION is set; callers fall back to the build version.
	Version string
	// ProjectID enables Cloud Trace fields in request logs when non-empty.
	ProjectID string
}

// Addr returns the listen address for http.Server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Load reads the given dotenv files (missing files are skipped, variables
// already set in the process win) and then parses the environment.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		Port:            DefaultPort,
		ShutdownTimeout: DefaultShutdownTimeout,
		Version:         strings.TrimSpace(os.Getenv(EnvAppVersion)),
		ProjectID:       projectID(),
	}

	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return Config{}, fmt.Errorf("%s: %d out of range 1-65535", EnvPort, port)
		}
		cfg.Port = port
	}

	if v := strings.TrimSpace(os.Getenv(EnvShutdownTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvShutdownTimeout, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("%s: must be positive, got %s", EnvShutdownTimeout, d)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

func projectID() string {
	for _, key := range projectIDEnvVars {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}
