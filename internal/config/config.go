// internal/config/config.go
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/mtoohey31/uncommitted/internal/errors"
)

type Config struct {
	// Scanning
	Jobs           int  `yaml:"jobs"`
	FollowSymlinks bool `yaml:"follow_symlinks"`

	// Status commands
	CommandTimeout time.Duration `yaml:"command_timeout"`

	// Diagnostics
	LogLevel string `yaml:"log_level"`
}

func NewConfig() *Config {
	return &Config{
		Jobs:           0,
		FollowSymlinks: false,
		CommandTimeout: 0,
		LogLevel:       "error",
	}
}

// Workers returns the number of traversal workers to start. Zero or a
// negative value means one fewer than the available CPUs, never below one.
func (c *Config) Workers() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return max(runtime.NumCPU()-1, 1)
}

func (c *Config) Validate() error {
	if c.Jobs < 0 {
		return errors.WithStackTrace(fmt.Errorf("jobs must not be negative, got %d", c.Jobs))
	}
	if c.CommandTimeout < 0 {
		return errors.WithStackTrace(fmt.Errorf("command_timeout must not be negative, got %s", c.CommandTimeout))
	}
	return nil
}
