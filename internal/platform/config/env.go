// Package config loads process settings from the environment and site
// settings from YAML configuration trees.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	return ParseEnvWithPrefix(target, "")
}

// ParseEnvWithPrefix loads configuration from environment variables, prepending
// prefix to every variable name declared on target.
func ParseEnvWithPrefix(target any, prefix string) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
