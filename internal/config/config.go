package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/example/tx-engine/internal/engine"
)

// Config holds the runtime configuration. Every value has a default matching
// the reference behavior, so an empty environment is valid.
type Config struct {
	Environment    string
	Strict         bool
	MissingAmount  engine.MissingAmountPolicy
	LockedAccounts engine.LockedAccountPolicy
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:    envOrDefault("TXENGINE_ENV", "development"),
		MissingAmount:  engine.MissingAmountPolicy(envOrDefault("TXENGINE_MISSING_AMOUNT", string(engine.MissingAmountZero))),
		LockedAccounts: engine.LockedAccountPolicy(envOrDefault("TXENGINE_LOCKED_ACCOUNTS", string(engine.LockedAccountsAllow))),
	}

	if raw := os.Getenv("TXENGINE_STRICT"); raw != "" {
		strict, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("TXENGINE_STRICT must be a boolean, got %q", raw)
		}
		cfg.Strict = strict
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is valid, naming every bad value.
func (c *Config) Validate() error {
	var invalid []string

	switch c.Environment {
	case "production", "development":
	default:
		invalid = append(invalid, "TXENGINE_ENV")
	}

	switch c.MissingAmount {
	case engine.MissingAmountZero, engine.MissingAmountReject:
	default:
		invalid = append(invalid, "TXENGINE_MISSING_AMOUNT")
	}

	switch c.LockedAccounts {
	case engine.LockedAccountsAllow, engine.LockedAccountsReject:
	default:
		invalid = append(invalid, "TXENGINE_LOCKED_ACCOUNTS")
	}

	if len(invalid) > 0 {
		return errors.New("invalid configuration values: " + strings.Join(invalid, ", "))
	}

	return nil
}

// Policies returns the engine policies selected by the configuration.
func (c *Config) Policies() engine.Policies {
	return engine.Policies{
		MissingAmount:  c.MissingAmount,
		LockedAccounts: c.LockedAccounts,
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
