package liveness

import (
	"os"
	"time"
)

// Policy defaults. Hosts override them through Config, not by editing
// these values.
const (
	// DefaultSessionIdleTimeout is the maximum gap since a session's last
	// recorded activity before it is force-closed.
	DefaultSessionIdleTimeout = 30 * time.Minute

	// DefaultSessionMaxDuration is the maximum total lifetime of a session
	// regardless of activity.
	DefaultSessionMaxDuration = 8 * time.Hour

	// DefaultMachineIdleTimeout is the idle window for machines.
	// Machines have no max-duration policy.
	DefaultMachineIdleTimeout = 10 * time.Minute

	// DefaultPollInterval is the sleep between reap iterations.
	DefaultPollInterval = 60 * time.Second
)

// Config defines the reaper's policy thresholds and polling cadence.
type Config struct {
	SessionIdleTimeout time.Duration
	SessionMaxDuration time.Duration
	MachineIdleTimeout time.Duration
	PollInterval       time.Duration
}

// DefaultConfig returns the production policy defaults.
func DefaultConfig() Config {
	return Config{
		SessionIdleTimeout: DefaultSessionIdleTimeout,
		SessionMaxDuration: DefaultSessionMaxDuration,
		MachineIdleTimeout: DefaultMachineIdleTimeout,
		PollInterval:       DefaultPollInterval,
	}
}

// LoadConfigFromEnv loads reaper configuration from environment variables.
//
// Optional (durations must be valid Go duration strings):
//   - VIGIL_SESSION_IDLE_TIMEOUT
//   - VIGIL_SESSION_MAX_DURATION
//   - VIGIL_MACHINE_IDLE_TIMEOUT
//   - VIGIL_POLL_INTERVAL
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("VIGIL_SESSION_IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.SessionIdleTimeout = d
	}

	if v := os.Getenv("VIGIL_SESSION_MAX_DURATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.SessionMaxDuration = d
	}

	if v := os.Getenv("VIGIL_MACHINE_IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.MachineIdleTimeout = d
	}

	if v := os.Getenv("VIGIL_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.PollInterval = d
	}

	// Invariant: an idle session must expire no later than an aged one.
	if cfg.SessionMaxDuration < cfg.SessionIdleTimeout {
		return Config{}, ErrConfig
	}

	return cfg, nil
}
