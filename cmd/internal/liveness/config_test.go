package liveness

import (
	"errors"
	"testing"
	"time"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}

	if cfg.SessionIdleTimeout != 30*time.Minute {
		t.Fatalf("SessionIdleTimeout=%v want=30m", cfg.SessionIdleTimeout)
	}
	if cfg.SessionMaxDuration != 8*time.Hour {
		t.Fatalf("SessionMaxDuration=%v want=8h", cfg.SessionMaxDuration)
	}
	if cfg.MachineIdleTimeout != 10*time.Minute {
		t.Fatalf("MachineIdleTimeout=%v want=10m", cfg.MachineIdleTimeout)
	}
	if cfg.PollInterval != 60*time.Second {
		t.Fatalf("PollInterval=%v want=60s", cfg.PollInterval)
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("VIGIL_SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("VIGIL_SESSION_MAX_DURATION", "1h")
	t.Setenv("VIGIL_MACHINE_IDLE_TIMEOUT", "90s")
	t.Setenv("VIGIL_POLL_INTERVAL", "10s")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}

	if cfg.SessionIdleTimeout != 5*time.Minute ||
		cfg.SessionMaxDuration != time.Hour ||
		cfg.MachineIdleTimeout != 90*time.Second ||
		cfg.PollInterval != 10*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigFromEnv_Invalid(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{name: "garbage duration", key: "VIGIL_POLL_INTERVAL", val: "soon"},
		{name: "zero duration", key: "VIGIL_SESSION_IDLE_TIMEOUT", val: "0s"},
		{name: "negative duration", key: "VIGIL_MACHINE_IDLE_TIMEOUT", val: "-5m"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
				t.Fatalf("err=%v want=ErrConfig", err)
			}
		})
	}
}

func TestLoadConfigFromEnv_IdleBeyondMaxDuration(t *testing.T) {
	t.Setenv("VIGIL_SESSION_IDLE_TIMEOUT", "2h")
	t.Setenv("VIGIL_SESSION_MAX_DURATION", "1h")

	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("err=%v want=ErrConfig", err)
	}
}
