package app

import (
	"testing"
	"time"
)

func TestEnvHelpers_Defaults(t *testing.T) {
	if got := EnvString("VIGIL_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("EnvString=%q", got)
	}
	if got := EnvBool("VIGIL_TEST_UNSET", true); got != true {
		t.Fatalf("EnvBool=%v", got)
	}
	if got := EnvInt("VIGIL_TEST_UNSET", 7); got != 7 {
		t.Fatalf("EnvInt=%d", got)
	}
	if got := EnvDuration("VIGIL_TEST_UNSET", time.Minute); got != time.Minute {
		t.Fatalf("EnvDuration=%v", got)
	}
}

func TestEnvHelpers_InvalidFallsBack(t *testing.T) {
	t.Setenv("VIGIL_TEST_BAD", "not-a-number")

	if got := EnvInt("VIGIL_TEST_BAD", 7); got != 7 {
		t.Fatalf("EnvInt=%d want fallback", got)
	}
	if got := EnvInt32("VIGIL_TEST_BAD", 9); got != 9 {
		t.Fatalf("EnvInt32=%d want fallback", got)
	}
	if got := EnvDuration("VIGIL_TEST_BAD", time.Minute); got != time.Minute {
		t.Fatalf("EnvDuration=%v want fallback", got)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("VIGIL_HTTP_ADDR", "127.0.0.1:9999")
	t.Setenv("VIGIL_REAPER_RESTART_BACKOFF", "500ms")

	cfg := LoadConfig()
	if cfg.HTTPAddr != "127.0.0.1:9999" {
		t.Fatalf("HTTPAddr=%q", cfg.HTTPAddr)
	}
	if cfg.ReaperRestartBackoff != 500*time.Millisecond {
		t.Fatalf("ReaperRestartBackoff=%v", cfg.ReaperRestartBackoff)
	}
}
