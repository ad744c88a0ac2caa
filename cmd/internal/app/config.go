package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// If true:
	// - /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool

	// ReaperRestartBackoff is the pause before the reaper loop is
	// restarted after a failed iteration.
	ReaperRestartBackoff time.Duration
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("VIGIL_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("VIGIL_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("VIGIL_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("VIGIL_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("VIGIL_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("VIGIL_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("VIGIL_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("VIGIL_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("VIGIL_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("VIGIL_DB_MIN_CONNS", 0),

		ReadinessRequireDB: EnvBool("VIGIL_READINESS_REQUIRE_DB", false),

		ReaperRestartBackoff: EnvDuration("VIGIL_REAPER_RESTART_BACKOFF", 5*time.Second),
	}
}
