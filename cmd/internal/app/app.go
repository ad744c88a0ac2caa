// Package app wires the vigil runtime: config, logging, the reaper loop,
// the HTTP surface, and the realtime presence gateway.
//
// It is intentionally small and deterministic to keep behavior predictable.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"vigil/cmd/internal/liveness"
	"vigil/cmd/internal/realtime"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App is the vigil runtime: it owns the reaper loop, the HTTP server, and
// the presence gateway dependencies.
type App struct {
	cfg Config
	log Logger

	dbPool    *pgxpool.Pool
	dbEnabled bool

	metricsReg *prometheus.Registry

	ws     *realtime.WSGateway
	reaper *liveness.Reaper
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	store, dbPool, dbEnabled, err := newStore(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	reaperCfg, err := liveness.LoadConfigFromEnv()
	if err != nil {
		if dbPool != nil {
			dbPool.Close()
		}
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ws := realtime.NewWSGateway(log, realtime.NewHub(log))
	emitter := liveness.NewEmitter(ws.Hub(), nil)
	reaper := liveness.NewReaper(log, reaperCfg, store, emitter, liveness.NewMetrics(reg))

	return &App{
		cfg:        cfg,
		log:        log,
		dbPool:     dbPool,
		dbEnabled:  dbEnabled,
		metricsReg: reg,
		ws:         ws,
		reaper:     reaper,
	}, nil
}

// Run starts the reaper loop and the HTTP server, and blocks until
// context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.ws, a.metricsReg)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(mux, a.log),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	reaperDone := make(chan struct{})
	go a.runReaper(ctx, reaperDone)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	// The reaper checks ctx only at the sleep boundary, so wait for the
	// current iteration's I/O to finish before closing the pool.
	select {
	case <-reaperDone:
	case <-shutdownCtx.Done():
		a.log.Error("reaper.shutdown.timeout")
	}

	if a.dbPool != nil {
		a.dbPool.Close()
	}

	a.log.Info("server.stopped")
	return nil
}

// runReaper hosts the reaper loop with crash-restart semantics: a failed
// iteration surfaces here, gets logged, and the loop starts over after a
// backoff. There is no in-loop retry.
func (a *App) runReaper(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	for {
		err := a.reaper.Run(ctx)
		if err == nil {
			return
		}

		a.log.Error("reaper.crash", "err", err, "restart_in", a.cfg.ReaperRestartBackoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(a.cfg.ReaperRestartBackoff):
		}
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStore decides between Postgres-backed persistence and the in-memory dev store.
func newStore(ctx context.Context, cfg Config, log Logger) (liveness.Store, *pgxpool.Pool, bool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return liveness.NewInMemoryStore(), nil, false, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, false, err
	}

	log.Info("db.enabled.postgres_store")

	// Ownership model: app owns the pool lifecycle; the store holds a
	// reference only.
	return liveness.NewPostgresStore(pool), pool, true, nil
}
