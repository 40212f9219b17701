// Package daemon runs the verification pipeline continuously: on filesystem
// changes under the project's source tree, and on a periodic schedule as a
// backstop. Runs are strictly serialized; triggers arriving mid-run coalesce
// into a single pending re-run.
package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/cratecheck/internal/config"
)

// RunFunc executes one verification run. Failures are the callee's to
// record (history, metrics); the daemon keeps going either way.
type RunFunc func(ctx context.Context)

// Options configures a Daemon.
type Options struct {
	ProjectDir string
	Settings   config.Daemon
	Run        RunFunc
	// Metrics, when non-nil together with Settings.MetricsAddr, is served
	// over HTTP for the daemon's lifetime.
	Metrics http.Handler
}

// Daemon owns the trigger loop. Trigger is safe to call from any goroutine.
type Daemon struct {
	opts    Options
	trigger chan string
}

func New(opts Options) *Daemon {
	return &Daemon{
		opts: opts,
		// Buffer of one: a trigger during a run is remembered, further
		// triggers coalesce into it.
		trigger: make(chan string, 1),
	}
}

// Trigger requests a run. Non-blocking; redundant triggers coalesce.
func (d *Daemon) Trigger(reason string) {
	select {
	case d.trigger <- reason:
	default:
	}
}

// Run starts the watcher, the scheduler, and the optional metrics server,
// then serves triggers until ctx is canceled. An immediate first run fires
// at startup so the daemon never sits idle on stale state.
func (d *Daemon) Run(ctx context.Context) error {
	watchRoot := filepath.Join(d.opts.ProjectDir, d.opts.Settings.Watch)
	watcher, err := NewWatcher(watchRoot, d.opts.Settings.Debounce, d.Trigger)
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Start(ctx); err != nil {
		return err
	}

	sched, err := NewScheduler(d.opts.Settings.Interval, func() { d.Trigger("schedule") })
	if err != nil {
		return err
	}
	sched.Start()
	defer func() { _ = sched.Stop() }()

	if d.opts.Settings.MetricsAddr != "" && d.opts.Metrics != nil {
		d.serveMetrics(ctx)
	}

	d.Trigger("startup")

	for {
		select {
		case <-ctx.Done():
			slog.Info("Daemon shutting down")
			return nil
		case reason := <-d.trigger:
			slog.Info("Verification run triggered", "reason", reason)
			d.opts.Run(ctx)
		}
	}
}

func (d *Daemon) serveMetrics(ctx context.Context) {
	srv := &http.Server{
		Addr:              d.opts.Settings.MetricsAddr,
		Handler:           d.opts.Metrics,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("Serving metrics", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
