package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/cratecheck/internal/daemon"
	"git.home.luguber.info/inful/cratecheck/internal/features"
	"git.home.luguber.info/inful/cratecheck/internal/metrics"
	"git.home.luguber.info/inful/cratecheck/internal/pipeline"
	"git.home.luguber.info/inful/cratecheck/internal/runner"
	"git.home.luguber.info/inful/cratecheck/internal/toolchain"
)

// DaemonCmd runs the pipeline continuously: on source changes (debounced),
// and periodically as a backstop. Stage failures are recorded, not fatal to
// the daemon.
type DaemonCmd struct {
	Toolchain string `arg:"" optional:"" help:"Toolchain variant to run under; omit for the default toolchain"`
}

func (d *DaemonCmd) Run(cli *CLI) error {
	cfg, err := resolveConfig(cli, d.Toolchain)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exec := runner.NewExec(cfg.ProjectDir)
	if err := enterProjectDir(exec, cfg.ProjectDir); err != nil {
		return err
	}

	// Toolchain and feature selection are resolved once for the daemon's
	// lifetime, matching the single-shot run's immutability contract.
	sel := toolchain.Resolve(cfg.Toolchain)
	met, ver, err := toolchain.MeetsMinimum(ctx, exec, cfg.Cargo, sel)
	if err != nil {
		return err
	}
	feats := features.Select(cfg.FeatureOverride, met)
	slog.Info("Daemon starting", "toolchain", sel.Name(), "version", ver.String(), "features", feats)

	registry := prom.NewRegistry()
	promRec := metrics.NewRecorder(registry)

	var publisher *daemon.Publisher
	if cfg.Daemon.NATSURL != "" {
		publisher, err = daemon.NewPublisher(cfg.Daemon.NATSURL)
		if err != nil {
			return err
		}
		defer publisher.Close()
	}

	runOnce := func(ctx context.Context) {
		rec := &pipeline.Recorder{}
		p := &pipeline.Pipeline{
			Cargo:     cfg.Cargo,
			Toolchain: sel,
			Features:  feats,
			Runner:    exec,
			Observers: []pipeline.Observer{rec, promRec},
		}
		if err := p.Run(ctx); err != nil {
			slog.Warn("Verification failed", "error", err)
		}
		record := buildRecord(cfg, sel, feats, rec)
		recordHistory(ctx, cfg, record)
		if publisher != nil {
			publisher.PublishRun(record)
		}
	}

	return daemon.New(daemon.Options{
		ProjectDir: cfg.ProjectDir,
		Settings:   cfg.Daemon,
		Run:        runOnce,
		Metrics:    metrics.Handler(registry),
	}).Run(ctx)
}
