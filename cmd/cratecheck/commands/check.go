package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/cratecheck/internal/features"
	"git.home.luguber.info/inful/cratecheck/internal/pipeline"
	"git.home.luguber.info/inful/cratecheck/internal/runner"
	"git.home.luguber.info/inful/cratecheck/internal/toolchain"
)

// CheckCmd implements the default single-shot verification run.
type CheckCmd struct {
	Toolchain string `arg:"" optional:"" help:"Toolchain variant to run under (e.g. nightly, 1.52.0); omit for the default toolchain"`
}

// Run resolves the toolchain, computes the feature selection once, and
// drives the five-stage pipeline to completion or first failure.
func (c *CheckCmd) Run(cli *CLI) error {
	cfg, err := resolveConfig(cli, c.Toolchain)
	if err != nil {
		return err
	}
	ctx := context.Background()

	exec := runner.NewExec(cfg.ProjectDir)
	if err := enterProjectDir(exec, cfg.ProjectDir); err != nil {
		return err
	}

	sel := toolchain.Resolve(cfg.Toolchain)
	// A failing version query aborts the whole run with its own status.
	met, ver, err := toolchain.MeetsMinimum(ctx, exec, cfg.Cargo, sel)
	if err != nil {
		return err
	}
	feats := features.Select(cfg.FeatureOverride, met)
	slog.Debug("Resolved run", "toolchain", sel.Name(), "version", ver.String(), "gate_met", met, "features", feats)

	rec := &pipeline.Recorder{}
	p := &pipeline.Pipeline{
		Cargo:     cfg.Cargo,
		Toolchain: sel,
		Features:  feats,
		Runner:    exec,
		Observers: []pipeline.Observer{rec},
	}
	runErr := p.Run(ctx)

	recordHistory(ctx, cfg, buildRecord(cfg, sel, feats, rec))
	return runErr
}
