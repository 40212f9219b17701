package commands

import (
	"context"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/cratecheck/internal/config"
	"git.home.luguber.info/inful/cratecheck/internal/features"
	"git.home.luguber.info/inful/cratecheck/internal/history"
	"git.home.luguber.info/inful/cratecheck/internal/pipeline"
	"git.home.luguber.info/inful/cratecheck/internal/toolchain"
)

// buildRecord turns a finished run's recorder state into a history record.
func buildRecord(cfg *config.Run, sel toolchain.Selector, feats features.Flags, rec *pipeline.Recorder) *history.Record {
	r := history.NewRecord()
	r.Toolchain = sel.Name()
	r.Features = strings.Join(feats, " ")
	r.Commit = history.HeadCommit(cfg.ProjectDir)
	r.Passed = !rec.Failed()
	r.ExitCode = rec.ExitCode()
	r.DurationMS = rec.Duration().Milliseconds()
	for _, st := range rec.Stages() {
		r.Stages = append(r.Stages, history.StageRecord{
			Name:       st.Name,
			Passed:     st.Passed,
			ExitCode:   st.ExitCode,
			DurationMS: st.Duration.Milliseconds(),
		})
	}
	return r
}

// recordHistory persists the run when history is enabled. Best-effort: a
// history failure is logged and the pipeline's outcome stands.
func recordHistory(ctx context.Context, cfg *config.Run, rec *history.Record) {
	if cfg.HistoryPath == "" {
		return
	}
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		slog.Warn("Run history unavailable", "path", cfg.HistoryPath, "error", err)
		return
	}
	defer store.Close()
	if err := store.Record(ctx, rec); err != nil {
		slog.Warn("Could not record run", "error", err)
	}
}
