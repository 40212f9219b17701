package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/cratecheck/internal/history"
)

// HistoryCmd lists recent verification runs from the local history store.
type HistoryCmd struct {
	Limit  int  `short:"n" default:"20" help:"Number of runs to show"`
	Stages bool `short:"s" help:"Show per-stage outcomes"`
}

func (h *HistoryCmd) Run(cli *CLI) error {
	cfg, err := resolveConfig(cli, "")
	if err != nil {
		return err
	}
	if cfg.HistoryPath == "" {
		return fmt.Errorf("run history is disabled")
	}

	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tRUN\tTOOLCHAIN\tFEATURES\tRESULT\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%.8s\t%s\t%s\t%s\t%s\n",
			r.StartedAt.Format(time.RFC3339),
			r.ID,
			orDefault(r.Toolchain, "default"),
			orDefault(r.Features, "-"),
			result(r.Passed, r.ExitCode),
			(time.Duration(r.DurationMS) * time.Millisecond).String(),
		)
		if h.Stages {
			for _, st := range r.Stages {
				fmt.Fprintf(w, "\t· %s\t\t\t%s\t%s\n",
					st.Name,
					result(st.Passed, st.ExitCode),
					(time.Duration(st.DurationMS) * time.Millisecond).String(),
				)
			}
		}
	}
	return w.Flush()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func result(passed bool, exitCode int) string {
	if passed {
		return "pass"
	}
	return fmt.Sprintf("fail(%d)", exitCode)
}
