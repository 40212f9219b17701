// Package pipeline sequences the fixed set of verification stages against
// the resolved toolchain, halting at the first failure.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/cratecheck/internal/features"
	"git.home.luguber.info/inful/cratecheck/internal/runner"
	"git.home.luguber.info/inful/cratecheck/internal/toolchain"
)

// Stage is one verification step: a name and the complete cargo argument
// list (toolchain selector included). Stages execute at most once, in
// declaration order, never in parallel, never retried.
type Stage struct {
	Name string
	Args []string
}

// Observer receives stage and run outcomes. Implementations must not
// influence control flow.
type Observer interface {
	StageDone(stage string, d time.Duration, err error)
	RunDone(d time.Duration, err error)
}

// Pipeline runs the verification stages through a Runner. Toolchain and
// Features are resolved once before construction and are identical for
// every stage that uses them.
type Pipeline struct {
	Cargo     string
	Toolchain toolchain.Selector
	Features  features.Flags
	Runner    runner.Runner
	Observers []Observer
}

// Stages returns the fixed stage sequence for this pipeline's toolchain and
// feature selection:
//
//	fmt      — formatting compliance, report only
//	clippy   — lint all targets with the selected features, warnings fatal
//	doc      — build API documentation (no explicit feature flags)
//	doc-test — run documentation examples against DEFAULT features only, so
//	           doc examples stay valid for the common configuration no
//	           matter what the CI feature matrix selected
//	test     — full test suite with the selected features
func (p *Pipeline) Stages() []Stage {
	tc := p.Toolchain
	feats := p.Features
	return []Stage{
		{Name: "fmt", Args: tc.Prefix("fmt", "--", "--check")},
		{Name: "clippy", Args: tc.Prefix(append(append([]string{"clippy", "--all-targets"}, feats...), "--", "-D", "warnings")...)},
		{Name: "doc", Args: tc.Prefix("doc")},
		{Name: "doc-test", Args: tc.Prefix("test", "--doc")},
		{Name: "test", Args: tc.Prefix(append([]string{"test", "--all-targets"}, feats...)...)},
	}
}

// Run executes the stages strictly in order. The first failing stage stops
// the run and its error — carrying the child's exact exit status — is
// returned; later stages do not execute. All stages passing returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	runStart := time.Now()
	for _, st := range p.Stages() {
		stageStart := time.Now()
		err := p.Runner.Run(ctx, p.Cargo, st.Args...)
		p.observeStage(st.Name, time.Since(stageStart), err)
		if err != nil {
			runErr := fmt.Errorf("stage %s: %w", st.Name, err)
			p.observeRun(time.Since(runStart), runErr)
			return runErr
		}
	}
	p.observeRun(time.Since(runStart), nil)
	return nil
}

func (p *Pipeline) observeStage(stage string, d time.Duration, err error) {
	for _, o := range p.Observers {
		o.StageDone(stage, d, err)
	}
}

func (p *Pipeline) observeRun(d time.Duration, err error) {
	for _, o := range p.Observers {
		o.RunDone(d, err)
	}
}
