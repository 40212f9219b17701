// Package commands wires the cratecheck CLI: a single-shot check (the
// default command), a continuous daemon mode, and run-history inspection.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/cratecheck/internal/config"
	"git.home.luguber.info/inful/cratecheck/internal/runner"
	"git.home.luguber.info/inful/cratecheck/internal/version"
)

// UsageExitCode is returned for argument errors, distinguished from stage
// failures which reuse the failing command's own status.
const UsageExitCode = 2

// CLI definition & global flags.
type CLI struct {
	Dir       string           `short:"C" help:"Project directory (default: the directory containing the cratecheck executable)"`
	Config    string           `short:"c" help:"Configuration file path (default: cratecheck.yaml in the project directory)"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	NoHistory bool             `help:"Disable run-history recording"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Check   CheckCmd   `cmd:"" default:"withargs" help:"Run the verification pipeline once (default)"`
	Daemon  DaemonCmd  `cmd:"" help:"Verify continuously: on source changes and on a schedule"`
	History HistoryCmd `cmd:"" help:"Show recent verification runs"`
}

// New builds the kong parser for the CLI.
func New(cli *CLI) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("cratecheck"),
		kong.Description("Verification pipeline driver: fmt, clippy, doc, doc tests, tests."),
		kong.Vars{"version": version.Version},
	)
}

// Main parses the arguments and runs the selected command, returning the
// process exit code: 0 on success, 2 on usage errors, otherwise the first
// failing external command's exact exit status.
func Main(args []string) int {
	cli := &CLI{}
	parser, err := New(cli)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cratecheck: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: cratecheck [<toolchain>]")
		return UsageExitCode
	}

	setupLogging(cli.Verbose)

	if err := kctx.Run(cli); err != nil {
		slog.Error("Run failed", "error", err)
		return runner.ExitCode(err)
	}
	return 0
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// resolveConfig builds the immutable run context from global flags plus the
// optional positional toolchain.
func resolveConfig(cli *CLI, toolchainArg string) (*config.Run, error) {
	return config.Resolve(config.Options{
		Dir:        cli.Dir,
		ConfigPath: cli.Config,
		Toolchain:  toolchainArg,
		NoHistory:  cli.NoHistory,
	})
}

// enterProjectDir echoes and performs the working-directory change every
// run starts with, so all stages execute relative to the project root no
// matter where the caller invoked us from.
func enterProjectDir(exec *runner.Exec, dir string) error {
	exec.Echo("cd", dir)
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("entering project directory: %w", err)
	}
	return nil
}
