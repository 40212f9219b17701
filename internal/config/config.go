// Package config resolves everything a verification run needs — project
// directory, toolchain name, feature override, history and daemon settings —
// once at process start, into an immutable Run context. Nothing re-reads
// environment state mid-run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FeaturesEnv overrides feature selection when set, even to the empty
// string. "Set to empty" means "exactly zero optional features" and is
// distinct from unset, so resolution goes through os.LookupEnv.
const FeaturesEnv = "CRATECHECK_FEATURES"

// DefaultConfigFile is the optional per-project configuration file,
// looked up relative to the project directory.
const DefaultConfigFile = "cratecheck.yaml"

const defaultHistoryPath = ".cratecheck/history.db"

// Duration is a time.Duration that unmarshals from yaml strings like "90s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Daemon holds continuous-verification settings.
type Daemon struct {
	// Interval between scheduled full runs (backstop for missed events).
	Interval time.Duration
	// Debounce window for filesystem events before a re-run triggers.
	Debounce time.Duration
	// Watch is the source subdirectory observed for changes.
	Watch string
	// MetricsAddr serves Prometheus metrics when non-empty, e.g. ":9310".
	MetricsAddr string
	// NATSURL enables run-summary publishing when non-empty.
	NATSURL string
}

// File is the on-disk cratecheck.yaml shape. Every field is optional;
// command line and environment win over the file.
type File struct {
	Toolchain string `yaml:"toolchain"`
	Cargo     string `yaml:"cargo"`
	History   string `yaml:"history"`
	Daemon    struct {
		Interval    Duration `yaml:"interval"`
		Debounce    Duration `yaml:"debounce"`
		Watch       string   `yaml:"watch"`
		MetricsAddr string   `yaml:"metrics_addr"`
		NATSURL     string   `yaml:"nats_url"`
	} `yaml:"daemon"`
}

// Run is the immutable per-run context. Resolved exactly once at startup
// and read-only thereafter; every component receives it by value of its
// relevant fields rather than re-reading globals.
type Run struct {
	// ProjectDir is the directory all stages execute in.
	ProjectDir string
	// Cargo is the toolchain driver binary, normally "cargo".
	Cargo string
	// Toolchain is the optional variant name from the command line or
	// config file; empty selects the ambient default.
	Toolchain string
	// FeatureOverride is non-nil iff FeaturesEnv was set at startup.
	FeatureOverride *string
	// HistoryPath is the sqlite run-history location; empty disables it.
	HistoryPath string
	// Daemon settings, populated with defaults even outside daemon mode.
	Daemon Daemon
}

// Options carries the command-line inputs that shape resolution.
type Options struct {
	// Dir overrides the project directory; empty means the directory
	// containing the cratecheck executable.
	Dir string
	// ConfigPath overrides the config file location (relative paths are
	// resolved against the project directory).
	ConfigPath string
	// Toolchain is the optional positional argument.
	Toolchain string
	// NoHistory disables run-history recording.
	NoHistory bool
}

// Resolve builds the immutable run context. `.env` / `.env.local` are
// loaded first (never overriding the real environment), then the optional
// yaml file, then command-line values on top.
func Resolve(opts Options) (*Run, error) {
	dir := opts.Dir
	if dir == "" {
		var err error
		dir, err = executableDir()
		if err != nil {
			return nil, err
		}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving project directory: %w", err)
	}

	loadDotenv(dir)

	file, err := loadFile(dir, opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	run := &Run{
		ProjectDir:  dir,
		Cargo:       "cargo",
		Toolchain:   opts.Toolchain,
		HistoryPath: filepath.Join(dir, defaultHistoryPath),
		Daemon: Daemon{
			Interval: time.Hour,
			Debounce: 2 * time.Second,
			Watch:    "src",
		},
	}
	if file.Cargo != "" {
		run.Cargo = file.Cargo
	}
	if run.Toolchain == "" {
		run.Toolchain = file.Toolchain
	}
	if file.History != "" {
		run.HistoryPath = absAgainst(dir, file.History)
	}
	if file.Daemon.Interval != 0 {
		run.Daemon.Interval = time.Duration(file.Daemon.Interval)
	}
	if file.Daemon.Debounce != 0 {
		run.Daemon.Debounce = time.Duration(file.Daemon.Debounce)
	}
	if file.Daemon.Watch != "" {
		run.Daemon.Watch = file.Daemon.Watch
	}
	run.Daemon.MetricsAddr = file.Daemon.MetricsAddr
	run.Daemon.NATSURL = file.Daemon.NATSURL

	if opts.NoHistory {
		run.HistoryPath = ""
	}

	if v, ok := os.LookupEnv(FeaturesEnv); ok {
		run.FeatureOverride = &v
	}

	return run, nil
}

// loadDotenv loads .env then .env.local from the project directory when
// present, so a crate-level .env works no matter where the caller invoked
// us from. godotenv never overrides variables already set in the process
// environment.
func loadDotenv(dir string) {
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}

// executableDir returns the directory containing the running binary, the
// default project root: dropping the checker next to the crate makes it
// work from any caller directory.
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

func loadFile(dir, path string) (File, error) {
	var f File
	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}
	path = absAgainst(dir, path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return f, nil
		}
		return f, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return f, nil
}

func absAgainst(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
