package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/internal/config"
	"github.com/aretw0/tendril/internal/presentation/tui"
	"github.com/aretw0/tendril/pkg/adapters/process"
	"github.com/aretw0/tendril/pkg/registry"
	"github.com/aretw0/tendril/pkg/runner"
)

// RunOptions carries everything a play command resolved from flags.
type RunOptions struct {
	RepoPath   string
	ConfigPath string
	// Script selects a document when the repository holds several.
	Script string
	// Entry overrides the script's start node.
	Entry string
	// Slot overrides the configured autosave slot.
	Slot string
	// Commands points at a command bridge config. When empty, a
	// commands.yaml next to the scripts is picked up if present.
	Commands string

	// Headless plays over plain line IO with no banner or raw keys.
	Headless bool
	// JSON plays over NDJSON for embedding in another process.
	JSON bool
	// AutoPilot plays without input, for smoke-testing scripts.
	AutoPilot bool
	Debug     bool

	// In and Out override stdin/stdout, for tests.
	In  io.Reader
	Out io.Writer
}

func (o RunOptions) input() io.Reader {
	if o.In != nil {
		return o.In
	}
	return os.Stdin
}

func (o RunOptions) output() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return os.Stdout
}

// RunSession plays one interactive session over the repository at
// opts.RepoPath and returns when the tree is exhausted or the player quits.
func RunSession(ctx context.Context, opts RunOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := NewLogger(opts.Debug)

	store, closeStore, err := OpenStore(cfg.Store, opts.RepoPath)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	engine, err := NewEngine(opts.RepoPath, opts, store, logger)
	if err != nil {
		return err
	}
	return playOnce(ctx, engine, cfg, opts, logger)
}

// playOnce wires one runner over an already built engine. The watch loop
// reuses it per iteration.
func playOnce(ctx context.Context, engine *tendril.Engine, cfg config.Config, opts RunOptions, logger *slog.Logger) error {
	handler, cleanup := resolveHandler(cfg, opts)
	defer cleanup()

	slot := opts.Slot
	if slot == "" {
		slot = cfg.Player.AutosaveSlot
	}

	rOpts := []runner.Option{
		runner.WithHandler(handler),
		runner.WithLogger(logger),
		runner.WithTickInterval(cfg.Player.TickInterval),
		runner.WithManager(engine.Manager(), slot),
	}
	if opts.AutoPilot {
		rOpts = append(rOpts, runner.WithAutoPilot())
	}

	reg, err := commandRegistry(opts, logger)
	if err != nil {
		return err
	}
	if reg != nil {
		rOpts = append(rOpts, runner.WithRegistry(reg))
	}

	if interactive(opts) {
		tui.PrintBanner(opts.output(), tendril.Version)
	}

	err = runner.New(rOpts...).Run(ctx, engine)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// commandRegistry builds the external-command registry for one play. An
// explicit --commands path must exist; otherwise commands.yaml in the
// repository is picked up when present. With nothing configured it
// returns nil and the runner dispatches no external commands.
func commandRegistry(opts RunOptions, logger *slog.Logger) (*registry.Registry, error) {
	path := opts.Commands
	if path == "" {
		path = filepath.Join(opts.RepoPath, "commands.yaml")
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("commands config: %w", err)
	}

	commands, err := process.LoadCommands(path)
	if err != nil {
		return nil, err
	}
	if len(commands) == 0 {
		return nil, nil
	}

	reg := registry.New()
	process.NewRunner(
		process.WithCommands(commands),
		process.WithBaseDir(opts.RepoPath),
		process.WithLogger(logger),
	).Bind(reg)
	logger.Debug("external commands bound", "config", path, "names", reg.Names())
	return reg, nil
}

// resolveHandler picks the IO strategy: NDJSON for embedding, raw terminal
// keys when stdin is a TTY, plain line IO otherwise. The cleanup func
// restores the terminal and is never nil.
func resolveHandler(cfg config.Config, opts RunOptions) (runner.Handler, func()) {
	noop := func() {}

	if opts.JSON {
		return runner.NewJSONHandler(opts.input(), opts.output()), noop
	}
	if interactive(opts) {
		if f, ok := opts.input().(*os.File); ok {
			kh, err := tui.NewKeyHandler(f, opts.output(),
				runner.WithRenderer(tui.NewRenderer()),
				runner.WithCursor(cfg.Player.Cursor),
			)
			if err == nil {
				return kh, kh.Close
			}
		}
	}

	textOpts := []runner.TextOption{runner.WithCursor(cfg.Player.Cursor)}
	return runner.NewTextHandler(opts.input(), opts.output(), textOpts...), noop
}

func interactive(opts RunOptions) bool {
	return !opts.Headless && !opts.JSON && !opts.AutoPilot
}
