package cli

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/tendril/internal/config"
	"github.com/aretw0/tendril/pkg/ports"
)

// watchRetryDelay paces engine rebuilds while the script is broken mid-edit.
const watchRetryDelay = 2 * time.Second

// RunWatch plays the repository in development mode: every script change
// ends the current play and starts a fresh one over the reloaded script.
// The autosave slot carries variables and visit history across reloads, so
// an author iterating on a branch does not replay the whole tree.
func RunWatch(ctx context.Context, opts RunOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := NewLogger(opts.Debug)

	if opts.Slot == "" && cfg.Player.AutosaveSlot == "" {
		// Stateful hot-reload by default in watch mode.
		opts.Slot = "watch-dev"
	}

	store, closeStore, err := OpenStore(cfg.Store, opts.RepoPath)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		again, err := watchIteration(ctx, cfg, opts, store, logger)
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
		logger.Info("watcher restarting")
	}
}

func watchIteration(ctx context.Context, cfg config.Config, opts RunOptions, store ports.StateStore, logger *slog.Logger) (bool, error) {
	engine, err := NewEngine(opts.RepoPath, opts, store, logger)
	if err != nil {
		logger.Error("engine initialization failed", "err", err)
		printSystem(opts.output(), "Script broken: %v. Waiting for changes...", err)
		select {
		case <-ctx.Done():
			return false, nil
		case <-time.After(watchRetryDelay):
			return true, nil
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	reload := make(chan string, 1)
	if watchCh, err := engine.Watch(runCtx); err == nil {
		go func() {
			for {
				select {
				case <-runCtx.Done():
					return
				case id, ok := <-watchCh:
					if !ok {
						return
					}
					select {
					case reload <- id:
					default:
					}
					cancel()
				}
			}
		}()
	} else {
		logger.Warn("source does not support watching", "err", err)
	}

	err = playOnce(runCtx, engine, cfg, opts, logger)

	select {
	case id := <-reload:
		printSystem(opts.output(), "Change detected in '%s'. Reloading...", id)
		// Let the file system settle before the next engine build.
		time.Sleep(100 * time.Millisecond)
		return true, nil
	default:
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return false, err
	}
	// Natural end or player quit ends the watch too.
	return false, nil
}
