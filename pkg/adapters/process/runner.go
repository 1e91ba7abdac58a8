// Package process bridges script commands to external programs. Games often
// keep effects like audio playback or build hooks in small helper scripts;
// this adapter lets a commands.yaml map command names to those programs, so
// <<chime bell>> in a script runs a process instead of a Go handler.
//
// Only registered commands run. Script parameters never become argv; they are
// passed as TENDRIL_ARG_n environment variables, which keeps a script from
// injecting flags into the host command line.
package process

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/aretw0/tendril/pkg/registry"
)

// Runner executes registered external programs for script commands.
type Runner struct {
	commands map[string]CommandConfig
	baseDir  string
	logger   *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithCommands populates the allow-list from a loaded config.
func WithCommands(commands map[string]CommandConfig) RunnerOption {
	return func(r *Runner) {
		for name, c := range commands {
			r.Register(name, c.Command, c.Args...)
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithLogger sets the logger for command execution output.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a process runner with an empty allow-list.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		commands: make(map[string]CommandConfig),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted program to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.commands[name] = CommandConfig{
		Name:    name,
		Command: command,
		Args:    args,
	}
}

// Bind registers a handler in the registry for every allowed command, so a
// host's dispatch loop routes those script commands to their programs.
func (r *Runner) Bind(reg *registry.Registry) {
	for name := range r.commands {
		name := name
		reg.Register(name, func(ctx context.Context, call registry.Call) error {
			out, err := r.Execute(ctx, name, call.Params)
			if err != nil {
				return err
			}
			if out != "" {
				r.logger.Debug("command output", "command", name, "output", out)
			}
			return nil
		})
	}
}

// Execute runs the named program and returns its trimmed stdout. The script
// parameters arrive in the process environment as TENDRIL_ARG_1..N plus
// TENDRIL_COMMAND and TENDRIL_ARG_COUNT.
func (r *Runner) Execute(ctx context.Context, name string, params []string) (string, error) {
	proc, ok := r.commands[name]
	if !ok {
		return "", fmt.Errorf("process command not registered: %s", name)
	}

	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir

	env := []string{
		fmt.Sprintf("TENDRIL_COMMAND=%s", name),
		fmt.Sprintf("TENDRIL_ARG_COUNT=%d", len(params)),
	}
	for i, p := range params {
		env = append(env, fmt.Sprintf("TENDRIL_ARG_%d=%s", i+1, p))
	}
	cmd.Env = append(cmd.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("command %s: %w", name, ctx.Err())
		}
		return "", fmt.Errorf("command %s failed: %w. Stderr: %s", name, err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}
