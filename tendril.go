package tendril

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/aretw0/loam"

	"github.com/aretw0/tendril/internal/interpreter"
	"github.com/aretw0/tendril/internal/validator"
	loamAdapter "github.com/aretw0/tendril/pkg/adapters/loam"
	"github.com/aretw0/tendril/pkg/adapters/memory"
	"github.com/aretw0/tendril/pkg/dialogue"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/aretw0/tendril/pkg/session"
)

// Engine is the high-level entry point for the Tendril library. It loads one
// compiled script and mints independent sessions over it: every NewSession
// call builds a fresh interpreter, so sessions never share variables or visit
// counts. State travels between sessions through snapshots and the Manager.
type Engine struct {
	source   ports.ScriptSource
	store    ports.StateStore
	sched    ports.Scheduler
	hooks    dialogue.Hooks
	logger   *slog.Logger
	scriptID string
	entry    string

	mu   sync.RWMutex
	data []byte

	managerOnce sync.Once
	manager     *session.Manager

	Name string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithSource injects a custom ScriptSource, bypassing the default Loam
// initialization.
func WithSource(src ports.ScriptSource) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithScript selects which script document to load when the source provides
// more than one.
func WithScript(id string) Option {
	return func(e *Engine) {
		e.scriptID = id
	}
}

// WithEntry overrides the node sessions start from (default: the script
// document's declared entry, then "Start").
func WithEntry(title string) Option {
	return func(e *Engine) {
		e.entry = title
	}
}

// WithLogger sets a custom structured logger for the engine and its sessions.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers lifecycle callbacks passed to every session.
func WithHooks(hooks dialogue.Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithScheduler sets the timer scheduler sessions use for wait commands.
// Game loops inject one that fires callbacks on the loop goroutine.
func WithScheduler(sched ports.Scheduler) Option {
	return func(e *Engine) {
		e.sched = sched
	}
}

// WithStore sets the save-slot store behind Manager (default: in-memory).
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// New initializes an Engine over a script repository path. By default it uses
// a Loam repository at the given path; WithSource skips Loam and repoPath may
// then be empty.
func New(repoPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if eng.source == nil {
		if repoPath == "" {
			return nil, fmt.Errorf("repoPath is required when no custom source is provided")
		}

		absPath, err := filepath.Abs(repoPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)

		// Strict mode keeps numeric types consistent across the JSON and
		// YAML documents; read-only mode because the engine never writes
		// script documents.
		repo, err := loam.Init(absPath,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}
		eng.source = loamAdapter.New(loam.NewTypedRepository[loamAdapter.ScriptMetadata](repo))
	} else if repoPath != "" {
		eng.Name = filepath.Base(repoPath)
	}

	ctx := context.Background()
	if err := eng.resolveScriptID(ctx); err != nil {
		return nil, err
	}

	data, err := eng.source.GetScript(ctx, eng.scriptID)
	if err != nil {
		return nil, err
	}
	if err := eng.install(data); err != nil {
		return nil, err
	}
	eng.resolveEntry(ctx)

	if eng.Name == "" {
		eng.Name = eng.scriptID
	}
	eng.logger = eng.logger.With("script", eng.scriptID)
	return eng, nil
}

// NewFromBytes initializes an Engine from pre-compiled script data, for
// embedded scripts. Reload and Watch are unavailable without a source.
func NewFromBytes(data []byte, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.scriptID == "" {
		eng.scriptID = "embedded"
	}
	if eng.Name == "" {
		eng.Name = eng.scriptID
	}
	if eng.entry == "" {
		eng.entry = "Start"
	}

	if err := eng.install(data); err != nil {
		return nil, err
	}
	eng.logger = eng.logger.With("script", eng.scriptID)
	return eng, nil
}

// resolveScriptID picks the script document to load when WithScript was not
// given: a source holding exactly one script needs no selection.
func (e *Engine) resolveScriptID(ctx context.Context) error {
	if e.scriptID != "" {
		return nil
	}
	ids, err := e.source.ListScripts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list scripts: %w", err)
	}
	switch len(ids) {
	case 0:
		return fmt.Errorf("source provides no scripts")
	case 1:
		e.scriptID = ids[0]
		return nil
	default:
		return fmt.Errorf("source provides %d scripts; select one with WithScript", len(ids))
	}
}

// resolveEntry settles the default start node: explicit option, then the
// script document's declared entry, then "Start".
func (e *Engine) resolveEntry(ctx context.Context) {
	if e.entry != "" {
		return
	}
	if ep, ok := e.source.(ports.EntryProvider); ok {
		if declared, err := ep.Entry(ctx, e.scriptID); err == nil && declared != "" {
			e.entry = declared
			return
		}
	}
	e.entry = "Start"
}

// install parses the data once to fail fast on malformed scripts, then makes
// it the engine's current script.
func (e *Engine) install(data []byte) error {
	probe, err := interpreter.New(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.data = append([]byte(nil), data...)
	e.mu.Unlock()

	if e.entry != "" && !probe.HasNode(e.entry) {
		e.logger.Warn("entry node not defined in script", "entry", e.entry)
	}
	return nil
}

// NewSession builds an independent session over the loaded script.
func (e *Engine) NewSession(opts ...session.Option) (*session.Session, error) {
	rt, err := interpreter.New(e.Script())
	if err != nil {
		return nil, err
	}

	base := []session.Option{
		session.WithLogger(e.logger),
		session.WithHooks(e.hooks),
	}
	if e.sched != nil {
		base = append(base, session.WithScheduler(e.sched))
	}
	return session.New(rt, append(base, opts...)...), nil
}

// Start builds a session and starts it from the engine's entry node.
func (e *Engine) Start(opts ...session.Option) (*session.Session, error) {
	s, err := e.NewSession(opts...)
	if err != nil {
		return nil, err
	}
	if !s.HasNode(e.entry) {
		return nil, fmt.Errorf("%w: %q", dialogue.ErrUnknownNode, e.entry)
	}
	s.StartFrom(e.entry)
	return s, nil
}

// Entry returns the node sessions start from by default.
func (e *Engine) Entry() string {
	return e.entry
}

// ScriptID returns the ID of the loaded script document.
func (e *Engine) ScriptID() string {
	return e.scriptID
}

// Script returns a copy of the loaded compiled script data.
func (e *Engine) Script() []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]byte(nil), e.data...)
}

// Reload re-fetches the script from the source. Malformed data leaves the
// current script in place, so a bad save during hot-reload never kills a
// running engine. Existing sessions keep playing the script they started on;
// new sessions see the reloaded one.
func (e *Engine) Reload(ctx context.Context) error {
	if e.source == nil {
		return fmt.Errorf("engine has no script source to reload from")
	}
	data, err := e.source.GetScript(ctx, e.scriptID)
	if err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	if err := e.install(data); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	e.logger.Info("script reloaded")
	return nil
}

// Watch returns a channel that signals when the underlying script changes.
// Returns an error if the source does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.source.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current script source does not support watching")
}

// Validate checks the loaded script's referential integrity: every branch
// target resolves and every node is reachable from the entry.
func (e *Engine) Validate() (*validator.Report, error) {
	return validator.Validate(e.Script(), e.entry)
}

// Manager returns the engine's save-slot manager, building it on first use
// over the configured store (in-memory when none was given).
func (e *Engine) Manager() *session.Manager {
	e.managerOnce.Do(func() {
		if e.store == nil {
			e.store = memory.NewStore()
		}
		e.manager = session.NewManager(e.store, session.WithManagerLogger(e.logger))
	})
	return e.manager
}

// Store returns the save-slot store behind Manager.
func (e *Engine) Store() ports.StateStore {
	e.Manager()
	return e.store
}

// Source returns the underlying ScriptSource used by the engine, or nil for
// byte-loaded engines.
func (e *Engine) Source() ports.ScriptSource {
	return e.source
}
