// Package registry routes script command calls to host handlers.
//
// Scripts fire commands like <<give sword 2>>; the session queues them and
// exposes a claim API. A Registry holds the host's handlers and, once per
// frame, claims every pending call whose name it knows and invokes the
// matching handler. Handlers registered with a schema.Spec receive typed
// arguments; the rest get the raw parameter strings.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/tendril/pkg/schema"
)

// Call is one claimed command invocation.
type Call struct {
	Name   string
	Params []string
	// Args holds typed values when the handler was registered with a spec,
	// nil otherwise.
	Args schema.Args
}

// HandlerFunc handles one claimed command call.
type HandlerFunc func(ctx context.Context, call Call) error

// Claimer is the slice of a session the registry polls. A true
// IsCommandCalled consumes the claimed call, so each queued command reaches
// exactly one handler.
type Claimer interface {
	IsCommandCalled(name string) bool
	CommandParameterCount() int
	CommandParameter(i int) string
}

type entry struct {
	fn   HandlerFunc
	spec *schema.Spec
}

// Registry manages the registered command handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{handlers: make(map[string]entry)}
}

// Register adds a handler for the named command. An existing handler with
// the same name is overwritten.
func (r *Registry) Register(name string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = entry{fn: fn}
}

// RegisterSpec adds a handler whose parameters are parsed against the spec
// before it runs. Calls that fail to bind never reach the handler.
func (r *Registry) RegisterSpec(spec schema.Spec, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[spec.Command] = entry{fn: fn, spec: &spec}
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute invokes the named handler directly.
func (r *Registry) Execute(ctx context.Context, name string, params []string) error {
	r.mu.RLock()
	e, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("command not found: %s", name)
	}
	return r.invoke(ctx, e, name, params)
}

// Dispatch claims every pending call for every registered name and invokes
// the handlers. It returns the number of calls handled; the first handler
// or bind error stops the scan.
//
// Scanning also arms any wait pause the script has queued, so hosts that
// dispatch once per frame get wait semantics for free.
func (r *Registry) Dispatch(ctx context.Context, c Claimer) (int, error) {
	handled := 0
	for _, name := range r.Names() {
		r.mu.RLock()
		e, ok := r.handlers[name]
		r.mu.RUnlock()
		if !ok {
			continue
		}
		for c.IsCommandCalled(name) {
			params := make([]string, c.CommandParameterCount())
			for i := range params {
				params[i] = c.CommandParameter(i)
			}
			if err := r.invoke(ctx, e, name, params); err != nil {
				return handled, err
			}
			handled++
		}
	}
	return handled, nil
}

func (r *Registry) invoke(ctx context.Context, e entry, name string, params []string) error {
	call := Call{Name: name, Params: params}
	if e.spec != nil {
		args, err := e.spec.Bind(params)
		if err != nil {
			return err
		}
		call.Args = args
	}
	return e.fn(ctx, call)
}
