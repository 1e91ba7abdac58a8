package ports

import "context"

// ScriptSource defines how the engine retrieves compiled script documents.
// This decouples the storage layer (Loam, FS, memory) from script loading.
type ScriptSource interface {
	// GetScript retrieves the raw compiled data of a script by ID.
	// The interpreter parses the bytes; the source does not interpret them.
	GetScript(ctx context.Context, id string) ([]byte, error)

	// ListScripts returns the IDs of every script the source provides.
	ListScripts(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for sources that can notify about backend
// changes. Used for hot-reload during script development.
type Watchable interface {
	// Watch returns a channel that receives the ID of each changed script.
	Watch(ctx context.Context) (<-chan string, error)
}

// EntryProvider is implemented by sources whose script documents declare the
// node a session starts from. Sources without the concept simply omit it.
type EntryProvider interface {
	// Entry returns the declared entry node of a script, or "" when unset.
	Entry(ctx context.Context, id string) (string, error)
}
