// Package middleware decorates a StateStore with cross-cutting behavior:
// payload encryption at rest and redaction of sensitive script variables.
// Middlewares compose; the outermost wrapper sees the plaintext payload.
package middleware

import "github.com/aretw0/tendril/pkg/ports"

// Middleware wraps a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore

// Chain applies middlewares so the first listed is the outermost wrapper.
func Chain(store ports.StateStore, mws ...Middleware) ports.StateStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
