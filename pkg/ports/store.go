package ports

import "context"

// StateStore defines the interface for persisting serialized session
// snapshots ("save slots"). Payloads are opaque JSON documents produced by the
// session's state codec; stores never inspect them.
type StateStore interface {
	// Save persists the payload under the given slot name.
	Save(ctx context.Context, slot string, payload []byte) error

	// Load retrieves the payload for a slot.
	// Returns dialogue.ErrSlotNotFound if the slot does not exist.
	Load(ctx context.Context, slot string) ([]byte, error)

	// Delete removes a slot. Deleting a missing slot is not an error.
	Delete(ctx context.Context, slot string) error

	// List returns the names of all stored slots.
	List(ctx context.Context) ([]string, error)
}
