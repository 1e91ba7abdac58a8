package dialogue

import "errors"

// ErrScriptParse is returned when compiled script data is not well-formed.
// The interpreter keeps its previously loaded script, if any.
var ErrScriptParse = errors.New("dialogue: invalid script data")

// ErrNoScript is returned when a sequence is requested before a script loaded.
var ErrNoScript = errors.New("dialogue: no script loaded")

// ErrUnknownNode is returned when a sequence is started at a title the script
// does not define. Session-level StartFrom swallows it into a logged no-op.
var ErrUnknownNode = errors.New("dialogue: unknown node")

// ErrStateDecode is returned when a persisted-state payload does not parse.
// Interpreter tables are left untouched.
var ErrStateDecode = errors.New("dialogue: invalid persisted state")

// ErrSlotNotFound is returned when a save slot does not exist in a state store.
var ErrSlotNotFound = errors.New("dialogue: slot not found")
