package dialogue

import "strings"

// WaitCommand is the command name with built-in pause semantics. A wait entry
// never reports a match to callers; it pauses scrolling for the duration given
// by its first parameter (milliseconds) instead.
const WaitCommand = "wait"

// CommandCall is a queued script command awaiting its fire offset.
type CommandCall struct {
	// Name is the first whitespace-separated token of the command text.
	Name string `json:"name"`
	// Params holds every token including the name at index 0, matching the
	// shape the script interpreter hands over.
	Params []string `json:"params"`
	// FireOffset is the clip-cursor position (in runes) at which the command
	// becomes visible to IsCommandCalled.
	FireOffset int `json:"fire_offset"`
}

// ParseCommandCall splits raw command text into a CommandCall queued at offset.
// Empty command text yields a call with an empty name; the session queues it
// but no claim ever matches it.
func ParseCommandCall(text string, offset int) CommandCall {
	params := strings.Fields(text)
	name := ""
	if len(params) > 0 {
		name = params[0]
	}
	return CommandCall{Name: name, Params: params, FireOffset: offset}
}

// Args returns the parameters excluding the leading command name.
func (c CommandCall) Args() []string {
	if len(c.Params) <= 1 {
		return nil
	}
	return c.Params[1:]
}

// IsWait reports whether this entry carries the built-in pause semantics.
func (c CommandCall) IsWait() bool {
	return c.Name == WaitCommand
}
