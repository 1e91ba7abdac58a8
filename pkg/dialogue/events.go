package dialogue

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter  EventType = "node_enter"
	EventLineStart  EventType = "line_start"
	EventCommand    EventType = "command"
	EventOptions    EventType = "options"
	EventConfirm    EventType = "confirm"
	EventSessionEnd EventType = "session_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent fires when a text step caches new branch metadata on the session.
type NodeEvent struct {
	EventBase
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// LineEvent fires when a fresh line buffer starts (not on fragment appends).
type LineEvent struct {
	EventBase
	Title string `json:"title"`
	Text  string `json:"text"`
}

// CommandEvent fires when a queued command is consumed by the host, or when a
// wait entry pauses scrolling (Wait true).
type CommandEvent struct {
	EventBase
	Name   string   `json:"name"`
	Params []string `json:"params,omitempty"`
	Wait   bool     `json:"wait,omitempty"`
}

// OptionsEvent fires when a branch point is presented (EventOptions) or
// confirmed (EventConfirm, with Selected set).
type OptionsEvent struct {
	EventBase
	Candidates []string `json:"candidates"`
	Selected   int      `json:"selected"`
}

// SessionEvent fires when a session stops, explicitly or by exhausting its
// sequence.
type SessionEvent struct {
	EventBase
	Title   string `json:"title"`
	Stopped bool   `json:"stopped"` // true for explicit Stop, false for natural end
}

// Hooks defines callbacks for runtime observability. All hooks fire
// synchronously on the goroutine driving the session; implementations must not
// call back into the session.
type Hooks struct {
	OnNodeEnter  func(*NodeEvent)
	OnLineStart  func(*LineEvent)
	OnCommand    func(*CommandEvent)
	OnOptions    func(*OptionsEvent)
	OnConfirm    func(*OptionsEvent)
	OnSessionEnd func(*SessionEvent)
}
