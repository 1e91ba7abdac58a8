package session

// Frame is a render-ready snapshot of the session in wire form. Service
// adapters send frames to clients; the terminal player draws them.
type Frame struct {
	Running     bool     `json:"running"`
	Paused      bool     `json:"paused"`
	Completed   bool     `json:"completed"`
	LineType    string   `json:"line_type"`
	NodeTitle   string   `json:"node_title"`
	NodeTags    []string `json:"node_tags,omitempty"`
	ClippedText string   `json:"clipped_text"`
	LineText    string   `json:"line_text,omitempty"`
	Options     []string `json:"options,omitempty"`
	Selected    int      `json:"selected"`
	OptionCount int      `json:"option_count"`
	Visited     []string `json:"visited,omitempty"`
}

// Frame snapshots the session for presentation. Taking a frame carries the
// highlight out to whatever surface displays it, so it acknowledges a
// pending selection move; that acknowledgment is what arms Confirm.
//
// The full line text is included only once the line has completely
// revealed, keeping scrolling surfaces spoiler-free. The lazy terminal
// check runs last: the final frame of an exhausted tree still carries its
// fully revealed line alongside Running=false.
func (s *Session) Frame() Frame {
	s.SelectionChanged()
	f := Frame{
		Paused:      s.Paused(),
		Completed:   s.HasCompleted(),
		LineType:    s.LineType(),
		NodeTitle:   s.NodeTitle(),
		NodeTags:    s.NodeTags(),
		ClippedText: s.ClippedText(),
		Selected:    s.SelectedOption(),
		OptionCount: s.OptionCount(),
		Visited:     s.VisitedTitles(),
	}
	if f.Completed {
		f.LineText = s.LineText()
	}
	if f.OptionCount > 0 {
		f.Options = make([]string, f.OptionCount)
		for i := range f.Options {
			f.Options[i] = s.OptionText(i)
		}
	}
	f.Running = s.IsRunning()
	return f
}
