package session

import "github.com/aretw0/tendril/pkg/dialogue"

// Advance moves the session to its next resting point: a text line, a
// branch point, or sequence exhaustion. Command steps never rest; they are
// queued against the current line length and resolution continues.
//
// A text step replaces the presented line when the previous line was a
// branch point, unrecognized, or absent; otherwise it appends, so fragments
// split around inline commands reassemble into one scrolling line.
// Replacing also discards the queued commands of the abandoned line.
//
// Advance is a no-op while a wait command holds the presenter or when no
// traversal is running.
func (s *Session) Advance() {
	if s.paused || !s.running {
		return
	}
	s.optionCount = 0
	s.selected = -1
	s.selDirty = false
	for {
		switch step := s.step.(type) {
		case dialogue.Text:
			s.presentText(step)
			s.pull()
			return
		case dialogue.Options:
			s.lineType = dialogue.LineTypeOptions
			s.options = append([]string(nil), step.Candidates...)
			s.selectFn = step.Select
			s.optionCount = len(s.options)
			s.selDirty = true
			s.emitOptions()
			return
		case dialogue.Command:
			s.lineType = dialogue.LineTypeCommand
			s.enqueueCommand(step.Text)
			s.pull()
		default:
			s.lineType = dialogue.LineTypeUnknown
			return
		}
	}
}

func (s *Session) presentText(step dialogue.Text) {
	replace := s.lineType == "" ||
		s.lineType == dialogue.LineTypeOptions ||
		s.lineType == dialogue.LineTypeUnknown
	if step.Title != s.node.Title {
		s.emitNodeEnter(step.Title, step.Tags)
	}
	s.node = dialogue.NodeInfo{Title: step.Title, Tags: step.Tags, Body: step.Body}
	if replace {
		s.line = []rune(step.Text)
		s.clipEnd = 0
		s.queue = nil
		s.emitLineStart(step.Text)
	} else {
		if len(s.line) == 0 {
			s.emitLineStart(step.Text)
		}
		s.line = append(s.line, []rune(step.Text)...)
	}
	s.lineType = dialogue.LineTypeText
}

// enqueueCommand records a command at the offset where the line buffer
// currently ends, nudged one rune forward when it directly follows a wait
// so the two never share a fire position.
func (s *Session) enqueueCommand(text string) {
	offset := len(s.line)
	if n := len(s.queue); n > 0 && s.queue[n-1].IsWait() {
		offset++
	}
	call := dialogue.ParseCommandCall(text, offset)
	s.queue = append(s.queue, &call)
}
