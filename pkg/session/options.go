package session

import (
	"strings"
	"unicode/utf8"

	"github.com/aretw0/tendril/pkg/dialogue"
)

// SelectNext moves the highlight down one option, wrapping to the first.
// Outside a branch point it does nothing.
func (s *Session) SelectNext() {
	if s.lineType != dialogue.LineTypeOptions || s.optionCount == 0 {
		return
	}
	s.selected++
	if s.selected >= s.optionCount {
		s.selected = 0
	}
	s.selDirty = true
}

// SelectPrevious moves the highlight up one option, wrapping to the last.
func (s *Session) SelectPrevious() {
	if s.lineType != dialogue.LineTypeOptions || s.optionCount == 0 {
		return
	}
	s.selected--
	if s.selected < 0 {
		s.selected = s.optionCount - 1
	}
	s.selDirty = true
}

// Select highlights the option at index i, clamped into range.
func (s *Session) Select(i int) {
	if s.lineType != dialogue.LineTypeOptions || s.optionCount == 0 {
		return
	}
	s.selected = clampIndex(i, s.optionCount)
	s.selDirty = true
}

// SelectionChanged reports whether the highlight moved since the last
// call, consuming the change flag. A branch point that was never touched
// normalizes to the first option here, so a confirm prompt drawn after
// this call always points at a real candidate.
func (s *Session) SelectionChanged() bool {
	if !s.selDirty {
		return false
	}
	s.selDirty = false
	if s.selected == -1 {
		s.selected = 0
	}
	return true
}

// SelectedOption returns the highlighted index, normalized into the
// candidate range. With no branch point active it returns 0.
func (s *Session) SelectedOption() int {
	if len(s.options) == 0 {
		return 0
	}
	return clampIndex(s.selected, len(s.options))
}

// OptionCount returns the number of candidates at the current branch
// point, or 0 after the session has advanced past it.
func (s *Session) OptionCount() int {
	return s.optionCount
}

// OptionText returns the candidate label at index i, clamped into range.
// It returns "" when no candidates have been presented yet.
func (s *Session) OptionText(i int) string {
	if len(s.options) == 0 {
		return ""
	}
	return s.options[clampIndex(i, len(s.options))]
}

// OptionsText renders all candidates as one string. The highlighted row is
// prefixed with cursor; every other row gets same-width padding so the
// labels stay aligned. With perLine set each candidate ends in a newline.
// An untouched selection renders the cursor on the first row.
func (s *Session) OptionsText(cursor string, perLine bool) string {
	selected := s.selected
	if selected == -1 {
		selected = 0
	}
	pad := strings.Repeat(" ", utf8.RuneCountInString(cursor))
	var b strings.Builder
	for i, label := range s.options {
		if i == selected {
			b.WriteString(cursor)
		} else {
			b.WriteString(pad)
		}
		b.WriteString(label)
		if perLine {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Confirm commits the highlighted option and advances into the chosen
// branch. It requires an acknowledged selection: the highlight must have
// been read through SelectionChanged since it last moved, and a branch
// point nobody touched cannot be confirmed at all. Once the branch is
// taken, queued commands of the abandoned line are discarded.
//
// If the interpreter rejects the choice the session stays at the branch
// point, still running, with its command queue intact, and the error is
// logged.
func (s *Session) Confirm() {
	if s.lineType != dialogue.LineTypeOptions || s.selected == -1 || s.selDirty {
		return
	}
	if s.selectFn == nil {
		s.logger.Warn("branch point has no selector")
		return
	}
	choice := s.selected
	if err := s.selectFn(choice); err != nil {
		s.logger.Error("cannot take branch", "index", choice, "err", err)
		return
	}
	s.queue = nil
	s.emitConfirm(choice)
	s.selectFn = nil
	s.pull()
	s.Advance()
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
