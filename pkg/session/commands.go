package session

import (
	"strconv"
	"time"

	"github.com/aretw0/tendril/pkg/dialogue"
)

// IsCommandCalled reports whether the named command has become visible.
// The queue is scanned in order; an entry is eligible once the clip cursor
// has reached its fire offset.
//
// Eligible wait entries never match. A wait whose line is still scrolling
// pauses the presenter and arms a resume timer for its millisecond
// parameter; a wait reached only because the line finished on its own
// stays inert. Any other eligible entry matching name records its
// parameters, leaves the queue and reports true. Entries from an empty
// <<>> directive carry an empty name and never match, so scanning with ""
// arms waits without claiming anything.
//
// Once paused, subsequent calls report nothing until the wait elapses.
func (s *Session) IsCommandCalled(name string) bool {
	if s.paused || len(s.queue) == 0 {
		return false
	}
	for _, call := range s.queue {
		if s.clipEnd < call.FireOffset {
			continue
		}
		if call.IsWait() {
			if !s.paused && s.clipEnd != len(s.line) {
				s.pauseForWait(call)
			}
			continue
		}
		if call.Name != "" && call.Name == name {
			s.lastParams = call.Args()
			s.removeCall(call)
			s.emitCommand(call, false)
			return true
		}
	}
	return false
}

// CommandParameterCount returns how many parameters the most recently
// matched command carried, excluding the command name itself.
func (s *Session) CommandParameterCount() int {
	return len(s.lastParams)
}

// CommandParameter returns the i-th parameter of the most recently matched
// command, or "" when out of range.
func (s *Session) CommandParameter(i int) string {
	if i < 0 || i >= len(s.lastParams) {
		return ""
	}
	return s.lastParams[i]
}

// pauseForWait halts the presenter and schedules the resume. The timer
// removes exactly the entry it was armed for; a generation check makes a
// fire that raced a Stop or StartFrom harmless.
func (s *Session) pauseForWait(call *dialogue.CommandCall) {
	s.paused = true
	ms := 0
	if args := call.Args(); len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			s.logger.Warn("malformed wait duration", "value", args[0], "err", err)
		} else {
			ms = v
		}
	}
	s.emitCommand(call, true)
	s.waitGen++
	gen := s.waitGen
	s.cancelWait = s.sched.After(time.Duration(ms)*time.Millisecond, func() {
		if gen != s.waitGen {
			return
		}
		s.paused = false
		s.cancelWait = nil
		s.removeCall(call)
	})
}

// removeCall deletes one queue entry by identity, preserving order.
func (s *Session) removeCall(target *dialogue.CommandCall) {
	for i, call := range s.queue {
		if call == target {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}
