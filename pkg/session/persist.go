package session

import (
	"encoding/json"

	"github.com/aretw0/tendril/pkg/dialogue"
)

// Snapshot captures the persistable dialogue state: script variables and
// visit counts. Presentation state (the scrolling line, queued commands,
// the highlighted option) is deliberately not part of a snapshot; a
// restored game re-enters dialogue through StartFrom.
func (s *Session) Snapshot() dialogue.PersistedState {
	if s.script == nil {
		return dialogue.PersistedState{
			Variables: map[string]any{},
			Visited:   map[string]int{},
		}
	}
	return dialogue.PersistedState{
		Variables: s.script.Variables().All(),
		Visited:   s.script.VisitCounts(),
	}
}

// MarshalState serializes the snapshot for storage.
func (s *Session) MarshalState() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// Restore replaces script variables and visit counts from a serialized
// snapshot. On a decode error the error is logged and returned and the
// runtime tables are left untouched. Visited values may be booleans from
// older saves; they count as a single visit.
func (s *Session) Restore(data []byte) error {
	if s.script == nil {
		return dialogue.ErrNoScript
	}
	state, err := dialogue.ParsePersistedState(data)
	if err != nil {
		s.logger.Error("cannot restore dialogue state", "err", err)
		return err
	}
	s.script.Variables().Replace(state.Variables)
	s.script.ReplaceVisitCounts(state.Visited)
	return nil
}
