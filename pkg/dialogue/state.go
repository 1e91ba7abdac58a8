package dialogue

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// PersistedState is the wire shape a session snapshot serializes to. Hosts may
// store it anywhere JSON-compatible (a save file, an engine variable, a slot
// store); the runtime replaces its interpreter tables wholesale when loading one.
type PersistedState struct {
	Variables map[string]any `json:"variables" mapstructure:"variables"`
	Visited   map[string]int `json:"visited" mapstructure:"visited"`
}

// ParsePersistedState decodes a host-supplied payload. Visited values written
// by older hosts may be booleans rather than counts; both decode (true == 1).
func ParsePersistedState(data []byte) (PersistedState, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return PersistedState{}, fmt.Errorf("%w: %v", ErrStateDecode, err)
	}

	var st PersistedState
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &st,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return PersistedState{}, fmt.Errorf("%w: %v", ErrStateDecode, err)
	}
	if err := dec.Decode(raw); err != nil {
		return PersistedState{}, fmt.Errorf("%w: %v", ErrStateDecode, err)
	}

	if st.Variables == nil {
		st.Variables = map[string]any{}
	}
	if st.Visited == nil {
		st.Visited = map[string]int{}
	}
	return st, nil
}

// Clone deep-copies the snapshot so callers cannot alias interpreter tables.
func (s PersistedState) Clone() PersistedState {
	out := PersistedState{
		Variables: make(map[string]any, len(s.Variables)),
		Visited:   make(map[string]int, len(s.Visited)),
	}
	for k, v := range s.Variables {
		out.Variables[k] = v
	}
	for k, v := range s.Visited {
		out.Visited[k] = v
	}
	return out
}
