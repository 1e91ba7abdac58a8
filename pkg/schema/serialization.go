package schema

import (
	"encoding/json"
	"fmt"
)

// specJSON is the wire form of a Spec: the command name plus one "name:type"
// declaration per parameter.
type specJSON struct {
	Command string   `json:"command"`
	Params  []string `json:"params,omitempty"`
}

// MarshalJSON serializes the spec with its parameters as type declarations.
func (s Spec) MarshalJSON() ([]byte, error) {
	out := specJSON{Command: s.Command}
	for i, p := range s.Params {
		if p.Type == nil {
			return nil, fmt.Errorf("param %d: type is nil", i)
		}
		decl := p.Type.Name()
		if p.Optional {
			decl += "?"
		}
		if s.Variadic && i == len(s.Params)-1 {
			decl += "..."
		}
		if p.Name != "" {
			decl = p.Name + ":" + decl
		}
		out.Params = append(out.Params, decl)
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses the wire form back into a Spec.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var raw specJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSpec(raw.Command, raw.Params)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSpec builds a Spec from parameter declarations such as
// "item:string", "count:int?" or "words:string...". Only the last parameter
// may be variadic.
func ParseSpec(command string, decls []string) (Spec, error) {
	spec := Spec{Command: command}
	for i, decl := range decls {
		p, variadic, err := ParseParam(decl)
		if err != nil {
			return Spec{}, fmt.Errorf("command %s, param %d: %w", command, i, err)
		}
		if variadic {
			if i != len(decls)-1 {
				return Spec{}, fmt.Errorf("command %s: variadic param %q must be last", command, decl)
			}
			spec.Variadic = true
		}
		spec.Params = append(spec.Params, p)
	}
	return spec, nil
}
