package schema

import (
	"strconv"
	"time"
)

// Param declares one positional parameter.
type Param struct {
	Name     string
	Type     Type
	Optional bool
}

// Spec declares a command's positional parameters. With Variadic set, the
// last parameter's type consumes every remaining raw value.
type Spec struct {
	Command  string
	Params   []Param
	Variadic bool
}

// Bind parses raw positional parameters against the spec. All failures are
// collected into one error so a script author sees every bad parameter at
// once.
func (s Spec) Bind(raw []string) (Args, error) {
	var errs []error
	args := make(Args, 0, len(raw))

	required := 0
	for _, p := range s.Params {
		if !p.Optional {
			required++
		}
	}
	if s.Variadic && required > 0 {
		// The variadic tail may be empty.
		required--
	}
	if len(raw) < required {
		errs = append(errs, &ValidationError{
			Command: s.Command,
			Param:   s.paramName(len(raw)),
			Reason:  "required",
		})
	}

	for i, value := range raw {
		p, ok := s.paramAt(i)
		if !ok {
			errs = append(errs, &ValidationError{
				Command: s.Command,
				Param:   value,
				Reason:  "unexpected extra parameter",
				Raw:     value,
			})
			continue
		}
		parsed, err := p.Type.Parse(value)
		if err != nil {
			errs = append(errs, &ValidationError{
				Command: s.Command,
				Param:   s.paramName(i),
				Reason:  err.Error(),
				Raw:     value,
			})
			continue
		}
		args = append(args, parsed)
	}

	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return args, nil
}

// paramAt maps a raw index onto its declared parameter, folding the excess
// onto the last parameter when the spec is variadic.
func (s Spec) paramAt(i int) (Param, bool) {
	if i < len(s.Params) {
		return s.Params[i], true
	}
	if s.Variadic && len(s.Params) > 0 {
		return s.Params[len(s.Params)-1], true
	}
	return Param{}, false
}

// paramName is the parameter's declared name, or its position when unnamed.
func (s Spec) paramName(i int) string {
	p, ok := s.paramAt(i)
	if !ok || p.Name == "" {
		return strconv.Itoa(i)
	}
	return p.Name
}

// Args holds the typed values Bind produced, in declaration order. The
// accessors return the zero value for out-of-range indexes or mismatched
// types, so handlers can read optional tails without guards.
type Args []any

// String returns the string at position i.
func (a Args) String(i int) string {
	if i < 0 || i >= len(a) {
		return ""
	}
	v, _ := a[i].(string)
	return v
}

// Int returns the integer at position i.
func (a Args) Int(i int) int {
	if i < 0 || i >= len(a) {
		return 0
	}
	v, _ := a[i].(int64)
	return int(v)
}

// Float returns the float at position i.
func (a Args) Float(i int) float64 {
	if i < 0 || i >= len(a) {
		return 0
	}
	v, _ := a[i].(float64)
	return v
}

// Bool returns the boolean at position i.
func (a Args) Bool(i int) bool {
	if i < 0 || i >= len(a) {
		return false
	}
	v, _ := a[i].(bool)
	return v
}

// Duration returns the duration at position i.
func (a Args) Duration(i int) time.Duration {
	if i < 0 || i >= len(a) {
		return 0
	}
	v, _ := a[i].(time.Duration)
	return v
}
