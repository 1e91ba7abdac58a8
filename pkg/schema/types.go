package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Type parses one raw positional parameter into a typed value.
type Type interface {
	// Name returns the type name as written in specs (e.g. "int").
	Name() string
	// Parse converts the raw parameter. The returned value's dynamic type
	// is fixed per implementation (string, int64, float64, bool,
	// time.Duration).
	Parse(raw string) (any, error)
}

// StringType accepts any parameter verbatim.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Parse(raw string) (any, error) { return raw, nil }

// IntType parses base-10 integers.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Parse(raw string) (any, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("expected int, got %q", raw)
	}
	return n, nil
}

// FloatType parses decimal numbers.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Parse(raw string) (any, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("expected float, got %q", raw)
	}
	return f, nil
}

// BoolType parses booleans the way strconv does (true/false/1/0/...).
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Parse(raw string) (any, error) {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("expected bool, got %q", raw)
	}
	return b, nil
}

// DurationType parses durations. Bare integers are milliseconds, matching
// the script wait command; anything else goes through time.ParseDuration.
type DurationType struct{}

func (t *DurationType) Name() string { return "duration" }

func (t *DurationType) Parse(raw string) (any, error) {
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return nil, fmt.Errorf("expected duration, got %q", raw)
	}
	return d, nil
}

// CustomType applies a caller-supplied parse function.
type CustomType struct {
	name  string
	parse func(string) (any, error)
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Parse(raw string) (any, error) { return t.parse(raw) }

// String creates a string parameter type.
func String() Type { return &StringType{} }

// Int creates an integer parameter type.
func Int() Type { return &IntType{} }

// Float creates a float parameter type.
func Float() Type { return &FloatType{} }

// Bool creates a boolean parameter type.
func Bool() Type { return &BoolType{} }

// Duration creates a duration parameter type.
func Duration() Type { return &DurationType{} }

// Custom creates a parameter type with a caller-supplied parser.
func Custom(name string, parse func(string) (any, error)) Type {
	return &CustomType{name: name, parse: parse}
}

// ParseType resolves a type name to a Type.
func ParseType(typeStr string) (Type, error) {
	switch typeStr {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "duration":
		return Duration(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseParam resolves a "name:type" declaration. A bare type string leaves
// the parameter unnamed; a trailing "?" on the type marks it optional and a
// trailing "..." marks the (last) parameter variadic.
func ParseParam(decl string) (Param, bool, error) {
	name := ""
	typeStr := decl
	if i := strings.IndexByte(decl, ':'); i >= 0 {
		name = decl[:i]
		typeStr = decl[i+1:]
	}

	variadic := false
	optional := false
	if strings.HasSuffix(typeStr, "...") {
		variadic = true
		typeStr = strings.TrimSuffix(typeStr, "...")
	} else if strings.HasSuffix(typeStr, "?") {
		optional = true
		typeStr = strings.TrimSuffix(typeStr, "?")
	}

	t, err := ParseType(typeStr)
	if err != nil {
		return Param{}, false, err
	}
	return Param{Name: name, Type: t, Optional: optional}, variadic, nil
}
