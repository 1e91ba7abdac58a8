package schema

import (
	"testing"
	"time"
)

func TestIntType(t *testing.T) {
	typ := Int()

	if typ.Name() != "int" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "int")
	}

	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"-7", -7, false},
		{"0", 0, false},
		{"3.14", 0, true},
		{"forty", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := typ.Parse(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if err == nil && got.(int64) != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestFloatType(t *testing.T) {
	typ := Float()

	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"3.14", 3.14, false},
		{"42", 42, false},
		{"-0.5", -0.5, false},
		{"fast", 0, true},
	}

	for _, tt := range tests {
		got, err := typ.Parse(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if err == nil && got.(float64) != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestBoolType(t *testing.T) {
	typ := Bool()

	tests := []struct {
		raw     string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"false", false, false},
		{"1", true, false},
		{"0", false, false},
		{"yes", false, true},
	}

	for _, tt := range tests {
		got, err := typ.Parse(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if err == nil && got.(bool) != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestDurationType(t *testing.T) {
	typ := Duration()

	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{"500", 500 * time.Millisecond, false}, // bare int = milliseconds
		{"2s", 2 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		got, err := typ.Parse(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if err == nil && got.(time.Duration) != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestCustomType(t *testing.T) {
	upper := Custom("upper", func(raw string) (any, error) {
		if raw != "UP" {
			return nil, errNotUp
		}
		return raw, nil
	})

	if upper.Name() != "upper" {
		t.Errorf("Name() = %q, want %q", upper.Name(), "upper")
	}
	if _, err := upper.Parse("UP"); err != nil {
		t.Errorf("Parse(UP) error = %v", err)
	}
	if _, err := upper.Parse("down"); err == nil {
		t.Error("Parse(down) expected error")
	}
}

var errNotUp = &ValidationError{Param: "0", Reason: "not UP"}

func TestParseType(t *testing.T) {
	for _, name := range []string{"string", "int", "float", "bool", "duration"} {
		typ, err := ParseType(name)
		if err != nil {
			t.Errorf("ParseType(%q) error = %v", name, err)
			continue
		}
		if typ.Name() != name {
			t.Errorf("ParseType(%q).Name() = %q", name, typ.Name())
		}
	}

	if _, err := ParseType("complex"); err == nil {
		t.Error("ParseType(complex) expected error")
	}
}

func TestParseParam(t *testing.T) {
	tests := []struct {
		decl         string
		wantName     string
		wantType     string
		wantOptional bool
		wantVariadic bool
		wantErr      bool
	}{
		{"item:string", "item", "string", false, false, false},
		{"count:int?", "count", "int", true, false, false},
		{"words:string...", "words", "string", false, true, false},
		{"int", "", "int", false, false, false},
		{"delay:duration", "delay", "duration", false, false, false},
		{"x:matrix", "", "", false, false, true},
	}

	for _, tt := range tests {
		p, variadic, err := ParseParam(tt.decl)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseParam(%q) error = %v, wantErr %v", tt.decl, err, tt.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if p.Name != tt.wantName || p.Type.Name() != tt.wantType || p.Optional != tt.wantOptional || variadic != tt.wantVariadic {
			t.Errorf("ParseParam(%q) = {%s %s optional=%v} variadic=%v", tt.decl, p.Name, p.Type.Name(), p.Optional, variadic)
		}
	}
}
