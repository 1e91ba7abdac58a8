package interpreter

import (
	"strconv"
	"strings"
)

// node is a compiled script node: its metadata plus the instruction list its
// body lowers to. Branch declarations collect across the whole body and land
// at the end of the program, after every text and command instruction.
type node struct {
	Title   string
	Tags    []string
	Body    string
	program []instr
}

type instr interface{ instr() }

type textInstr string // verbatim text fragment
type cmdInstr string  // raw command text, surfaced to the host
type jumpInstr string // unconditional continuation into another node

type setInstr struct {
	name string
	raw  string
}

type option struct {
	Label  string
	Target string
}

type optionsInstr []option

func (textInstr) instr()    {}
func (cmdInstr) instr()     {}
func (jumpInstr) instr()    {}
func (setInstr) instr()     {}
func (optionsInstr) instr() {}

func compileNode(title, tags, body string) *node {
	n := &node{
		Title: title,
		Tags:  strings.Fields(tags),
		Body:  body,
	}

	var opts []option
	jump := ""

	for _, line := range strings.Split(body, "\n") {
		rest := line
		for {
			open := strings.Index(rest, "[[")
			if open < 0 {
				break
			}
			close := strings.Index(rest[open:], "]]")
			if close < 0 {
				break
			}
			ref := rest[open+2 : open+close]
			rest = rest[:open] + rest[open+close+2:]

			if label, target, ok := strings.Cut(ref, "|"); ok {
				opts = append(opts, option{
					Label:  strings.TrimSpace(label),
					Target: strings.TrimSpace(target),
				})
			} else {
				jump = strings.TrimSpace(ref)
			}
		}
		n.program = append(n.program, compileSegments(rest)...)
	}

	if len(opts) > 0 {
		n.program = append(n.program, optionsInstr(opts))
	} else if jump != "" {
		n.program = append(n.program, jumpInstr(jump))
	}
	return n
}

// compileSegments splits one body line into text fragments and the <<...>>
// directives between them. Fragments keep their spacing verbatim: the session
// computes command fire offsets from fragment lengths, so trimming here would
// shift every offset.
func compileSegments(line string) []instr {
	var out []instr
	rest := line
	for {
		open := strings.Index(rest, "<<")
		if open < 0 {
			break
		}
		close := strings.Index(rest[open:], ">>")
		if close < 0 {
			break
		}
		if frag := rest[:open]; frag != "" {
			out = append(out, textInstr(frag))
		}
		out = append(out, compileCommand(rest[open+2:open+close]))
		rest = rest[open+close+2:]
	}
	if rest != "" {
		out = append(out, textInstr(rest))
	}
	return out
}

// compileCommand turns directive text into an instruction. Variable
// assignments execute inside the runtime and never surface to the host;
// everything else is the host's to handle.
func compileCommand(text string) instr {
	text = strings.TrimSpace(text)
	rest, ok := strings.CutPrefix(text, "set ")
	if !ok {
		return cmdInstr(text)
	}

	rest = strings.TrimSpace(rest)
	name, value, _ := strings.Cut(rest, " ")
	name = strings.TrimPrefix(name, "$")
	value = strings.TrimSpace(value)
	if after, ok := strings.CutPrefix(value, "to "); ok {
		value = strings.TrimSpace(after)
	}
	if name == "" {
		return cmdInstr(text)
	}
	return setInstr{name: name, raw: value}
}

// parseScalar interprets a set value: numbers, booleans, quoted strings, or a
// $variable copy; anything else stays a raw string.
func (r *Runtime) parseScalar(raw string) any {
	switch {
	case raw == "true":
		return true
	case raw == "false":
		return false
	case len(raw) >= 2 && strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`):
		return raw[1 : len(raw)-1]
	case strings.HasPrefix(raw, "$"):
		v, _ := r.vars.Get(strings.TrimPrefix(raw, "$"))
		return v
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
