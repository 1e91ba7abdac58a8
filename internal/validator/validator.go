// Package validator checks compiled scripts for referential integrity: every
// [[label|target]] option and [[target]] jump must name a defined node, and
// every node should be reachable from the entry node.
package validator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/tendril/pkg/dialogue"
)

// BrokenLink is a branch reference to a node the script does not define.
type BrokenLink struct {
	From   string
	Target string
}

// Report is the outcome of validating one compiled script. Broken links and a
// missing entry node are errors; unreachable nodes are advisory.
type Report struct {
	Entry        string
	EntryMissing bool
	Nodes        int
	Broken       []BrokenLink
	Unreachable  []string
}

// OK reports whether the script passed every check, advisories included.
func (r *Report) OK() bool {
	return !r.EntryMissing && len(r.Broken) == 0 && len(r.Unreachable) == 0
}

// Err collapses the error-level findings into a single error, or nil.
func (r *Report) Err() error {
	var problems []string
	if r.EntryMissing {
		problems = append(problems, fmt.Sprintf("entry node '%s' not found", r.Entry))
	}
	for _, b := range r.Broken {
		problems = append(problems, fmt.Sprintf("node '%s' references missing node '%s'", b.From, b.Target))
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(problems), strings.Join(problems, "\n- "))
}

// Validate parses compiled script data and crawls every branch reference
// starting from the entry node. An empty entry defaults to "Start".
func Validate(data []byte, entry string) (*Report, error) {
	var nodes []struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("%w: %v", dialogue.ErrScriptParse, err)
	}
	if entry == "" {
		entry = "Start"
	}

	defined := make(map[string]bool, len(nodes))
	refs := make(map[string][]string, len(nodes))
	order := make([]string, 0, len(nodes))
	for _, n := range nodes {
		defined[n.Title] = true
		refs[n.Title] = branchTargets(n.Body)
		order = append(order, n.Title)
	}

	report := &Report{Entry: entry, Nodes: len(nodes)}
	if !defined[entry] {
		report.EntryMissing = true
	}

	visited := make(map[string]bool)
	queue := []string{entry}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] || !defined[current] {
			continue
		}
		visited[current] = true

		for _, target := range refs[current] {
			if !defined[target] {
				report.Broken = append(report.Broken, BrokenLink{From: current, Target: target})
				continue
			}
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	for _, title := range order {
		if !visited[title] {
			report.Unreachable = append(report.Unreachable, title)
		}
	}
	return report, nil
}

// branchTargets extracts the node titles a body references through [[...]]
// declarations, in order of appearance.
func branchTargets(body string) []string {
	var targets []string
	rest := body
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
		rest = rest[open+close+2:]

		if _, target, ok := strings.Cut(ref, "|"); ok {
			targets = append(targets, strings.TrimSpace(target))
		} else {
			targets = append(targets, strings.TrimSpace(ref))
		}
	}
	return targets
}
