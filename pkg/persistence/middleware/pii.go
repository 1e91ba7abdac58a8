package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/aretw0/tendril/pkg/ports"
)

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks the values of script
// variables whose names match any of the patterns before the payload is
// persisted. The in-memory session state is untouched; only what reaches
// the store is redacted.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, slot string, payload []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("failed to parse state for redaction: %w", err)
	}

	if vars, ok := doc["variables"].(map[string]any); ok {
		maskMap(vars, m.patterns)
	}

	redacted, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return m.next.Save(ctx, slot, redacted)
}

func (m *piiMiddleware) Load(ctx context.Context, slot string) ([]byte, error) {
	return m.next.Load(ctx, slot)
}

func (m *piiMiddleware) Delete(ctx context.Context, slot string) error {
	return m.next.Delete(ctx, slot)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = "***"
				break
			}
		}

		// Recurse if map
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
