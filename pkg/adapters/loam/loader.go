// Package loam adapts the Loam document repository to the ports.ScriptSource
// boundary. Script documents come in two authoring forms: markdown files whose
// body is script text in the node-header format, and JSON/YAML files carrying
// the node list inline under a "nodes" key. Either way GetScript hands the
// interpreter the same compiled node array.
package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/tendril/internal/compiler"
)

// Source exposes a Loam repository of script documents as a ScriptSource.
type Source struct {
	Repo *loam.TypedRepository[ScriptMetadata]
}

// New creates a new Loam script source.
func New(repo *loam.TypedRepository[ScriptMetadata]) *Source {
	return &Source{
		Repo: repo,
	}
}

// GetScript retrieves a script document and compiles it to the node array the
// interpreter loads. Loam resolves the ID to a file regardless of extension.
func (s *Source) GetScript(ctx context.Context, id string) ([]byte, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	// Inline node lists (JSON/YAML documents) skip the text compiler.
	if len(doc.Data.Nodes) > 0 {
		data, err := json.Marshal(doc.Data.Nodes)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal script %s: %w", id, err)
		}
		return data, nil
	}

	if strings.TrimSpace(doc.Content) == "" {
		return nil, fmt.Errorf("script %s has no nodes: empty document body", id)
	}

	data, err := compiler.Compile(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", id, err)
	}
	return data, nil
}

// Entry returns the configured entry node of a script, or "" when the
// document does not set one.
func (s *Source) Entry(ctx context.Context, id string) (string, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	return doc.Data.Entry, nil
}

// ListScripts lists all script IDs in the repository.
func (s *Source) ListScripts(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		// Use the ID from metadata if available, otherwise the filename ID.
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	return ids, nil
}

// Watch implements ports.Watchable. Each event carries the ID of a changed
// script document; hosts typically re-run GetScript and hot-reload.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				// Loam debounces bursts itself; pass the changed ID up the
				// chain, respecting context cancellation.
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
