package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/tendril/pkg/dialogue"
)

// Store implements ports.StateStore on the local filesystem. Each slot is
// one JSON file in the base directory.
type Store struct {
	BasePath string
}

// New creates a Store rooted at basePath. An empty basePath defaults to
// ".tendril/slots".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".tendril", "slots")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) slotPath(slot string) string {
	return filepath.Join(s.BasePath, slot+".json")
}

// Save writes the payload atomically: temp file in the same directory,
// fsync, close, rename. A crash mid-save leaves the previous file intact.
func (s *Store) Save(ctx context.Context, slot string, payload []byte) error {
	if slot == "" {
		return fmt.Errorf("slot cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("cannot ensure slot directory: %w", err)
	}

	destPath := s.slotPath(slot)

	// Same directory keeps temp and destination on one filesystem, which
	// rename needs to be atomic.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+slot+"-*.json")
	if err != nil {
		return fmt.Errorf("cannot create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(payload); err != nil {
		return fmt.Errorf("cannot write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("cannot fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("cannot close temp file: %w", err)
	}

	// Windows refuses to rename over an existing file; the remove+rename
	// window is acceptable against the alternative of partial writes.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("cannot replace slot file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("cannot rename temp file into place: %w", err)
	}
	return nil
}

// Load reads the slot payload.
func (s *Store) Load(ctx context.Context, slot string) ([]byte, error) {
	if slot == "" {
		return nil, fmt.Errorf("slot cannot be empty")
	}

	payload, err := os.ReadFile(s.slotPath(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dialogue.ErrSlotNotFound
		}
		return nil, fmt.Errorf("cannot read slot file: %w", err)
	}
	return payload, nil
}

// Delete removes the slot file. Missing files are not an error.
func (s *Store) Delete(ctx context.Context, slot string) error {
	if slot == "" {
		return fmt.Errorf("slot cannot be empty")
	}

	if err := os.Remove(s.slotPath(slot)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cannot delete slot file: %w", err)
	}
	return nil
}

// List returns the slots present in the base directory.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("cannot list slots: %w", err)
	}

	var slots []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, "tmp-") {
			continue
		}
		slots = append(slots, strings.TrimSuffix(name, ".json"))
	}
	return slots, nil
}
