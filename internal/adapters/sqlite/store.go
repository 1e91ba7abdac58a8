// Package sqlite provides SQLite-backed save-slot persistence.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/aretw0/tendril/pkg/dialogue"
)

// Store implements ports.StateStore on a single SQLite database. It fits
// hosts that already ship one save database and want dialogue state in it
// rather than in loose files.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("sqlite: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migration failed: %w", err)
	}
	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS dialogue_slots (
			slot TEXT PRIMARY KEY,
			payload BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save upserts the slot payload.
func (s *Store) Save(ctx context.Context, slot string, payload []byte) error {
	if slot == "" {
		return fmt.Errorf("sqlite: slot cannot be empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dialogue_slots (slot, payload, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(slot) DO UPDATE SET
		   payload = excluded.payload,
		   updated_at = CURRENT_TIMESTAMP`,
		slot, payload,
	)
	if err != nil {
		return fmt.Errorf("sqlite: cannot save slot: %w", err)
	}
	return nil
}

// Load retrieves the slot payload.
func (s *Store) Load(ctx context.Context, slot string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM dialogue_slots WHERE slot = ?", slot,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dialogue.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: cannot load slot: %w", err)
	}
	return payload, nil
}

// Delete removes the slot. Missing slots are not an error.
func (s *Store) Delete(ctx context.Context, slot string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM dialogue_slots WHERE slot = ?", slot,
	); err != nil {
		return fmt.Errorf("sqlite: cannot delete slot: %w", err)
	}
	return nil
}

// List returns the occupied slots ordered by name.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT slot FROM dialogue_slots ORDER BY slot",
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: cannot list slots: %w", err)
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("sqlite: cannot scan row: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: row iteration error: %w", err)
	}
	return slots, nil
}
