package save

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrSlotNotFound is returned by Get for an unknown slot.
var ErrSlotNotFound = errors.New("save slot not found")

const schema = `
CREATE TABLE IF NOT EXISTS saves (
	slot     TEXT PRIMARY KEY,
	game     TEXT NOT NULL DEFAULT '',
	area     TEXT NOT NULL DEFAULT '',
	data     BLOB NOT NULL,
	saved_at INTEGER NOT NULL
);`

// Slot describes one stored save.
type Slot struct {
	Name    string
	Game    string
	Area    string
	SavedAt time.Time
}

// Store keeps named save slots in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the slot database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("save database path is required")
	}
	db, err := sql.Open("sqlite", filepath.Clean(path)+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put writes ss to slot, replacing any previous save there.
func (s *Store) Put(ctx context.Context, slot string, ss *SaveState) error {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return fmt.Errorf("slot name is required")
	}
	data, err := Marshal(ss)
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saves (slot, game, area, data, saved_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET game = excluded.game, area = excluded.area,
		 data = excluded.data, saved_at = excluded.saved_at`,
		slot, ss.Game, ss.CurrentArea, data, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("write slot %q: %w", slot, err)
	}
	return nil
}

// Get reads the save in slot.
func (s *Store) Get(ctx context.Context, slot string) (*SaveState, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM saves WHERE slot = ?`, slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("slot %q: %w", slot, ErrSlotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %q: %w", slot, err)
	}
	return Unmarshal(data)
}

// List returns every slot, most recent first.
func (s *Store) List(ctx context.Context) ([]Slot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slot, game, area, saved_at FROM saves ORDER BY saved_at DESC, slot`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var out []Slot
	for rows.Next() {
		var sl Slot
		var millis int64
		if err := rows.Scan(&sl.Name, &sl.Game, &sl.Area, &millis); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		sl.SavedAt = time.UnixMilli(millis).UTC()
		out = append(out, sl)
	}
	return out, rows.Err()
}

// Delete removes a slot. Deleting an empty slot is not an error.
func (s *Store) Delete(ctx context.Context, slot string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("delete slot %q: %w", slot, err)
	}
	return nil
}
