package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nathoo/elysium/types"
)

// ErrChecksum is returned when a stored snapshot no longer matches the
// checksum recorded with it.
var ErrChecksum = errors.New("snapshot checksum mismatch")

// SQLiteStore keeps one row per slot in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates
// it to the current schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes
	// writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrateSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Save upserts the snapshot for slot.
func (s *SQLiteStore) Save(ctx context.Context, slot string, st types.State) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	data, err := encode(st)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	const query = `
		INSERT INTO snapshots (slot, data, checksum, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			data = excluded.data,
			checksum = excluded.checksum,
			saved_at = excluded.saved_at`
	if _, err := s.db.ExecContext(ctx, query, slot, data, checksum(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("save slot %s: %w", slot, err)
	}
	return nil
}

// Load reads the snapshot for slot and verifies its checksum.
func (s *SQLiteStore) Load(ctx context.Context, slot string) (types.State, error) {
	if err := checkSlot(slot); err != nil {
		return types.State{}, err
	}

	var data []byte
	var sum string
	err := s.db.QueryRowContext(ctx,
		`SELECT data, checksum FROM snapshots WHERE slot = ?`, slot).Scan(&data, &sum)
	if errors.Is(err, sql.ErrNoRows) {
		return types.State{}, fmt.Errorf("%w: %s", ErrNotFound, slot)
	}
	if err != nil {
		return types.State{}, fmt.Errorf("load slot %s: %w", slot, err)
	}
	if checksum(data) != sum {
		return types.State{}, fmt.Errorf("load slot %s: %w", slot, ErrChecksum)
	}

	st, err := decode(data)
	if err != nil {
		return types.State{}, fmt.Errorf("load %s: %w", slot, err)
	}
	return st, nil
}

// Slots lists saved slot names in lexical order.
func (s *SQLiteStore) Slots(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slot FROM snapshots ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}
