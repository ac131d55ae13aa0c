package saves

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/tenorio-sousa/Ludo-MC322/game/engine"
	"github.com/tenorio-sousa/Ludo-MC322/game/service"
)

const createSlotsTable = `
CREATE TABLE IF NOT EXISTS save_slots (
	slot     INTEGER PRIMARY KEY,
	saved_at BIGINT NOT NULL,
	data     TEXT NOT NULL
)`

// slotRow is one row of save_slots; saved_at is unix milliseconds
type slotRow struct {
	Slot    int    `db:"slot"`
	SavedAt int64  `db:"saved_at"`
	Data    string `db:"data"`
}

// SQLStore keeps slots in a save_slots table. Queries are written with '?'
// and rebound for the driver, so one store serves SQLite and PostgreSQL.
type SQLStore struct {
	db *sqlx.DB
}

// OpenSQLite opens (and creates) a SQLite database file
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)
	return newSQLStore(ctx, db)
}

// OpenPostgres connects to dsn with lib/pq
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres save backend needs a DSN")
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return newSQLStore(ctx, db)
}

// NewSQLStore wraps an open database and creates the table
func NewSQLStore(ctx context.Context, db *sqlx.DB) (*SQLStore, error) {
	return newSQLStore(ctx, db)
}

func newSQLStore(ctx context.Context, db *sqlx.DB) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createSlotsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create save_slots table: %w", err)
	}
	log.WithField("driver", db.DriverName()).Info("Save slot database ready")
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Save(ctx context.Context, slot int, snap engine.Snapshot) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal slot %d: %w", slot, err)
	}

	query := s.db.Rebind(`INSERT INTO save_slots (slot, saved_at, data) VALUES (?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET saved_at = excluded.saved_at, data = excluded.data`)
	if _, err := s.db.ExecContext(ctx, query, slot, time.Now().UnixMilli(), string(data)); err != nil {
		return fmt.Errorf("failed to save slot %d: %w", slot, err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context, slot int) (engine.Snapshot, error) {
	if err := checkSlot(slot); err != nil {
		return engine.Snapshot{}, err
	}

	var row slotRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT slot, saved_at, data FROM save_slots WHERE slot = ?`), slot)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Snapshot{}, emptySlot(slot)
	}
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("%w: %v", engine.ErrSlotUnavailable, err)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal([]byte(row.Data), &snap); err != nil {
		return engine.Snapshot{}, fmt.Errorf("%w: slot %d is unreadable: %v", engine.ErrSlotUnavailable, slot, err)
	}
	return snap, nil
}

func (s *SQLStore) Delete(ctx context.Context, slot int) (bool, error) {
	if err := checkSlot(slot); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM save_slots WHERE slot = ?`), slot)
	if err != nil {
		return false, fmt.Errorf("failed to delete slot %d: %w", slot, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete slot %d: %w", slot, err)
	}
	return n > 0, nil
}

func (s *SQLStore) List(ctx context.Context) ([]service.SlotInfo, error) {
	var rows []slotRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT slot, saved_at, data FROM save_slots ORDER BY slot`); err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	infos := []service.SlotInfo{}
	for _, row := range rows {
		var snap engine.Snapshot
		if err := json.Unmarshal([]byte(row.Data), &snap); err != nil {
			log.WithError(err).WithField("slot", row.Slot).Warn("Skipping unreadable save")
			continue
		}
		infos = append(infos, service.NewSlotInfo(row.Slot, time.UnixMilli(row.SavedAt).UTC(), snap))
	}
	return infos, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
