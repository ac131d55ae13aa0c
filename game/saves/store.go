package saves

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/tenorio-sousa/Ludo-MC322/game/engine"
	"github.com/tenorio-sousa/Ludo-MC322/game/service"
)

var ErrBadSlot = errors.New("slot numbers start at 1")

// record is the stored form of one slot for the document stores
type record struct {
	Slot    int             `json:"slot"`
	SavedAt time.Time       `json:"saved_at"`
	Game    engine.Snapshot `json:"game"`
}

func encode(slot int, snap engine.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(record{Slot: slot, SavedAt: time.Now().UTC(), Game: snap}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal slot %d: %w", slot, err)
	}
	return data, nil
}

func decode(slot int, data []byte) (record, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return record{}, fmt.Errorf("%w: slot %d is unreadable: %v", engine.ErrSlotUnavailable, slot, err)
	}
	return rec, nil
}

func emptySlot(slot int) error {
	return fmt.Errorf("%w: slot %d is empty", engine.ErrSlotUnavailable, slot)
}

func checkSlot(slot int) error {
	if slot < 1 {
		return fmt.Errorf("%w: got %d", ErrBadSlot, slot)
	}
	return nil
}

func sortSlots(infos []service.SlotInfo) []service.SlotInfo {
	sort.Slice(infos, func(i, j int) bool { return infos[i].Slot < infos[j].Slot })
	return infos
}

// Open returns the save store for backend. dir is used by the file backend and
// as the home of the SQLite database when dsn is empty.
func Open(ctx context.Context, backend, dsn, dir string) (service.SaveStore, error) {
	switch backend {
	case "file", "":
		return NewFileStore(dir)
	case "sqlite":
		if dsn == "" {
			dsn = filepath.Join(dir, "saves.db")
		}
		return OpenSQLite(ctx, dsn)
	case "postgres":
		return OpenPostgres(ctx, dsn)
	case "redis":
		return OpenRedis(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown save backend %q", backend)
	}
}
