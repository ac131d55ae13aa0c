package saves

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/tenorio-sousa/Ludo-MC322/game/engine"
	"github.com/tenorio-sousa/Ludo-MC322/game/service"
)

const (
	slotPrefix = "save_slot_"
	slotSuffix = ".json"
)

// FileStore keeps each slot in <dir>/save_slot_<n>.json
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create saves directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(slot int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s%d%s", slotPrefix, slot, slotSuffix))
}

// Save writes the slot through a temp file so a failed write keeps the old save
func (s *FileStore) Save(ctx context.Context, slot int, snap engine.Snapshot) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	data, err := encode(slot, snap)
	if err != nil {
		return err
	}

	tmp := s.path(slot) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write slot %d: %w", slot, err)
	}
	if err := os.Rename(tmp, s.path(slot)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write slot %d: %w", slot, err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, slot int) (engine.Snapshot, error) {
	if err := checkSlot(slot); err != nil {
		return engine.Snapshot{}, err
	}
	data, err := os.ReadFile(s.path(slot))
	if os.IsNotExist(err) {
		return engine.Snapshot{}, emptySlot(slot)
	}
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("%w: %v", engine.ErrSlotUnavailable, err)
	}
	rec, err := decode(slot, data)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return rec.Game, nil
}

func (s *FileStore) Delete(ctx context.Context, slot int) (bool, error) {
	if err := checkSlot(slot); err != nil {
		return false, err
	}
	err := os.Remove(s.path(slot))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete slot %d: %w", slot, err)
	}
	return true, nil
}

// List summarises every readable slot file
func (s *FileStore) List(ctx context.Context) ([]service.SlotInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read saves directory: %w", err)
	}

	infos := []service.SlotInfo{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, slotPrefix) || !strings.HasSuffix(name, slotSuffix) {
			continue
		}
		slot, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, slotPrefix), slotSuffix))
		if err != nil || slot < 1 {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		rec, err := decode(slot, data)
		if err != nil {
			log.WithError(err).WithField("slot", slot).Warn("Skipping unreadable save")
			continue
		}
		infos = append(infos, service.NewSlotInfo(slot, rec.SavedAt, rec.Game))
	}
	return sortSlots(infos), nil
}

func (s *FileStore) Close() error { return nil }
