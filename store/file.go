package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nathoo/elysium/types"
)

const fileExt = ".json"

// FileStore keeps one JSON document per slot in Dir.
type FileStore struct {
	Dir string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (f *FileStore) path(slot string) string {
	return filepath.Join(f.Dir, slot+fileExt)
}

// Save writes the snapshot to <Dir>/<slot>.json. The file is replaced
// atomically so a crash never leaves a half-written snapshot.
func (f *FileStore) Save(ctx context.Context, slot string, s types.State) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("create save directory: %w", err)
	}

	tmp, err := os.CreateTemp(f.Dir, "."+slot+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(slot)); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads and validates the snapshot in slot.
func (f *FileStore) Load(ctx context.Context, slot string) (types.State, error) {
	if err := checkSlot(slot); err != nil {
		return types.State{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.State{}, err
	}
	data, err := os.ReadFile(f.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return types.State{}, fmt.Errorf("%w: %s", ErrNotFound, slot)
	}
	if err != nil {
		return types.State{}, fmt.Errorf("read snapshot: %w", err)
	}
	s, err := decode(data)
	if err != nil {
		return types.State{}, fmt.Errorf("load %s: %w", slot, err)
	}
	return s, nil
}

// Slots lists saved slot names in lexical order.
func (f *FileStore) Slots(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(f.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read save directory: %w", err)
	}

	var slots []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		slot := strings.TrimSuffix(name, fileExt)
		if ValidSlot(slot) {
			slots = append(slots, slot)
		}
	}
	sort.Strings(slots)
	return slots, nil
}
