// Package store persists game snapshots in named slots.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nathoo/elysium/engine/save"
	"github.com/nathoo/elysium/engine/state"
	"github.com/nathoo/elysium/types"
)

// DefaultSlot is the slot written by AutoSave and read at startup.
const DefaultSlot = "autosave"

// ErrNotFound is returned by Load when a slot has never been saved.
var ErrNotFound = errors.New("slot not found")

// Store saves and loads snapshots by slot name.
type Store interface {
	Save(ctx context.Context, slot string, s types.State) error
	Load(ctx context.Context, slot string) (types.State, error)
	Slots(ctx context.Context) ([]string, error)
}

var slotPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// ValidSlot reports whether name can be used as a slot. Slot names double
// as file names, so path separators are rejected.
func ValidSlot(name string) bool {
	return slotPattern.MatchString(name)
}

func checkSlot(name string) error {
	if !ValidSlot(name) {
		return fmt.Errorf("invalid slot name %q", name)
	}
	return nil
}

// encode and decode wrap the snapshot codec so every backend stores the
// same document.
func encode(s types.State) ([]byte, error) {
	return save.Save(&s)
}

func decode(data []byte) (types.State, error) {
	sd, err := save.Load(data)
	if err != nil {
		return types.State{}, err
	}
	var s types.State
	save.ApplySave(&s, sd)
	return s, nil
}

// LoadOrFresh loads slot from st. A missing slot yields a fresh default
// state silently; any other failure is logged and also yields a fresh
// state, so startup never fails on a bad snapshot.
func LoadOrFresh(ctx context.Context, st Store, slot string, log *zap.Logger) types.State {
	if log == nil {
		log = zap.NewNop()
	}
	s, err := st.Load(ctx, slot)
	if err == nil {
		return s
	}
	if !errors.Is(err, ErrNotFound) {
		log.Warn("snapshot unreadable, starting fresh", zap.String("slot", slot), zap.Error(err))
	}
	return state.Clone(state.NewState(uuid.NewString))
}
