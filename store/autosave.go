package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/nathoo/elysium/engine/events"
	"github.com/nathoo/elysium/types"
)

// Source is the part of the engine AutoSave needs.
type Source interface {
	Snapshot() types.State
	Subscribe(fn events.Handler) (unsubscribe func())
}

// AutoSave writes a snapshot of src to slot after every committed change.
// A failed save is logged and passed to onErr (if set); the in-memory state
// is never rolled back and the save is not retried. The returned function
// stops autosaving.
func AutoSave(ctx context.Context, src Source, st Store, slot string, log *zap.Logger, onErr func(error)) (stop func()) {
	if log == nil {
		log = zap.NewNop()
	}
	return src.Subscribe(func(batch []types.Event) {
		if ctx.Err() != nil {
			return
		}
		if err := st.Save(ctx, slot, src.Snapshot()); err != nil {
			log.Warn("autosave failed",
				zap.String("slot", slot),
				zap.Int("events", len(batch)),
				zap.Error(err))
			if onErr != nil {
				onErr(err)
			}
			return
		}
		log.Debug("autosaved", zap.String("slot", slot), zap.String("trigger", batch[0].Type))
	})
}
