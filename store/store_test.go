package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nathoo/elysium/engine"
	"github.com/nathoo/elysium/engine/energy"
	"github.com/nathoo/elysium/engine/save"
	"github.com/nathoo/elysium/types"
)

func playedState(t *testing.T) types.State {
	t.Helper()
	e := engine.New(nil, zaptest.NewLogger(t))
	e.NewGame([]types.GoalCard{
		{Title: "Workout", AcceptanceCriteria: []string{"Warm-up", "Lifts"}, EnergyCost: types.EnergyCost{types.Soma: 1}},
		{Title: "Read", AcceptanceCriteria: []string{"Chapter"}},
	})
	hand := e.Hand()
	require.True(t, e.AttemptCast(hand[0].ID))
	e.SetCriterionDone(hand[0].ID, 1, true)
	return e.Snapshot()
}

type backend struct {
	name string
	open func(t *testing.T) Store
}

func backends() []backend {
	return []backend{
		{"file", func(t *testing.T) Store {
			return NewFileStore(filepath.Join(t.TempDir(), "saves"))
		}},
		{"sqlite", func(t *testing.T) Store {
			st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "elysium.db"))
			require.NoError(t, err)
			t.Cleanup(func() { st.Close() })
			return st
		}},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			st := b.open(t)
			want := playedState(t)

			require.NoError(t, st.Save(ctx, "slot1", want))
			got, err := st.Load(ctx, "slot1")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestStore_Overwrite(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			st := b.open(t)
			first := playedState(t)
			second := playedState(t)

			require.NoError(t, st.Save(ctx, DefaultSlot, first))
			require.NoError(t, st.Save(ctx, DefaultSlot, second))

			got, err := st.Load(ctx, DefaultSlot)
			require.NoError(t, err)
			assert.Equal(t, second, got)

			slots, err := st.Slots(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{DefaultSlot}, slots)
		})
	}
}

func TestStore_MissingSlot(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			_, err := b.open(t).Load(context.Background(), "nothing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_SlotsSorted(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			st := b.open(t)
			s := playedState(t)
			for _, slot := range []string{"zeta", "alpha", "mid"} {
				require.NoError(t, st.Save(ctx, slot, s))
			}
			slots, err := st.Slots(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"alpha", "mid", "zeta"}, slots)
		})
	}
}

func TestStore_RejectsBadSlotNames(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			st := b.open(t)
			for _, slot := range []string{"", "../escape", "a/b", ".hidden"} {
				assert.Error(t, st.Save(context.Background(), slot, playedState(t)), "slot %q", slot)
			}
		})
	}
}

func TestFileStore_SlotsOnMissingDir(t *testing.T) {
	st := NewFileStore(filepath.Join(t.TempDir(), "never-created"))
	slots, err := st.Slots(context.Background())
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	st := NewFileStore(dir)
	require.NoError(t, st.Save(context.Background(), "one", playedState(t)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "one.json", entries[0].Name())
}

func TestFileStore_MalformedSnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"goals":[{"id":"g","zone":"limbo"}]}`), 0o644))

	_, err := NewFileStore(dir).Load(context.Background(), "bad")
	assert.ErrorIs(t, err, save.ErrInvalid)
}

func TestSQLiteStore_ChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "elysium.db"))
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Save(ctx, "slot", playedState(t)))
	_, err = st.db.ExecContext(ctx, `UPDATE snapshots SET checksum = 'tampered' WHERE slot = 'slot'`)
	require.NoError(t, err)

	_, err = st.Load(ctx, "slot")
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestSQLiteStore_MigratesOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "elysium.db")

	st, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	v, err := schemaVersion(st.db)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	want := playedState(t)
	require.NoError(t, st.Save(ctx, "slot", want))
	require.NoError(t, st.Close())

	// Reopening finds nothing to migrate and keeps the data.
	st, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer st.Close()
	v, err = schemaVersion(st.db)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)

	got, err := st.Load(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadOrFresh(t *testing.T) {
	ctx := context.Background()

	t.Run("saved slot", func(t *testing.T) {
		st := NewFileStore(t.TempDir())
		want := playedState(t)
		require.NoError(t, st.Save(ctx, DefaultSlot, want))
		assert.Equal(t, want, LoadOrFresh(ctx, st, DefaultSlot, zaptest.NewLogger(t)))
	})

	t.Run("missing slot is silent", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		s := LoadOrFresh(ctx, NewFileStore(t.TempDir()), DefaultSlot, zap.New(core))
		assertFresh(t, s)
		assert.Zero(t, logs.Len())
	})

	t.Run("malformed slot warns", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultSlot+".json"), []byte("not json"), 0o644))

		core, logs := observer.New(zap.WarnLevel)
		s := LoadOrFresh(ctx, NewFileStore(dir), DefaultSlot, zap.New(core))
		assertFresh(t, s)
		assert.Equal(t, 1, logs.Len())
	})
}

func assertFresh(t *testing.T, s types.State) {
	t.Helper()
	assert.Empty(t, s.Goals)
	assert.Empty(t, s.BattlefieldOrder)
	require.Len(t, s.Energies, len(energy.Types))
	for i, e := range s.Energies {
		assert.Equal(t, energy.Types[i], e.Type)
		assert.False(t, e.IsTapped)
		assert.Empty(t, e.BoundGoalID)
	}
}

// failingStore rejects every save.
type failingStore struct {
	Store
	calls int
}

func (f *failingStore) Save(context.Context, string, types.State) error {
	f.calls++
	return errors.New("disk full")
}

func TestAutoSave_SavesAfterEachChange(t *testing.T) {
	ctx := context.Background()
	st := NewFileStore(t.TempDir())
	e := engine.New(nil, zaptest.NewLogger(t))

	stop := AutoSave(ctx, e, st, DefaultSlot, zaptest.NewLogger(t), func(err error) {
		t.Errorf("unexpected autosave error: %v", err)
	})
	defer stop()

	e.NewGame([]types.GoalCard{{Title: "Workout", EnergyCost: types.EnergyCost{types.Soma: 1}}})
	goal := e.Hand()[0]
	require.True(t, e.AttemptCast(goal.ID))

	got, err := st.Load(ctx, DefaultSlot)
	require.NoError(t, err)
	assert.Equal(t, e.Snapshot(), got)
}

func TestAutoSave_RejectedCallDoesNotSave(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{}
	e := engine.New(nil, zaptest.NewLogger(t))
	e.NewGame(nil)

	AutoSave(ctx, e, fs, DefaultSlot, zaptest.NewLogger(t), nil)
	e.AttemptCast("missing")
	e.CompleteGoal("missing")

	assert.Zero(t, fs.calls)
}

func TestAutoSave_FailureKeepsState(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{}
	e := engine.New(nil, zaptest.NewLogger(t))

	core, logs := observer.New(zap.WarnLevel)
	var reported []error
	AutoSave(ctx, e, fs, DefaultSlot, zap.New(core), func(err error) { reported = append(reported, err) })

	e.NewGame([]types.GoalCard{{Title: "Workout"}})
	id := e.AddGoal(types.GoalCard{Title: "Read"})

	assert.Equal(t, 2, fs.calls, "one save attempt per mutating call, no retries")
	assert.Len(t, reported, 2)
	assert.Equal(t, 2, logs.FilterMessage("autosave failed").Len())

	_, ok := e.Goal(id)
	assert.True(t, ok, "in-memory mutation must survive a failed save")
	assert.Len(t, e.Hand(), 1)
}

func TestAutoSave_Stop(t *testing.T) {
	fs := &failingStore{}
	e := engine.New(nil, nil)
	stop := AutoSave(context.Background(), e, fs, DefaultSlot, nil, nil)

	e.NewGame(nil)
	stop()
	e.AddGoal(types.GoalCard{Title: "after stop"})

	assert.Equal(t, 1, fs.calls)
}
