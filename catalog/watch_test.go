package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWatch_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.json")
	require.NoError(t, Save(path, New(Seed())))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	require.NoError(t, Watch(ctx, path, zaptest.NewLogger(t), func() { calls.Add(1) }))

	// Unrelated files in the same directory are ignored.
	writeTestFile(t, filepath.Join(dir, "notes.txt"), "hello")
	time.Sleep(3 * Debounce)
	assert.Equal(t, int32(0), calls.Load())

	c := New(Seed())
	c.AddNew()
	require.NoError(t, Save(path, c))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
}

func TestWatch_DebouncesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.yaml")
	writeTestFile(t, path, "- title: A\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	require.NoError(t, Watch(ctx, path, nil, func() { calls.Add(1) }))

	for i := 0; i < 5; i++ {
		writeTestFile(t, path, "- title: B\n")
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(3 * Debounce)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatch_LuaDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "deck.lua"), `Goal "A" {}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	require.NoError(t, Watch(ctx, dir, nil, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}))

	writeTestFile(t, filepath.Join(dir, "extra.lua"), `Goal "B" {}`)
	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification for new .lua file")
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.json")
	require.NoError(t, Save(path, New(Seed())))

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	require.NoError(t, Watch(ctx, path, nil, func() { calls.Add(1) }))
	cancel()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	time.Sleep(3 * Debounce)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "deck.json"), nil, func() {})
	assert.Error(t, err)
}
