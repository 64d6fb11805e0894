package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nathoo/elysium/catalog"
	"github.com/nathoo/elysium/engine"
	"github.com/nathoo/elysium/engine/save"
	"github.com/nathoo/elysium/store"
	"github.com/nathoo/elysium/types"
)

// QuickSlot is the slot used by /save and /load without an argument.
const QuickSlot = "quicksave"

// Session holds what both front-ends share: the engine, the snapshot
// store, the deck catalog and the meta-command handlers. Catalog access is
// guarded because a file watcher may reload it from another goroutine.
type Session struct {
	Engine      *engine.Engine
	Store       store.Store // nil disables /save, /load and /slots
	CatalogPath string
	Log         *zap.Logger
	Trace       bool

	mu      sync.Mutex
	catalog *catalog.Catalog
	notices []string
}

// NewSession creates a session. A nil catalog starts from the default
// templates.
func NewSession(eng *engine.Engine, st store.Store, cat *catalog.Catalog, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if cat == nil {
		cat = catalog.New(catalog.Seed())
	}
	return &Session{Engine: eng, Store: st, Log: log, catalog: cat}
}

// Catalog returns the current deck catalog.
func (s *Session) Catalog() *catalog.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// ReloadCatalog re-reads the catalog from CatalogPath. On failure the
// current catalog is kept. The selected template stays selected while it
// still exists.
func (s *Session) ReloadCatalog() ([]string, error) {
	if s.CatalogPath == "" {
		return nil, errors.New("no catalog file configured")
	}
	cat, err := catalog.Load(s.CatalogPath)
	if err != nil {
		s.Log.Warn("catalog reload failed", zap.String("path", s.CatalogPath), zap.Error(err))
		return nil, err
	}
	s.mu.Lock()
	if sel, ok := s.catalog.Selected(); ok {
		cat.Select(sel.ID)
	}
	s.catalog = cat
	s.mu.Unlock()
	s.Log.Info("catalog reloaded", zap.String("path", s.CatalogPath), zap.Int("templates", cat.Len()))

	out := []string{fmt.Sprintf("Deck reloaded: %d templates.", cat.Len())}
	for _, w := range cat.Warnings {
		out = append(out, "warning: "+w)
	}
	return out, nil
}

// Notify queues a status message for the next prompt. It is safe to call
// from any goroutine.
func (s *Session) Notify(msg string) {
	s.mu.Lock()
	s.notices = append(s.notices, msg)
	s.mu.Unlock()
}

// Notices returns and clears queued status messages.
func (s *Session) Notices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

// MetaResult is the outcome of a /command. Notices are short system
// messages; Output holds listings and table views.
type MetaResult struct {
	Notices []string
	Output  []string
	Quit    bool
}

func notice(format string, args ...any) MetaResult {
	return MetaResult{Notices: []string{fmt.Sprintf(format, args...)}}
}

// Meta dispatches a /command.
func (s *Session) Meta(ctx context.Context, input string) MetaResult {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return MetaResult{}
	}
	cmd := strings.ToLower(parts[0])
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return MetaResult{Notices: []string{"Goodbye."}, Quit: true}

	case "/new":
		return s.cmdNew()

	case "/deck":
		return s.cmdDeck(parts[1:])

	case "/save":
		return s.cmdSave(ctx, arg)

	case "/load":
		return s.cmdLoad(ctx, arg)

	case "/slots":
		return s.cmdSlots(ctx)

	case "/help":
		return s.cmdHelp()

	case "/state":
		return s.cmdState()

	case "/trace":
		s.Trace = !s.Trace
		if s.Trace {
			return notice("Trace output enabled.")
		}
		return notice("Trace output disabled.")

	default:
		return notice("Unknown command: %s. Type /help for available commands.", cmd)
	}
}

func (s *Session) cmdNew() MetaResult {
	templates := s.Catalog().Templates()
	s.Engine.NewGame(templates)
	r := notice("New game dealt from %d templates.", len(templates))
	r.Output = s.Engine.Step("look").Output
	return r
}

func (s *Session) slotArg(arg string) (string, error) {
	if arg == "" {
		arg = QuickSlot
	}
	if !store.ValidSlot(arg) {
		return "", fmt.Errorf("invalid slot name %q", arg)
	}
	return arg, nil
}

func (s *Session) cmdSave(ctx context.Context, arg string) MetaResult {
	if s.Store == nil {
		return notice("Saving is not available.")
	}
	slot, err := s.slotArg(arg)
	if err != nil {
		return notice("Save failed: %v", err)
	}
	if err := s.Store.Save(ctx, slot, s.Engine.Snapshot()); err != nil {
		s.Log.Warn("save failed", zap.String("slot", slot), zap.Error(err))
		return notice("Save failed: %v", err)
	}
	return notice("Game saved to %s.", slot)
}

func (s *Session) cmdLoad(ctx context.Context, arg string) MetaResult {
	if s.Store == nil {
		return notice("Loading is not available.")
	}
	slot, err := s.slotArg(arg)
	if err != nil {
		return notice("Load failed: %v", err)
	}
	st, err := s.Store.Load(ctx, slot)
	if err != nil {
		return notice("Load failed: %v", err)
	}
	s.Engine.Restore(st)

	r := notice("Game loaded from %s.", slot)
	r.Output = s.Engine.Step("look").Output
	return r
}

func (s *Session) cmdSlots(ctx context.Context) MetaResult {
	if s.Store == nil {
		return notice("Saving is not available.")
	}
	slots, err := s.Store.Slots(ctx)
	if err != nil {
		return notice("Listing slots failed: %v", err)
	}
	if len(slots) == 0 {
		return notice("No saved games.")
	}
	return notice("Saved games: %s", strings.Join(slots, ", "))
}

func (s *Session) cmdHelp() MetaResult {
	out := []string{
		"System:",
		"  /new            Deal a new game from the deck",
		"  /deck [reload]  List (or reload) the deck templates; /deck help to edit",
		"  /save [slot]    Save game (default: quicksave)",
		"  /load [slot]    Load game (default: quicksave)",
		"  /slots          List saved games",
		"  /state          Debug: dump current state",
		"  /trace          Toggle event trace output",
		"  /help           Show this help",
		"  /quit           Exit",
		"",
	}
	return MetaResult{Output: append(out, s.Engine.Step("help").Output...)}
}

func (s *Session) cmdState() MetaResult {
	snap := s.Engine.Snapshot()
	data, err := save.Save(&snap)
	if err != nil {
		return notice("State dump failed: %v", err)
	}
	return MetaResult{Output: strings.Split(string(data), "\n")}
}

// FormatTrace renders the events of a result for /trace output.
func FormatTrace(result types.Result) []string {
	if len(result.Events) == 0 {
		return nil
	}
	lines := []string{fmt.Sprintf("[trace] Events: %d", len(result.Events))}
	for _, e := range result.Events {
		keys := make([]string, 0, len(e.Data))
		for k := range e.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString("[trace]   ")
		b.WriteString(e.Type)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
		}
		lines = append(lines, b.String())
	}
	return lines
}
