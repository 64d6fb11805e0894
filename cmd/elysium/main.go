// Elysium turns personal goals into cards played with typed energy.
// Usage: elysium [--version] [--plain] [--script <file>] [--trace]
// [--config <file>] [--catalog <path>] [--new]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/nathoo/elysium/catalog"
	"github.com/nathoo/elysium/cli"
	"github.com/nathoo/elysium/config"
	"github.com/nathoo/elysium/engine"
	"github.com/nathoo/elysium/store"
	"github.com/nathoo/elysium/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: elysium [--version] [--plain] [--script <file>] [--trace] [--config <file>] [--catalog <path>] [--new]"

type options struct {
	plain       bool
	trace       bool
	newGame     bool
	scriptFile  string
	configFile  string
	catalogPath string
}

func main() {
	opts := options{configFile: config.DefaultPath()}

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("elysium %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			opts.plain = true
		case "--trace":
			opts.trace = true
		case "--new":
			opts.newGame = true
		case "--script", "--config", "--catalog":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a path\n", args[i])
				os.Exit(1)
			}
			i++
			switch args[i-1] {
			case "--script":
				opts.scriptFile = args[i]
			case "--config":
				opts.configFile = args[i]
			case "--catalog":
				opts.catalogPath = args[i]
			}
		default:
			fmt.Fprintf(os.Stderr, "unknown argument %q\n%s\n", args[i], usage)
			os.Exit(1)
		}
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	if opts.catalogPath != "" {
		cfg.Catalog.Path = opts.catalogPath
	}

	log, err := initLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging disabled: %v\n", err)
		log = zap.NewNop()
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	cat, err := catalog.LoadOrSeed(cfg.CatalogPath(), log)
	if err != nil {
		log.Warn("catalog unavailable, using defaults", zap.String("path", cfg.CatalogPath()), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Deck: %v (using default templates)\n", err)
		if cat == nil {
			cat = catalog.New(catalog.Seed())
		}
	}

	eng, saveErr := startEngine(ctx, cfg, st, cat, opts.newGame, log)

	sess := cli.NewSession(eng, st, cat, log)
	sess.CatalogPath = cfg.CatalogPath()
	sess.Trace = opts.trace
	if saveErr != nil {
		sess.Notify(fmt.Sprintf("Autosave failed: %v", saveErr))
	}

	log.Info("session started",
		zap.String("version", version),
		zap.String("store", cfg.Store.Backend),
		zap.String("catalog", sess.CatalogPath),
		zap.Int("templates", cat.Len()))

	// Script mode: open file, force plain, echo commands.
	if opts.scriptFile != "" {
		f, err := os.Open(opts.scriptFile)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		stop := store.AutoSave(ctx, eng, st, cfg.Store.Slot, log, notifyFailure(sess))
		defer stop()

		c := cli.New(sess)
		c.In = f
		c.EchoInput = true
		c.Run(ctx)
		return nil
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if opts.plain || !isTerminal() {
		stop := store.AutoSave(ctx, eng, st, cfg.Store.Slot, log, notifyFailure(sess))
		defer stop()
		if cfg.Catalog.Watch {
			watchCatalog(ctx, sess, log, func() {
				lines, err := sess.ReloadCatalog()
				if err != nil {
					sess.Notify(fmt.Sprintf("Deck reload failed: %v", err))
					return
				}
				for _, l := range lines {
					sess.Notify(l)
				}
			})
		}
		cli.New(sess).Run(ctx)
		return nil
	}

	p := tui.NewProgram(tui.New(ctx, sess))
	stop := store.AutoSave(ctx, eng, st, cfg.Store.Slot, log, func(err error) {
		// Autosave runs inside Update; Send must not block the event loop.
		go p.Send(tui.SaveFailedMsg{Err: err})
	})
	defer stop()
	if cfg.Catalog.Watch {
		watchCatalog(ctx, sess, log, func() { p.Send(tui.CatalogChangedMsg{}) })
	}
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// startEngine resumes the autosave slot unless fresh is set. A state
// without goals is dealt from the deck and written to the slot straight
// away, because AutoSave only sees changes made after it subscribes. The
// engine is usable even when that write fails.
func startEngine(ctx context.Context, cfg *config.Config, st store.Store, cat *catalog.Catalog, fresh bool, log *zap.Logger) (*engine.Engine, error) {
	var eng *engine.Engine
	if fresh {
		eng = engine.New(nil, log)
	} else {
		s := store.LoadOrFresh(ctx, st, cfg.Store.Slot, log)
		eng = engine.New(&s, log)
	}
	eng.HandSize = cfg.Game.HandSize

	if snap := eng.Snapshot(); len(snap.Goals) > 0 {
		return eng, nil
	}
	eng.NewGame(cat.Templates())
	if err := st.Save(ctx, cfg.Store.Slot, eng.Snapshot()); err != nil {
		log.Warn("save new game failed", zap.String("slot", cfg.Store.Slot), zap.Error(err))
		return eng, fmt.Errorf("save new game: %w", err)
	}
	return eng, nil
}

// initLogger builds a JSON logger writing to the configured log file. The
// terminal belongs to the UI, so nothing is logged to stderr.
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	path := cfg.LogFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel())
	zapCfg.OutputPaths = []string{path}
	zapCfg.ErrorOutputPaths = []string{path}
	return zapCfg.Build()
}

// openStore opens the configured snapshot backend. The returned function
// releases it.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	path := cfg.StorePath()
	if cfg.Store.Backend == config.BackendSQLite {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create store directory: %w", err)
		}
		db, err := store.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	}
	return store.NewFileStore(path), func() {}, nil
}

// watchCatalog starts watching the deck file. A watch that cannot start
// is logged and skipped.
func watchCatalog(ctx context.Context, sess *cli.Session, log *zap.Logger, onChange func()) {
	if err := catalog.Watch(ctx, sess.CatalogPath, log, onChange); err != nil {
		log.Warn("catalog watch disabled", zap.Error(err))
	}
}

// notifyFailure reports autosave failures at the next prompt.
func notifyFailure(sess *cli.Session) func(error) {
	return func(err error) {
		sess.Notify(fmt.Sprintf("Autosave failed: %v", err))
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
