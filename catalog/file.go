package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/elysium/loader"
	"github.com/nathoo/elysium/types"
)

// ErrReadOnly is returned when saving to a format that is only loaded.
var ErrReadOnly = errors.New("catalog format is read-only")

type format int

const (
	formatJSON format = iota
	formatYAML
	formatLua
)

// formatOf picks the catalog format from path. A directory is a Lua deck.
func formatOf(path string) (format, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return formatLua, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".lua":
		return formatLua, nil
	}
	return 0, fmt.Errorf("unsupported catalog file %s (want .json, .yaml, .yml, .lua or a directory)", path)
}

// Load reads a catalog from a JSON or YAML list of cards, a Lua file, or a
// directory of Lua files.
func Load(path string) (*Catalog, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	if f == formatLua {
		deck, err := loader.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load deck: %w", err)
		}
		c := New(deck.Cards)
		c.Title = deck.Title
		c.Warnings = deck.Warnings
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	cards, err := decode(f, data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", filepath.Base(path), err)
	}
	return New(cards), nil
}

func decode(f format, data []byte) ([]types.GoalCard, error) {
	var cards []types.GoalCard
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	switch f {
	case formatJSON:
		if err := json.Unmarshal(data, &cards); err != nil {
			return nil, err
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, &cards); err != nil {
			return nil, err
		}
	}
	return cards, nil
}

// Writable returns an error wrapping ErrReadOnly when Save cannot write
// path, or the format error for an unsupported path.
func Writable(path string) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}
	if f == formatLua {
		return fmt.Errorf("save %s: %w", path, ErrReadOnly)
	}
	return nil
}

// Save writes the templates to path as JSON or YAML, replacing the file
// atomically. Lua decks cannot be saved.
func Save(path string, c *Catalog) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch f {
	case formatJSON:
		data, err = json.MarshalIndent(c.Templates(), "", "  ")
	case formatYAML:
		data, err = yaml.Marshal(c.Templates())
	default:
		return fmt.Errorf("save %s: %w", path, ErrReadOnly)
	}
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close catalog: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}

// LoadOrSeed loads the catalog at path. When the file is missing or holds
// no cards, the default templates are used and written back to path.
func LoadOrSeed(path string, log *zap.Logger) (*Catalog, error) {
	if log == nil {
		log = zap.NewNop()
	}

	c, err := Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Info("catalog missing, seeding defaults", zap.String("path", path))
	case err != nil:
		return nil, err
	case c.Len() > 0:
		for _, w := range c.Warnings {
			log.Warn("catalog warning", zap.String("path", path), zap.String("warning", w))
		}
		return c, nil
	default:
		log.Info("catalog empty, seeding defaults", zap.String("path", path))
	}

	c = New(Seed())
	if err := Save(path, c); err != nil {
		return c, fmt.Errorf("write seeded catalog: %w", err)
	}
	return c, nil
}
