package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/elysium/catalog"
	"github.com/nathoo/elysium/engine/energy"
	"github.com/nathoo/elysium/engine/resolve"
	"github.com/nathoo/elysium/types"
)

var deckHelp = []string{
	"Deck:",
	"  /deck                    List templates",
	"  /deck reload             Re-read the deck file",
	"  /deck add [title]        Add a template at the top and select it",
	"  /deck dup <card>         Duplicate a template and select the copy",
	"  /deck rm <card>          Delete a template",
	"  /deck move <card> <n>    Move a template to position n",
	"  /deck select <card>      Select a template and show it",
	"  /deck title <text>       Rename the selected template",
	"  /deck details <text>     Set its details",
	"  /deck crit <text>        Add an acceptance criterion",
	"  /deck uncrit <n>         Remove criterion n",
	"  /deck cost <energy> <n>  Set its cost in one energy type (0 removes it)",
	"  /deck art <key>          Set its art",
	"Cards are given by position or title. Changes are written to the deck",
	"file; the running game keeps the cards it was dealt.",
}

var errNoSelection = errors.New("no template selected")

func (s *Session) cmdDeck(args []string) MetaResult {
	if len(args) == 0 {
		return s.listDeck()
	}
	sub := strings.ToLower(args[0])
	rest := args[1:]
	text := strings.Join(rest, " ")

	switch sub {
	case "reload":
		out, err := s.ReloadCatalog()
		if err != nil {
			return notice("Reload failed: %v", err)
		}
		return MetaResult{Notices: out}

	case "help":
		return MetaResult{Output: deckHelp}

	case "select":
		s.mu.Lock()
		defer s.mu.Unlock()
		g, err := resolve.Goal(s.catalog.Templates(), text)
		if err != nil {
			return notice("%v", err)
		}
		s.catalog.Select(g.ID)
		return MetaResult{Output: describeTemplate(g)}

	case "add":
		return s.editDeck(func(c *catalog.Catalog) (string, error) {
			card := c.AddNew()
			if text != "" {
				card.Title = text
				c.Update(card)
			}
			return fmt.Sprintf("Added %s to the deck.", card.Title), nil
		})

	case "dup":
		return s.editDeck(func(c *catalog.Catalog) (string, error) {
			g, err := resolve.Goal(c.Templates(), text)
			if err != nil {
				return "", err
			}
			c.Duplicate(g.ID)
			return fmt.Sprintf("Duplicated %s.", g.Title), nil
		})

	case "rm", "delete":
		return s.editDeck(func(c *catalog.Catalog) (string, error) {
			g, err := resolve.Goal(c.Templates(), text)
			if err != nil {
				return "", err
			}
			c.Delete(g.ID)
			return fmt.Sprintf("Removed %s from the deck.", g.Title), nil
		})

	case "move":
		if len(rest) < 2 {
			return notice("Usage: /deck move <card> <n>")
		}
		to, err := strconv.Atoi(rest[len(rest)-1])
		if err != nil {
			return notice("Usage: /deck move <card> <n>")
		}
		ref := strings.Join(rest[:len(rest)-1], " ")
		return s.editDeck(func(c *catalog.Catalog) (string, error) {
			templates := c.Templates()
			g, err := resolve.Goal(templates, ref)
			if err != nil {
				return "", err
			}
			from := 0
			for i, t := range templates {
				if t.ID == g.ID {
					from = i
				}
			}
			if !c.Move(from, to-1) {
				return "", fmt.Errorf("position %d is out of range (1-%d)", to, len(templates))
			}
			return fmt.Sprintf("Moved %s to position %d.", g.Title, to), nil
		})

	case "title", "details", "crit", "uncrit", "cost", "art":
		return s.editDeck(func(c *catalog.Catalog) (string, error) {
			g, ok := c.Selected()
			if !ok {
				return "", errNoSelection
			}
			msg, err := editTemplate(&g, sub, rest)
			if err != nil {
				return "", err
			}
			c.Update(g)
			return msg, nil
		})

	default:
		return notice("Unknown deck command: %s. Type /deck help.", sub)
	}
}

// editTemplate changes one field of g.
func editTemplate(g *types.GoalCard, field string, args []string) (string, error) {
	text := strings.Join(args, " ")
	switch field {
	case "title":
		if text == "" {
			return "", errors.New("a title cannot be empty")
		}
		old := g.Title
		g.Title = text
		return fmt.Sprintf("Renamed %s to %s.", old, text), nil

	case "details":
		g.Details = text
		return fmt.Sprintf("Updated the details of %s.", g.Title), nil

	case "crit":
		if text == "" {
			return "", errors.New("a criterion cannot be empty")
		}
		g.AcceptanceCriteria = append(g.AcceptanceCriteria, text)
		return fmt.Sprintf("%s now has %d criteria.", g.Title, len(g.AcceptanceCriteria)), nil

	case "uncrit":
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 || n > len(g.AcceptanceCriteria) {
			return "", fmt.Errorf("%s has no criterion %s", g.Title, text)
		}
		removed := g.AcceptanceCriteria[n-1]
		g.AcceptanceCriteria = append(g.AcceptanceCriteria[:n-1], g.AcceptanceCriteria[n:]...)
		return fmt.Sprintf("Removed %q from %s.", removed, g.Title), nil

	case "cost":
		if len(args) != 2 {
			return "", errors.New("usage: /deck cost <energy> <n>")
		}
		t, ok := energy.Parse(args[0])
		if !ok {
			return "", fmt.Errorf("unknown energy type %q", args[0])
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return "", fmt.Errorf("cost must be a whole number of at least 0, got %q", args[1])
		}
		if g.EnergyCost == nil {
			g.EnergyCost = types.EnergyCost{}
		}
		g.EnergyCost[t] = n
		g.EnergyCost = energy.NewCost(g.EnergyCost)
		return fmt.Sprintf("%s now costs %s.", g.Title, energy.CastingCost(g.EnergyCost)), nil

	case "art":
		if text == "" {
			return "", errors.New("usage: /deck art <key>")
		}
		g.ArtKey = text
		return fmt.Sprintf("%s now shows %s.", g.Title, text), nil
	}
	return "", fmt.Errorf("unknown field %s", field)
}

// editDeck applies edit to the catalog and writes the deck file. A deck
// that cannot be written is refused before anything changes. Without a
// deck file the change lives in memory only.
func (s *Session) editDeck(edit func(*catalog.Catalog) (string, error)) MetaResult {
	if s.CatalogPath != "" {
		if err := catalog.Writable(s.CatalogPath); err != nil {
			return notice("Deck not changed: %v", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg, err := edit(s.catalog)
	if err != nil {
		return notice("Deck not changed: %v", err)
	}
	r := MetaResult{Notices: []string{msg}}
	if s.CatalogPath == "" {
		r.Notices = append(r.Notices, "No deck file is configured; the change lasts until you quit.")
		return r
	}
	if err := catalog.Save(s.CatalogPath, s.catalog); err != nil {
		s.Log.Warn("catalog save failed", zap.String("path", s.CatalogPath), zap.Error(err))
		r.Notices = append(r.Notices, fmt.Sprintf("Deck save failed: %v", err))
		return r
	}
	s.Log.Info("catalog saved", zap.String("path", s.CatalogPath), zap.Int("templates", s.catalog.Len()))
	return r
}

func (s *Session) listDeck() MetaResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat := s.catalog

	title := cat.Title
	if title == "" {
		title = "Deck"
	}
	selected, _ := cat.Selected()
	out := []string{fmt.Sprintf("%s (%d templates):", title, cat.Len())}
	for i, g := range cat.Templates() {
		line := fmt.Sprintf("  %d. %s  [%s]  %d criteria",
			i+1, g.Title, energy.CastingCost(g.EnergyCost), len(g.AcceptanceCriteria))
		if g.ID == selected.ID {
			line += "  (selected)"
		}
		out = append(out, line)
	}
	if s.CatalogPath != "" {
		out = append(out, "Source: "+s.CatalogPath)
	}
	return MetaResult{Output: out}
}

func describeTemplate(g types.GoalCard) []string {
	out := []string{fmt.Sprintf("%s  [%s]  art: %s", g.Title, energy.CastingCost(g.EnergyCost), g.ArtKey)}
	if g.Details != "" {
		out = append(out, g.Details)
	}
	for i, c := range g.AcceptanceCriteria {
		out = append(out, fmt.Sprintf("  %d. %s", i+1, c))
	}
	return out
}
