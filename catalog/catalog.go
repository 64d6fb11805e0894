// Package catalog manages the editable list of goal templates a new game
// is dealt from. The catalog is independent of live game state: editing or
// deleting a template never touches cards already in play.
package catalog

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/nathoo/elysium/engine"
	"github.com/nathoo/elysium/engine/energy"
	"github.com/nathoo/elysium/engine/state"
	"github.com/nathoo/elysium/types"
)

// NewTitle is the title given to templates created by AddNew.
const NewTitle = "New Goal"

// Catalog is an ordered list of goal templates with a selection cursor.
// It is not safe for concurrent use.
type Catalog struct {
	// Title is the deck title, if the source format carries one.
	Title string
	// Warnings are non-fatal problems reported while loading.
	Warnings []string
	// NewID generates template identifiers.
	NewID func() string

	cards    []types.GoalCard
	selected string
}

// New builds a catalog from cards. Missing or duplicate IDs are replaced,
// costs are normalized, an empty art key becomes the default, and the first
// card is selected.
func New(cards []types.GoalCard) *Catalog {
	c := &Catalog{NewID: uuid.NewString}
	seen := make(map[string]bool, len(cards))
	for _, card := range cards {
		card = normalize(card)
		if card.ID == "" || seen[card.ID] {
			card.ID = c.NewID()
		}
		seen[card.ID] = true
		c.cards = append(c.cards, card)
	}
	if len(c.cards) > 0 {
		c.selected = c.cards[0].ID
	}
	return c
}

// Seed returns the default templates used when no catalog exists yet.
func Seed() []types.GoalCard {
	return []types.GoalCard{
		{
			ID:                 uuid.NewString(),
			Title:              "Deep work block",
			Details:            "One uninterrupted block.",
			AcceptanceCriteria: []string{"Phone away", "Single task", "Deliverable produced"},
			EnergyCost:         types.EnergyCost{types.Nous: 1, types.Schole: 1},
			ArtKey:             "column",
		},
		{
			ID:                 uuid.NewString(),
			Title:              "Workout",
			Details:            "Strength session.",
			AcceptanceCriteria: []string{"Warm-up", "Main lifts done", "Cool-down"},
			EnergyCost:         types.EnergyCost{types.Soma: 2},
			ArtKey:             "laurel",
		},
		{
			ID:                 uuid.NewString(),
			Title:              "Difficult conversation",
			Details:            "Address the hard thing.",
			AcceptanceCriteria: []string{"Agenda written", "Conversation done", "Next steps captured"},
			EnergyCost:         types.EnergyCost{types.Thumos: 1, types.Eros: 1},
			ArtKey:             "mask",
		},
	}
}

func normalize(card types.GoalCard) types.GoalCard {
	card = state.CloneGoal(card)
	card.Title = strings.TrimSpace(card.Title)
	card.EnergyCost = energy.NewCost(card.EnergyCost)
	if card.ArtKey == "" {
		card.ArtKey = engine.DefaultArtKey
	}
	card.Zone = ""
	return card
}

func (c *Catalog) index(id string) int {
	return slices.IndexFunc(c.cards, func(g types.GoalCard) bool { return g.ID == id })
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.cards) }

// Templates returns copies of the templates in order.
func (c *Catalog) Templates() []types.GoalCard {
	out := make([]types.GoalCard, len(c.cards))
	for i, g := range c.cards {
		out[i] = state.CloneGoal(g)
	}
	return out
}

// Template returns a copy of the template with the given ID.
func (c *Catalog) Template(id string) (types.GoalCard, bool) {
	i := c.index(id)
	if i < 0 {
		return types.GoalCard{}, false
	}
	return state.CloneGoal(c.cards[i]), true
}

// Selected returns the selected template, if any.
func (c *Catalog) Selected() (types.GoalCard, bool) {
	return c.Template(c.selected)
}

// Select moves the selection to id. Unknown IDs are ignored.
func (c *Catalog) Select(id string) bool {
	if c.index(id) < 0 {
		return false
	}
	c.selected = id
	return true
}

// AddNew inserts a blank template at the top and selects it.
func (c *Catalog) AddNew() types.GoalCard {
	card := normalize(types.GoalCard{ID: c.NewID(), Title: NewTitle})
	c.cards = slices.Insert(c.cards, 0, card)
	c.selected = card.ID
	return state.CloneGoal(card)
}

// Duplicate inserts a copy of the template with a new ID at the top and
// selects it.
func (c *Catalog) Duplicate(id string) (types.GoalCard, bool) {
	i := c.index(id)
	if i < 0 {
		return types.GoalCard{}, false
	}
	card := state.CloneGoal(c.cards[i])
	card.ID = c.NewID()
	c.cards = slices.Insert(c.cards, 0, card)
	c.selected = card.ID
	return state.CloneGoal(card), true
}

// Delete removes the template and selects the first remaining one.
func (c *Catalog) Delete(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.cards = slices.Delete(c.cards, i, i+1)
	c.selected = ""
	if len(c.cards) > 0 {
		c.selected = c.cards[0].ID
	}
	return true
}

// Move relocates the template at from to index to. Out-of-range indices
// are rejected.
func (c *Catalog) Move(from, to int) bool {
	if from < 0 || from >= len(c.cards) || to < 0 || to >= len(c.cards) {
		return false
	}
	if from == to {
		return true
	}
	card := c.cards[from]
	c.cards = slices.Delete(c.cards, from, from+1)
	c.cards = slices.Insert(c.cards, to, card)
	return true
}

// Update replaces the template that has card's ID.
func (c *Catalog) Update(card types.GoalCard) bool {
	i := c.index(card.ID)
	if i < 0 {
		return false
	}
	c.cards[i] = normalize(card)
	return true
}
