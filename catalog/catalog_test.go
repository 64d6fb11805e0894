package catalog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/elysium/engine"
	"github.com/nathoo/elysium/types"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := New(Seed())
	n := 0
	c.NewID = func() string {
		n++
		return fmt.Sprintf("tpl-%d", n)
	}
	return c
}

func titles(c *Catalog) []string {
	var out []string
	for _, g := range c.Templates() {
		out = append(out, g.Title)
	}
	return out
}

func TestSeed(t *testing.T) {
	seed := Seed()
	require.Len(t, seed, 3)
	assert.Equal(t, "Deep work block", seed[0].Title)
	assert.Equal(t, types.EnergyCost{types.Soma: 2}, seed[1].EnergyCost)
	assert.Equal(t, "mask", seed[2].ArtKey)

	again := Seed()
	assert.NotEqual(t, seed[0].ID, again[0].ID, "each seed gets fresh IDs")
}

func TestNew_Normalizes(t *testing.T) {
	c := New([]types.GoalCard{
		{ID: "a", Title: "  One  ", EnergyCost: types.EnergyCost{types.Soma: 0, types.Nous: 1}, Zone: types.ZoneHand},
		{ID: "a", Title: "Two"},
		{Title: "Three", ArtKey: "owl"},
	})

	got := c.Templates()
	require.Len(t, got, 3)
	assert.Equal(t, "One", got[0].Title)
	assert.Equal(t, types.EnergyCost{types.Nous: 1}, got[0].EnergyCost)
	assert.Empty(t, got[0].Zone, "templates carry no zone")
	assert.Equal(t, engine.DefaultArtKey, got[1].ArtKey)
	assert.Equal(t, "owl", got[2].ArtKey)

	assert.Equal(t, "a", got[0].ID)
	assert.NotEqual(t, "a", got[1].ID, "duplicate ID replaced")
	assert.NotEmpty(t, got[2].ID)

	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "a", sel.ID)
}

func TestNew_Empty(t *testing.T) {
	c := New(nil)
	assert.Equal(t, 0, c.Len())
	_, ok := c.Selected()
	assert.False(t, ok)
}

func TestAddNew(t *testing.T) {
	c := newTestCatalog(t)
	card := c.AddNew()

	assert.Equal(t, "tpl-1", card.ID)
	assert.Equal(t, NewTitle, card.Title)
	assert.Equal(t, engine.DefaultArtKey, card.ArtKey)
	assert.Equal(t, []string{NewTitle, "Deep work block", "Workout", "Difficult conversation"}, titles(c))

	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, card.ID, sel.ID)
}

func TestDuplicate(t *testing.T) {
	c := newTestCatalog(t)
	src := c.Templates()[1]

	dup, ok := c.Duplicate(src.ID)
	require.True(t, ok)
	assert.Equal(t, "tpl-1", dup.ID)
	assert.Equal(t, src.Title, dup.Title)
	assert.Equal(t, src.AcceptanceCriteria, dup.AcceptanceCriteria)
	assert.Equal(t, []string{"Workout", "Deep work block", "Workout", "Difficult conversation"}, titles(c))

	sel, _ := c.Selected()
	assert.Equal(t, dup.ID, sel.ID)

	// The copy is independent of the original.
	dup.AcceptanceCriteria[0] = "changed"
	require.True(t, c.Update(dup))
	orig, _ := c.Template(src.ID)
	assert.Equal(t, "Warm-up", orig.AcceptanceCriteria[0])

	_, ok = c.Duplicate("missing")
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	c := newTestCatalog(t)
	tpl := c.Templates()
	require.True(t, c.Select(tpl[2].ID))

	require.True(t, c.Delete(tpl[2].ID))
	assert.Equal(t, []string{"Deep work block", "Workout"}, titles(c))
	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, tpl[0].ID, sel.ID, "selection moves to first")

	assert.False(t, c.Delete(tpl[2].ID))

	require.True(t, c.Delete(tpl[0].ID))
	require.True(t, c.Delete(tpl[1].ID))
	_, ok = c.Selected()
	assert.False(t, ok)
}

func TestDelete_DoesNotTouchLiveGame(t *testing.T) {
	c := newTestCatalog(t)
	eng := engine.New(nil, nil)
	eng.NewGame(c.Templates())
	before := eng.Snapshot()

	for _, g := range c.Templates() {
		require.True(t, c.Delete(g.ID))
	}
	assert.Equal(t, before, eng.Snapshot())
}

func TestMove(t *testing.T) {
	c := newTestCatalog(t)

	require.True(t, c.Move(0, 2))
	assert.Equal(t, []string{"Workout", "Difficult conversation", "Deep work block"}, titles(c))

	require.True(t, c.Move(2, 0))
	assert.Equal(t, []string{"Deep work block", "Workout", "Difficult conversation"}, titles(c))

	assert.True(t, c.Move(1, 1))
	assert.False(t, c.Move(-1, 0))
	assert.False(t, c.Move(0, 3))
}

func TestUpdate(t *testing.T) {
	c := newTestCatalog(t)
	card := c.Templates()[0]
	card.Title = "Deep work, twice"
	card.EnergyCost = types.EnergyCost{types.Nous: 2, types.Eros: 0}
	card.ArtKey = ""

	require.True(t, c.Update(card))
	got, ok := c.Template(card.ID)
	require.True(t, ok)
	assert.Equal(t, "Deep work, twice", got.Title)
	assert.Equal(t, types.EnergyCost{types.Nous: 2}, got.EnergyCost)
	assert.Equal(t, engine.DefaultArtKey, got.ArtKey)

	assert.False(t, c.Update(types.GoalCard{ID: "missing"}))
}

func TestTemplates_ReturnsCopies(t *testing.T) {
	c := newTestCatalog(t)
	tpl := c.Templates()
	tpl[0].Title = "mutated"
	tpl[0].EnergyCost[types.Soma] = 9

	fresh := c.Templates()
	assert.Equal(t, "Deep work block", fresh[0].Title)
	assert.NotContains(t, fresh[0].EnergyCost, types.Soma)
}

func TestSelect(t *testing.T) {
	c := newTestCatalog(t)
	id := c.Templates()[1].ID

	assert.True(t, c.Select(id))
	sel, _ := c.Selected()
	assert.Equal(t, id, sel.ID)

	assert.False(t, c.Select("missing"))
	sel, _ = c.Selected()
	assert.Equal(t, id, sel.ID, "unknown id keeps selection")
}
