package engine

import (
	"reflect"
	"strings"
	"testing"

	"github.com/nathoo/elysium/types"
)

// seededEngine starts a game from the three default goals.
func seededEngine(t *testing.T) *Engine {
	t.Helper()
	e := newTestEngine(t)
	e.NewGame([]types.GoalCard{
		{
			Title:              "Deep work block",
			Details:            "One uninterrupted block.",
			AcceptanceCriteria: []string{"Phone away", "Single task", "Deliverable produced"},
			EnergyCost:         types.EnergyCost{types.Nous: 1, types.Schole: 1},
			ArtKey:             "column",
		},
		{
			Title:              "Workout",
			Details:            "Strength session.",
			AcceptanceCriteria: []string{"Warm-up", "Main lifts done", "Cool-down"},
			EnergyCost:         types.EnergyCost{types.Soma: 2},
			ArtKey:             "laurel",
		},
		{
			Title:              "Difficult conversation",
			Details:            "Address the hard thing.",
			AcceptanceCriteria: []string{"Agenda written", "Conversation done", "Next steps captured"},
			EnergyCost:         types.EnergyCost{types.Thumos: 1, types.Eros: 1},
			ArtKey:             "mask",
		},
	})
	return e
}

func outputContains(result types.Result, substr string) bool {
	for _, line := range result.Output {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestStep_EmptyInput(t *testing.T) {
	e := seededEngine(t)
	result := e.Step("   ")
	if !outputContains(result, "What do you want to do?") {
		t.Errorf("unexpected output: %v", result.Output)
	}
}

func TestStep_UnknownVerb(t *testing.T) {
	e := seededEngine(t)
	result := e.Step("dance")
	if !outputContains(result, "I don't know how to") {
		t.Errorf("unexpected output: %v", result.Output)
	}
	if len(result.Events) != 0 {
		t.Errorf("unknown verb produced events: %v", result.Events)
	}
}

func TestStep_ListingCommands(t *testing.T) {
	e := seededEngine(t)

	tests := []struct {
		input string
		want  string
	}{
		{"look", "Stack: 0  Hand: 3  Battlefield: 0  Elysium: 0"},
		{"hand", "1. Deep work block  [ΝΧ]  0/3"},
		{"h", "Hand (3):"},
		{"stack", "The stack is empty."},
		{"bf", "Nothing on the battlefield."},
		{"elysium", "Nothing has reached Elysium yet."},
		{"energy", "Σ Soma"},
		{"show workout", "Strength session."},
		{"x 3", "Address the hard thing."},
		{"help", "Commands:"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := e.Step(tt.input)
			if !outputContains(result, tt.want) {
				t.Errorf("Step(%q) output %v, want line containing %q", tt.input, result.Output, tt.want)
			}
			if len(result.Events) != 0 {
				t.Errorf("read-only command produced events: %v", result.Events)
			}
		})
	}
}

func TestStep_CastInsufficientEnergy(t *testing.T) {
	e := seededEngine(t)
	before := e.Snapshot()

	result := e.Step("cast workout")
	if !outputContains(result, "Not enough energy to cast Workout (missing Σ)") {
		t.Errorf("unexpected output: %v", result.Output)
	}
	if len(result.Events) != 0 {
		t.Errorf("failed cast produced events: %v", result.Events)
	}
	if cur := e.Snapshot(); len(cur.BattlefieldOrder) != len(before.BattlefieldOrder) {
		t.Error("failed cast changed state")
	}
}

func TestStep_CastCheckComplete(t *testing.T) {
	e := seededEngine(t)

	result := e.Step("cast deep work")
	if !outputContains(result, "You cast Deep work block onto the battlefield.") {
		t.Fatalf("cast output: %v", result.Output)
	}
	if !outputContains(result, "Ν Nous is tapped and bound.") {
		t.Errorf("missing binding narration: %v", result.Output)
	}

	result = e.Step("tap nous")
	if !outputContains(result, "bound to Deep work block") {
		t.Errorf("tap on bound card: %v", result.Output)
	}

	result = e.Step("check deep work 1")
	if !outputContains(result, "[x] Deep work block: Phone away (1/3)") {
		t.Errorf("check output: %v", result.Output)
	}
	result = e.Step("check deep work 1")
	if !outputContains(result, "already done") {
		t.Errorf("re-check output: %v", result.Output)
	}
	e.Step("tick deep work block 2")

	result = e.Step("check off deep work to 3")
	if !outputContains(result, "Deep work block reaches Elysium!") {
		t.Errorf("completion output: %v", result.Output)
	}
	if !outputContains(result, "Ν Nous returns to your pool.") {
		t.Errorf("release output: %v", result.Output)
	}

	if g := goalByTitle(t, e, "Deep work block"); g.Zone != types.ZoneElysium {
		t.Errorf("zone = %s, want elysium", g.Zone)
	}
	checkInvariants(t, e)
}

func TestStep_CastNotInHand(t *testing.T) {
	e := seededEngine(t)
	e.Step("cast difficult conversation")

	result := e.Step("cast difficult conversation")
	if !outputContains(result, "is not in your hand (battlefield)") {
		t.Errorf("unexpected output: %v", result.Output)
	}
}

func TestStep_PositionStaysInItsZone(t *testing.T) {
	e := seededEngine(t)
	e.Step("cast deep work")
	e.Step("add One")
	e.Step("add Two")
	// Battlefield 1, hand 2, stack 2.

	tests := []struct {
		input string
		want  string
	}{
		{"check 3 1", `no card matches "3"`},
		{"uncheck #2 1", `no card matches "#2"`},
		{"cast 3", `no card matches "3"`},
		{"move 3 to 1", `no card matches "3"`},
		{"show 5", `no card matches "5"`},
	}
	for _, tt := range tests {
		before := e.Snapshot()
		result := e.Step(tt.input)
		if !outputContains(result, tt.want) {
			t.Errorf("Step(%q) = %v, want %q", tt.input, result.Output, tt.want)
		}
		if outputContains(result, "not in your hand") {
			t.Errorf("Step(%q) resolved a card in another zone: %v", tt.input, result.Output)
		}
		if len(result.Events) != 0 || !reflect.DeepEqual(before, e.Snapshot()) {
			t.Errorf("Step(%q) changed state", tt.input)
		}
	}

	result := e.Step("check 1 1")
	if !outputContains(result, "[x] Deep work block: Phone away (1/3)") {
		t.Errorf("in-range position: %v", result.Output)
	}
}

func TestStep_CheckValidatesIndex(t *testing.T) {
	e := seededEngine(t)

	for _, input := range []string{"check workout 0", "check workout 4", "uncheck workout 9"} {
		result := e.Step(input)
		if !outputContains(result, "has no criterion") {
			t.Errorf("Step(%q) = %v", input, result.Output)
		}
		if len(e.CriteriaDone(goalByTitle(t, e, "Workout").ID)) != 0 {
			t.Fatalf("Step(%q) marked a criterion", input)
		}
	}

	result := e.Step("check workout")
	if !outputContains(result, "Which criterion?") || !outputContains(result, "2. Main lifts done") {
		t.Errorf("missing index prompt: %v", result.Output)
	}
}

func TestStep_TapToggles(t *testing.T) {
	e := seededEngine(t)

	result := e.Step("tap body")
	if !outputContains(result, "Σ Soma is now tapped.") {
		t.Errorf("tap output: %v", result.Output)
	}
	result = e.Step("untap Σ")
	if !outputContains(result, "Σ Soma is now untapped.") {
		t.Errorf("untap output: %v", result.Output)
	}
	result = e.Step("tap mana")
	if !outputContains(result, "no card matches") {
		t.Errorf("unknown energy output: %v", result.Output)
	}
}

func TestStep_AddAndMove(t *testing.T) {
	e := seededEngine(t)

	result := e.Step("add Read The Odyssey")
	if !outputContains(result, "Added Read The Odyssey to the stack.") {
		t.Fatalf("add output: %v", result.Output)
	}
	e.Step("new goal Call Mom")

	if got := stackTitles(e); len(got) != 2 || got[0] != "Read The Odyssey" || got[1] != "Call Mom" {
		t.Fatalf("stack = %v", got)
	}

	result = e.Step("move call mom to 1")
	if !outputContains(result, "Call Mom moves to position 1 on the stack.") {
		t.Errorf("move output: %v", result.Output)
	}
	if got := stackTitles(e); got[0] != "Call Mom" {
		t.Errorf("stack = %v", got)
	}

	result = e.Step("move call mom to 1")
	if !outputContains(result, "already there") {
		t.Errorf("no-op move output: %v", result.Output)
	}

	result = e.Step("add")
	if !outputContains(result, "Usage: add <title>") {
		t.Errorf("bare add output: %v", result.Output)
	}
}

func TestStep_Draw(t *testing.T) {
	e := seededEngine(t)
	e.Step("add One")
	e.Step("add Two")

	result := e.Step("draw 4")
	if !outputContains(result, "You draw One.") {
		t.Errorf("draw output: %v", result.Output)
	}
	if len(e.Hand()) != 4 {
		t.Errorf("hand = %d, want 4", len(e.Hand()))
	}

	result = e.Step("draw 2")
	if !outputContains(result, "already holds") {
		t.Errorf("full hand output: %v", result.Output)
	}

	e.Step("draw")
	result = e.Step("draw")
	if !outputContains(result, "The stack is empty.") {
		t.Errorf("empty stack output: %v", result.Output)
	}
}

func TestStep_AmbiguousReference(t *testing.T) {
	e := seededEngine(t)
	e.Step("add Deep clean")
	e.Step("draw")

	result := e.Step("show deep")
	if !outputContains(result, "which deep?") {
		t.Errorf("expected ambiguity prompt, got %v", result.Output)
	}
}
