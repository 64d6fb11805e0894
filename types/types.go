// Package types defines the shared data structures for the Elysium engine.
// It holds plain data; game rules live in the engine packages.
package types

// EnergyType is one of the five resource kinds. The set is closed.
type EnergyType string

// Energy types in canonical (declaration) order.
const (
	Soma   EnergyType = "soma"   // body
	Nous   EnergyType = "nous"   // focus
	Eros   EnergyType = "eros"   // connection
	Thumos EnergyType = "thumos" // drive
	Schole EnergyType = "schole" // leisure
)

// EnergyCost maps an energy type to a positive quantity. Zero entries are
// never stored.
type EnergyCost map[EnergyType]int

// Zone is the lifecycle position of a goal card.
type Zone string

const (
	ZoneStack       Zone = "stack"
	ZoneHand        Zone = "hand"
	ZoneBattlefield Zone = "battlefield"
	ZoneElysium     Zone = "elysium"
)

// GoalCard is a goal definition. Templates in a catalog share the shape;
// their zone is ignored.
type GoalCard struct {
	ID                 string     `json:"id" yaml:"id,omitempty"`
	Title              string     `json:"title" yaml:"title"`
	Details            string     `json:"details" yaml:"details,omitempty"`
	AcceptanceCriteria []string   `json:"acceptanceCriteria" yaml:"criteria,omitempty"`
	EnergyCost         EnergyCost `json:"energyCost" yaml:"cost,omitempty"`
	ArtKey             string     `json:"artKey" yaml:"art,omitempty"`
	Zone               Zone       `json:"zone" yaml:"-"`
}

// EnergyCard is one unit of the fixed energy pool.
type EnergyCard struct {
	ID          string     `json:"id"`
	Type        EnergyType `json:"type"`
	IsTapped    bool       `json:"isTapped"`
	BoundGoalID string     `json:"boundGoalId,omitempty"` // empty = unbound
}

// State is the complete mutable game state.
type State struct {
	Goals            []GoalCard
	Energies         []EnergyCard
	BattlefieldOrder []string
	CriteriaDone     map[string][]int // goal ID → sorted set of done indices
}

// Intent is the parsed representation of a player command.
type Intent struct {
	Verb   string
	Object string // optional
	Target string // optional
}

// Event is emitted after a state transition is committed.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single command.
type Result struct {
	Events []Event
	Output []string
}
