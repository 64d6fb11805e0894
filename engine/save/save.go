// Package save implements JSON serialization and deserialization of game state.
package save

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nathoo/elysium/engine/energy"
	"github.com/nathoo/elysium/types"
)

// Version is written into every snapshot.
const Version = "1"

// ErrInvalid is wrapped by every structural validation failure in Load.
var ErrInvalid = errors.New("invalid snapshot")

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version          string             `json:"version"`
	Goals            []types.GoalCard   `json:"goals"`
	Energies         []types.EnergyCard `json:"energies"`
	BattlefieldOrder []string           `json:"battlefieldOrder"`
	CriteriaDone     map[string][]int   `json:"criteriaDone"`
}

// Save serializes game state to JSON bytes.
func Save(s *types.State) ([]byte, error) {
	data := SaveData{
		Version:          Version,
		Goals:            s.Goals,
		Energies:         s.Energies,
		BattlefieldOrder: s.BattlefieldOrder,
		CriteriaDone:     s.CriteriaDone,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes and validates JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if err := validate(&sd); err != nil {
		return nil, err
	}

	// Ensure collections are never nil after load.
	if sd.Goals == nil {
		sd.Goals = []types.GoalCard{}
	}
	if sd.BattlefieldOrder == nil {
		sd.BattlefieldOrder = []string{}
	}
	if sd.CriteriaDone == nil {
		sd.CriteriaDone = map[string][]int{}
	}
	return &sd, nil
}

func validate(sd *SaveData) error {
	if sd.Version != "" && sd.Version != Version {
		return fmt.Errorf("%w: unsupported version %q", ErrInvalid, sd.Version)
	}

	ids := map[string]bool{}
	for i, g := range sd.Goals {
		if g.ID == "" {
			return fmt.Errorf("%w: goal %d has no id", ErrInvalid, i)
		}
		if ids[g.ID] {
			return fmt.Errorf("%w: duplicate goal id %q", ErrInvalid, g.ID)
		}
		ids[g.ID] = true

		switch g.Zone {
		case types.ZoneStack, types.ZoneHand, types.ZoneBattlefield, types.ZoneElysium:
		default:
			return fmt.Errorf("%w: goal %q has unknown zone %q", ErrInvalid, g.ID, g.Zone)
		}
		for t, n := range g.EnergyCost {
			if !energy.Valid(t) {
				return fmt.Errorf("%w: goal %q costs unknown energy %q", ErrInvalid, g.ID, t)
			}
			if n < 0 {
				return fmt.Errorf("%w: goal %q has negative %s cost", ErrInvalid, g.ID, t)
			}
		}
	}

	// The pool is fixed: exactly one card per type.
	seen := map[types.EnergyType]bool{}
	energyIDs := map[string]bool{}
	for i, e := range sd.Energies {
		if e.ID == "" {
			return fmt.Errorf("%w: energy %d has no id", ErrInvalid, i)
		}
		if energyIDs[e.ID] {
			return fmt.Errorf("%w: duplicate energy id %q", ErrInvalid, e.ID)
		}
		energyIDs[e.ID] = true
		if !energy.Valid(e.Type) {
			return fmt.Errorf("%w: energy %q has unknown type %q", ErrInvalid, e.ID, e.Type)
		}
		if seen[e.Type] {
			return fmt.Errorf("%w: more than one %s energy", ErrInvalid, e.Type)
		}
		seen[e.Type] = true
	}
	if len(seen) != len(energy.Types) {
		return fmt.Errorf("%w: energy pool has %d of %d types", ErrInvalid, len(seen), len(energy.Types))
	}
	return nil
}

// ApplySave applies loaded save data onto a state.
func ApplySave(s *types.State, sd *SaveData) {
	s.Goals = sd.Goals
	s.Energies = sd.Energies
	s.BattlefieldOrder = sd.BattlefieldOrder
	s.CriteriaDone = sd.CriteriaDone
}
