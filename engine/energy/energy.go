// Package energy holds the canonical energy type order, display data, and
// cost helpers.
package energy

import (
	"strings"

	"github.com/nathoo/elysium/types"
)

// Types lists every energy type in declaration order. Casting, rendering,
// and pool construction all iterate in this order.
var Types = []types.EnergyType{
	types.Soma,
	types.Nous,
	types.Eros,
	types.Thumos,
	types.Schole,
}

type info struct {
	glyph   string
	name    string
	alias   string
	meaning string
}

var infos = map[types.EnergyType]info{
	types.Soma:   {"Σ", "Soma", "body", "Body, stamina, physical effort"},
	types.Nous:   {"Ν", "Nous", "focus", "Focus, reasoning, deep work"},
	types.Eros:   {"Ε", "Eros", "connection", "Social/emotional energy, desire"},
	types.Thumos: {"Θ", "Thumos", "drive", "Drive, courage, confrontation"},
	types.Schole: {"Χ", "Scholē", "leisure", "Time/space for reflection, planning"},
}

// Valid reports whether t is one of the five energy types.
func Valid(t types.EnergyType) bool {
	_, ok := infos[t]
	return ok
}

// Glyph returns the Greek-letter glyph for t, or "?" for unknown types.
func Glyph(t types.EnergyType) string {
	if i, ok := infos[t]; ok {
		return i.glyph
	}
	return "?"
}

// Name returns the display name of t.
func Name(t types.EnergyType) string {
	if i, ok := infos[t]; ok {
		return i.name
	}
	return string(t)
}

// Meaning returns a one-line description of what t stands for.
func Meaning(t types.EnergyType) string {
	return infos[t].meaning
}

// Parse maps a type value, display name, plain alias ("body", "focus", ...)
// or glyph to an energy type. Matching is case-insensitive, glyphs included,
// so "σ" parses as soma.
func Parse(s string) (types.EnergyType, bool) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, t := range Types {
		i := infos[t]
		switch {
		case lower == string(t),
			lower == strings.ToLower(i.name),
			lower == i.alias,
			strings.EqualFold(s, i.glyph):
			return t, true
		}
	}
	return "", false
}

// NewCost copies amounts into a cost, dropping zero and negative entries.
func NewCost(amounts map[types.EnergyType]int) types.EnergyCost {
	cost := types.EnergyCost{}
	for t, n := range amounts {
		if n > 0 {
			cost[t] = n
		}
	}
	return cost
}

// Requires returns the quantity of t required by cost (0 if absent).
func Requires(cost types.EnergyCost, t types.EnergyType) int {
	if n := cost[t]; n > 0 {
		return n
	}
	return 0
}

// Total returns the sum of all quantities in cost.
func Total(cost types.EnergyCost) int {
	total := 0
	for _, t := range Types {
		total += Requires(cost, t)
	}
	return total
}

// GlyphString renders cost as repeated glyphs in declaration order,
// e.g. {soma: 2, thumos: 1} → "ΣΣΘ".
func GlyphString(cost types.EnergyCost) string {
	var b strings.Builder
	for _, t := range Types {
		b.WriteString(strings.Repeat(Glyph(t), Requires(cost, t)))
	}
	return b.String()
}

// CastingCost is GlyphString with a dash for free cards.
func CastingCost(cost types.EnergyCost) string {
	if s := GlyphString(cost); s != "" {
		return s
	}
	return "—"
}
