// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strconv"
	"strings"

	"github.com/nathoo/elysium/types"
)

var verbAliases = map[string]string{
	// Table overview
	"l":      "look",
	"table":  "look",
	"board":  "look",
	"status": "look",

	// Zones
	"h":         "hand",
	"deck":      "stack",
	"library":   "stack",
	"bf":        "battlefield",
	"field":     "battlefield",
	"done":      "elysium",
	"completed": "elysium",
	"e":         "energy",
	"pool":      "energy",
	"energies":  "energy",

	// Card details
	"x":       "show",
	"examine": "show",
	"inspect": "show",
	"view":    "show",
	"info":    "show",

	// Casting
	"c":        "cast",
	"play":     "cast",
	"summon":   "cast",
	"activate": "cast",

	// Energy
	"untap":  "tap",
	"toggle": "tap",

	// Criteria
	"tick":    "check",
	"mark":    "check",
	"untick":  "uncheck",
	"unmark":  "uncheck",
	"cross":   "check",
	"uncross": "uncheck",

	// Stack editing
	"new":     "add",
	"create":  "add",
	"mv":      "move",
	"reorder": "move",

	"d": "draw",
	"?": "help",
}

// Verbs whose trailing number is a position rather than part of the card
// reference.
var positional = map[string]bool{
	"check":   true,
	"uncheck": true,
	"move":    true,
}

var prepositions = map[string]bool{
	"to": true, "at": true, "into": true, "position": true, "pos": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)
	if len(words) == 0 {
		return types.Intent{}
	}

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := words[1:]

	// Titles are free text; articles only matter for positional verbs where
	// the resolver matches on words anyway.
	if !positional[verb] {
		return types.Intent{Verb: verb, Object: strings.Join(rest, " ")}
	}

	rest = stripArticles(rest)
	object, target := splitTrailingNumber(rest)

	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// Rest returns the input with its verb removed, preserving case and inner
// spacing. A "goal" or "card" qualifier after the verb is dropped too. Used
// for free-text arguments such as new card titles.
func Rest(input string) string {
	rest := dropWord(input)
	if w, after := firstWord(rest), dropWord(rest); after != "" {
		if lw := strings.ToLower(w); lw == "goal" || lw == "card" {
			return after
		}
	}
	return rest
}

func firstWord(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i]
	}
	return s
}

func dropWord(s string) string {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(s[i:])
}

// expandMultiWordVerbs handles "look at", "check off", "new goal" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "look":
		if words[1] == "at" {
			return append([]string{"show"}, words[2:]...)
		}
	case "check", "tick", "mark":
		if words[1] == "off" {
			return append([]string{"check"}, words[2:]...)
		}
	case "draw":
		if words[1] == "up" && len(words) > 2 && words[2] == "to" {
			return append([]string{"draw"}, words[3:]...)
		}
	case "new", "add":
		if words[1] == "goal" || words[1] == "card" {
			return append([]string{"add"}, words[2:]...)
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitTrailingNumber splits off a trailing number, optionally preceded by
// a preposition ("to 3", "#3"). Words before it become the object. If the
// last word is not a number, all words become the object.
func splitTrailingNumber(words []string) (object, target string) {
	if len(words) < 2 {
		return strings.Join(words, " "), ""
	}
	last := strings.TrimPrefix(words[len(words)-1], "#")
	if _, err := strconv.Atoi(last); err != nil {
		return strings.Join(words, " "), ""
	}
	head := words[:len(words)-1]
	if len(head) > 1 && prepositions[head[len(head)-1]] {
		head = head[:len(head)-1]
	}
	return strings.Join(head, " "), last
}
