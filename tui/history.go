// Package tui provides a Bubble Tea terminal UI for the Elysium engine.
package tui

import "strings"

// History keeps submitted commands for up/down recall, oldest first.
// A command entered again moves to the newest position instead of being
// stored twice, and repeat words are not recorded.
type History struct {
	entries []string
	limit   int
	pos     int // len(entries) while not browsing
}

// NewHistory returns an empty history holding at most limit commands.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{limit: limit}
}

// Push records cmd as the newest entry and ends browsing.
func (h *History) Push(cmd string) {
	defer h.ResetCursor()

	cmd = strings.TrimSpace(cmd)
	if cmd == "" || isRepeat(cmd) {
		return
	}
	for i, e := range h.entries {
		if e == cmd {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
	h.entries = append(h.entries, cmd)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = h.entries[over:]
	}
}

// Prev steps back to an older command. It stays on the oldest one once
// reached, and reports false only when the history is empty.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.entries[h.pos], true
}

// Next steps forward to a newer command. Stepping past the newest one
// ends browsing and reports false.
func (h *History) Next() (string, bool) {
	if h.pos >= len(h.entries) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.entries) {
		return "", false
	}
	return h.entries[h.pos], true
}

// ResetCursor ends browsing.
func (h *History) ResetCursor() {
	h.pos = len(h.entries)
}

// Len is the number of stored commands.
func (h *History) Len() int { return len(h.entries) }

func isRepeat(cmd string) bool {
	switch strings.ToLower(cmd) {
	case "again", "g":
		return true
	}
	return false
}
