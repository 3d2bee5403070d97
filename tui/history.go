package tui

import (
	"slices"
	"strings"
)

// History keeps recent commands for Up/Down recall. A recall only visits
// entries that start with what was typed when it began, so "pl" then Up
// walks the play commands.
type History struct {
	entries []string
	limit   int

	prefix  string
	matches []int // indexes into entries, oldest first
	pos     int   // position in matches; -1 when not recalling
}

// NewHistory creates a history that keeps at most limit commands.
func NewHistory(limit int) *History {
	return &History{
		entries: make([]string, 0, limit),
		limit:   limit,
		pos:     -1,
	}
}

// Push records a command. A repeat of the newest entry is dropped.
func (h *History) Push(cmd string) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	h.entries = append(h.entries, cmd)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = slices.Delete(h.entries, 0, over)
	}
}

// Prev steps to the next older matching entry and stays on the oldest.
// typed is only read when a recall begins.
func (h *History) Prev(typed string) (string, bool) {
	if h.pos == -1 {
		h.prefix = typed
		h.matches = h.matches[:0]
		for i, e := range h.entries {
			if strings.HasPrefix(e, typed) {
				h.matches = append(h.matches, i)
			}
		}
		if len(h.matches) == 0 {
			return "", false
		}
		h.pos = len(h.matches)
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.entries[h.matches[h.pos]], true
}

// Next steps toward the newest matching entry. Stepping past it ends the
// recall and returns the typed prefix with false.
func (h *History) Next() (string, bool) {
	if h.pos == -1 {
		return "", false
	}
	h.pos++
	if h.pos >= len(h.matches) {
		h.pos = -1
		return h.prefix, false
	}
	return h.entries[h.matches[h.pos]], true
}

// Reset ends any recall in progress.
func (h *History) Reset() {
	h.pos = -1
}
