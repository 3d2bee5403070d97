// Package resolve maps card names typed by a player to cards in hand.
package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

// AmbiguityError indicates multiple hand cards matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no hand card matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("you have no %q in hand", e.Name)
}

// Card resolves name against hand. Copies of the same card at the same level
// are one candidate. A trailing ":<level>" narrows the match to that level.
func Card(defs *state.Defs, hand []types.CardLevel, name string) (types.CardLevel, error) {
	query, level := splitLevel(strings.ToLower(strings.TrimSpace(name)))

	var matches []types.CardLevel
	for _, c := range hand {
		if level > 0 && c.Level != level {
			continue
		}
		if containsCard(matches, c) {
			continue
		}
		if matchesName(defs, c, query) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return types.CardLevel{}, &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		cands := make([]string, len(matches))
		for i, c := range matches {
			cands[i] = Label(defs, c)
		}
		return types.CardLevel{}, &AmbiguityError{Name: name, Candidates: cands}
	}
}

// Label returns the display label of a card, e.g. "Footman (lv2)".
func Label(defs *state.Defs, c types.CardLevel) string {
	name := c.ID
	if def, ok := defs.Card(c.ID); ok && def.Name != "" {
		name = def.Name
	}
	return fmt.Sprintf("%s (lv%d)", name, c.Level)
}

func splitLevel(q string) (string, int) {
	i := strings.LastIndexByte(q, ':')
	if i < 0 {
		return q, 0
	}
	lvl, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(q[i+1:]), "lv"))
	if err != nil || lvl <= 0 {
		return q, 0
	}
	return strings.TrimSpace(q[:i]), lvl
}

// matchesName checks the card's display name and id (case-insensitive).
// Supports exact match, word-based partial match and id match.
func matchesName(defs *state.Defs, c types.CardLevel, nameLower string) bool {
	if def, ok := defs.Card(c.ID); ok && def.Name != "" {
		cardNameLower := strings.ToLower(def.Name)
		if cardNameLower == nameLower {
			return true
		}
		// Word-based partial match: "golem" matches "Stone Golem".
		for _, word := range strings.Fields(cardNameLower) {
			if word == nameLower {
				return true
			}
		}
	}
	idLower := strings.ToLower(c.ID)
	if idLower == nameLower {
		return true
	}
	// Underscore normalization: "stone golem" matches id "stone_golem".
	if strings.ReplaceAll(nameLower, " ", "_") == idLower {
		return true
	}
	return false
}

func containsCard(cards []types.CardLevel, c types.CardLevel) bool {
	for _, v := range cards {
		if v == c {
			return true
		}
	}
	return false
}
