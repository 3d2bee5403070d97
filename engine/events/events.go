// Package events defines the resolution event vocabulary and renders events
// as narration lines for the front-ends.
package events

import (
	"fmt"

	"github.com/Fedya1234/CardBattle/types"
)

// Event types emitted by resolution.
const (
	RoundStarted  = "round_started"
	CardDrawn     = "card_drawn"
	PhaseStarted  = "phase_started"
	CardPlayed    = "card_played"
	PlayFailed    = "play_failed"
	PlaySkipped   = "play_skipped"
	ManaSpent     = "mana_spent"
	ManaBurned    = "mana_burned"
	BurnSkipped   = "burn_skipped"
	UnitPlaced    = "unit_placed"
	UnitDamaged   = "unit_damaged"
	HeroDamaged   = "hero_damaged"
	UnitHealed    = "unit_healed"
	VampireHeal   = "vampire_heal"
	SkillGranted  = "skill_granted"
	UnitDied      = "unit_died"
	UnitRevived   = "unit_revived"
	CombatStarted = "combat_started"
	RoundEnded    = "round_ended"
)

// New builds an event from alternating key/value pairs.
func New(typ string, kv ...any) types.Event {
	data := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			data[k] = kv[i+1]
		}
	}
	return types.Event{Type: typ, Data: data}
}

// Filter returns the events of the given type, in order.
func Filter(evts []types.Event, typ string) []types.Event {
	var out []types.Event
	for _, e := range evts {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

var phaseNames = map[types.Phase]string{
	types.PhasePositive: "positive",
	types.PhaseNegative: "negative",
	types.PhasePassive:  "passive",
	types.PhaseCombat:   "combat",
}

// PhaseName returns the lowercase name of a phase.
func PhaseName(p types.Phase) string {
	if n, ok := phaseNames[p]; ok {
		return n
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Describe renders one event as a narration line. The second result is false
// for events that carry no player-facing text.
func Describe(e types.Event) (string, bool) {
	d := e.Data
	who := func(key string) string {
		return fmt.Sprintf("P%d", toInt(d[key])+1)
	}
	cell := func() string {
		return fmt.Sprintf("(%d,%d)", toInt(d["line"]), toInt(d["row"]))
	}

	switch e.Type {
	case RoundStarted:
		return fmt.Sprintf("--- Round %d ---", toInt(d["round"])), true
	case CardDrawn:
		return fmt.Sprintf("%s draws a card.", who("player")), true
	case PhaseStarted:
		return "", false
	case CardPlayed:
		return fmt.Sprintf("%s plays %s at %s.", who("player"), d["card"], cell()), true
	case PlayFailed:
		return fmt.Sprintf("%s fails to play %s: %s.", who("player"), d["card"], d["reason"]), true
	case PlaySkipped:
		return fmt.Sprintf("%s tried to play %s, which is not in hand.", who("player"), d["card"]), true
	case ManaSpent:
		return "", false
	case ManaBurned:
		return fmt.Sprintf("%s burns %s for mana (now %d).", who("player"), d["card"], toInt(d["mana"])), true
	case BurnSkipped:
		return fmt.Sprintf("%s tried to burn %s, which is not in hand.", who("player"), d["card"]), true
	case UnitPlaced:
		return fmt.Sprintf("%s summons %s at %s.", who("player"), d["unit"], cell()), true
	case UnitDamaged:
		return fmt.Sprintf("%s's %s at %s takes %d damage (%d left).",
			who("player"), d["unit"], cell(), toInt(d["amount"]), toInt(d["health"])), true
	case HeroDamaged:
		return fmt.Sprintf("%s's hero takes %d damage (%d left).",
			who("player"), toInt(d["amount"]), toInt(d["health"])), true
	case UnitHealed:
		return fmt.Sprintf("%s's %s at %s heals %d.", who("player"), d["unit"], cell(), toInt(d["amount"])), true
	case VampireHeal:
		return fmt.Sprintf("%s's %s drains %d health.", who("player"), d["unit"], toInt(d["amount"])), true
	case SkillGranted:
		return fmt.Sprintf("%s's %s at %s gains %s.", who("player"), d["unit"], cell(), d["skill"]), true
	case UnitDied:
		return fmt.Sprintf("%s's %s at %s dies.", who("player"), d["unit"], cell()), true
	case UnitRevived:
		return fmt.Sprintf("%s's %s at %s returns.", who("player"), d["unit"], cell()), true
	case CombatStarted:
		return "Combat!", true
	case RoundEnded:
		switch types.Outcome(fmt.Sprint(d["outcome"])) {
		case types.OutcomePlayer0Wins:
			return "Player 1 wins the match!", true
		case types.OutcomePlayer1Wins:
			return "Player 2 wins the match!", true
		case types.OutcomeDraw:
			return "Both heroes fall. The match is a draw.", true
		}
		return "", false
	default:
		return "", false
	}
}

// toInt converts an any value to int, handling float64 from JSON.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
