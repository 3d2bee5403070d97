package rules

import (
	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

// Matches checks if a passive rule fires for the unit in cell during phase.
func Matches(rule types.PassiveRule, phase types.Phase, cell Cell) bool {
	// Phase is required and must match.
	if rule.Phase != phase {
		return false
	}

	// Dead or missing units never trigger passives.
	if !state.Alive(cell.Unit) {
		return false
	}

	// The unit must carry the rule's skill, when one is named.
	if rule.Skill != "" && !state.HasSkill(cell.Unit, rule.Skill) {
		return false
	}

	return EvalAllConditions(rule.Conditions, cell)
}
