package rules

import (
	"github.com/Fedya1234/CardBattle/types"
)

// Builtin returns the passive rules every match carries: units with
// EndTurnHeal recover 1 health in the passive phase while on row 0.
func Builtin() []types.PassiveRule {
	return []types.PassiveRule{
		{
			ID:    "end_turn_heal",
			Skill: types.SkillEndTurnHeal,
			Phase: types.PhasePassive,
			Conditions: []types.Condition{
				{Type: "row_is", Params: map[string]any{"row": 0}},
			},
			Effect: "heal",
			Amount: 1,
		},
	}
}

// Passives merges the builtin rules with content rules. A content rule with
// a builtin's ID replaces it.
func Passives(content []types.PassiveRule) []types.PassiveRule {
	override := map[string]types.PassiveRule{}
	for _, r := range content {
		override[r.ID] = r
	}

	var out []types.PassiveRule
	for _, r := range Builtin() {
		if o, ok := override[r.ID]; ok {
			out = append(out, o)
			delete(override, r.ID)
			continue
		}
		out = append(out, r)
	}
	for _, r := range content {
		if _, ok := override[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Firing returns the rules that fire for cell during phase, in rule order.
func Firing(rules []types.PassiveRule, phase types.Phase, cell Cell) []types.PassiveRule {
	var fired []types.PassiveRule
	for _, r := range rules {
		if Matches(r, phase, cell) {
			fired = append(fired, r)
		}
	}
	return fired
}
