package loader

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

var validSkills = map[types.SkillID]bool{
	types.SkillDoubleDamage: true,
	types.SkillVampire:      true,
	types.SkillFirstHit:     true,
	types.SkillAntiMagic:    true,
	types.SkillArmor:        true,
	types.SkillEndTurnHeal:  true,
}

var validSpellKinds = map[types.SpellKind]bool{
	types.SpellDamage:     true,
	types.SpellHeal:       true,
	types.SpellGrantSkill: true,
}

var validConditionTypes = map[string]bool{
	"row_is":         true,
	"line_is":        true,
	"has_skill":      true,
	"health_lt":      true,
	"hero_health_lt": true,
	"not":            true,
}

var validPassiveEffects = map[string]bool{
	"heal":   true,
	"damage": true,
}

// validate checks the compiled defs for referential integrity and
// consistency. Warnings are returned even when validation fails; err is a
// *ValidationError when any error was found.
func validate(defs *state.Defs) ([]string, error) {
	ve := &ValidationError{}

	validateGame(defs.Game, ve)

	for _, id := range slices.Sorted(maps.Keys(defs.Heroes)) {
		hero := defs.Heroes[id]
		if len(hero.HealthByLevel) == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("hero %q has no health levels", id))
		}
		for i, h := range hero.HealthByLevel {
			if h <= 0 {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"hero %q level %d has non-positive health %d", id, i+1, h))
			}
		}
	}

	for _, id := range slices.Sorted(maps.Keys(defs.Units)) {
		validateUnit(defs.Units[id], ve)
	}

	for _, id := range slices.Sorted(maps.Keys(defs.Cards)) {
		validateCard(defs.Cards[id], defs, ve)
	}

	for _, id := range slices.Sorted(maps.Keys(defs.Decks)) {
		validateDeck(defs.Decks[id], defs, ve)
	}
	if len(defs.Decks) == 0 {
		ve.Warnings = append(ve.Warnings, "no decks defined; players must be seeded from snapshot files")
	}

	for _, rule := range defs.Passives {
		validatePassive(rule, ve)
	}

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}

func validateGame(g types.GameDef, ve *ValidationError) {
	if g.Title == "" {
		ve.Errors = append(ve.Errors, "Game.Title is required")
	}
	if g.StartMana < 0 || g.MaxMana < 0 || g.HandSize < 0 {
		ve.Errors = append(ve.Errors, "Game mana and hand size must not be negative")
	}
	if g.MaxMana > 0 && g.StartMana > g.MaxMana {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"Game.start_mana %d exceeds max_mana %d and will be clamped", g.StartMana, g.MaxMana))
	}
}

func validateUnit(u types.UnitDef, ve *ValidationError) {
	if len(u.Levels) == 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("unit %q has no levels", u.ID))
	}
	for i, st := range u.Levels {
		if st.Health <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"unit %q level %d has non-positive health %d", u.ID, i+1, st.Health))
		}
		if st.Damage < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"unit %q level %d has negative damage %d", u.ID, i+1, st.Damage))
		}
		for _, s := range st.Skills {
			if !validSkills[s] {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"unit %q level %d has unknown skill %q", u.ID, i+1, s))
			}
		}
	}
}

func validateCard(c types.CardDef, defs *state.Defs, ve *ValidationError) {
	if c.ManaCost < 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("card %q has negative cost %d", c.ID, c.ManaCost))
	}
	if c.Name == "" {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf("card %q has no name", c.ID))
	}

	switch c.Kind {
	case types.CardUnit:
		if c.Unit == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf("unit card %q does not name a unit", c.ID))
		} else if _, ok := defs.Units[c.Unit]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"unit card %q references undefined unit %q", c.ID, c.Unit))
		}
	case types.CardSpell:
		if !validSpellKinds[c.Spell] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"spell %q has unknown effect %q", c.ID, c.Spell))
		}
		if c.Spell == types.SpellGrantSkill && !validSkills[c.Skill] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"spell %q grants unknown skill %q", c.ID, c.Skill))
		}
		if c.Amount < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"spell %q has negative amount %d", c.ID, c.Amount))
		}
	}
}

func validateDeck(d types.DeckDef, defs *state.Defs, ve *ValidationError) {
	if _, ok := defs.Heroes[d.Save.Hero]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"deck %q references undefined hero %q", d.ID, d.Save.Hero))
	}
	if len(d.Save.Cards) == 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("deck %q has no cards", d.ID))
	}

	total := 0
	for _, cs := range d.Save.Cards {
		card, ok := defs.Cards[cs.ID]
		if !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"deck %q references undefined card %q", d.ID, cs.ID))
			continue
		}
		if cs.Count <= 0 || cs.Level <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"deck %q entry %q needs a positive count and level", d.ID, cs.ID))
		}
		total += cs.Count
		if card.Kind == types.CardUnit {
			if u, ok := defs.Units[card.Unit]; ok && cs.Level > len(u.Levels) && len(u.Levels) > 0 {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"deck %q plays %q at level %d; unit %q tops out at level %d",
					d.ID, cs.ID, cs.Level, card.Unit, len(u.Levels)))
			}
		}
	}
	if total > 0 && total < state.HandSize(defs.Game) {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"deck %q has %d cards, fewer than an opening hand", d.ID, total))
	}
}

func validatePassive(r types.PassiveRule, ve *ValidationError) {
	if r.Skill != "" && !validSkills[r.Skill] {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"passive %q keys on unknown skill %q", r.ID, r.Skill))
	}
	if !validPassiveEffects[r.Effect] {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"passive %q has unknown effect %q", r.ID, r.Effect))
	}
	if r.Amount <= 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"passive %q needs a positive amount", r.ID))
	}
	for _, c := range r.Conditions {
		validateCondition(r.ID, c, ve)
	}
}

func validateCondition(ruleID string, c types.Condition, ve *ValidationError) {
	if !validConditionTypes[c.Type] {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"passive %q has unknown condition type %q", ruleID, c.Type))
		return
	}
	if c.Type == "not" {
		if c.Inner == nil {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"passive %q has Not() without an inner condition", ruleID))
			return
		}
		validateCondition(ruleID, *c.Inner, ve)
	}
}
