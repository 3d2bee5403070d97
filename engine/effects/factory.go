package effects

import (
	"go.uber.org/zap"

	"github.com/Fedya1234/CardBattle/engine/rulerr"
	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

// knownSkills are the skills GrantSkill may carry.
var knownSkills = map[types.SkillID]bool{
	types.SkillDoubleDamage: true,
	types.SkillVampire:      true,
	types.SkillFirstHit:     true,
	types.SkillAntiMagic:    true,
	types.SkillArmor:        true,
	types.SkillEndTurnHeal:  true,
}

// Factory maps card, skill and passive ids to effects. Effects are cached per
// id since they depend only on static data. A Factory is not safe for
// concurrent use.
type Factory struct {
	data   state.Provider
	logger *zap.Logger
	cards  map[types.CardLevel]Effect
	skills map[types.SkillID]Effect
}

// NewFactory creates a factory over data. A nil logger discards diagnostics.
func NewFactory(data state.Provider, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		data:   data,
		logger: logger,
		cards:  map[types.CardLevel]Effect{},
		skills: map[types.SkillID]Effect{},
	}
}

// ForCard returns the effect of playing card. Unknown or malformed content
// degrades to NoOp and logs a warning.
func (f *Factory) ForCard(card types.CardLevel) Effect {
	if eff, ok := f.cards[card]; ok {
		return eff
	}
	eff := f.buildCard(card)
	f.cards[card] = eff
	return eff
}

func (f *Factory) buildCard(card types.CardLevel) Effect {
	def, ok := f.data.Card(card.ID)
	if !ok {
		return f.noop(card.ID, "unknown card")
	}

	switch def.Kind {
	case types.CardUnit:
		stats, ok := f.data.UnitBaseStats(def.Unit, card.Level)
		if !ok {
			return f.noop(card.ID, "unknown unit "+def.Unit)
		}
		return Effect{
			Kind:     PlaceUnit,
			Phase:    types.PhasePositive,
			Source:   card.ID,
			ManaCost: def.ManaCost,
			UnitID:   def.Unit,
			Level:    card.Level,
			Stats:    stats,
		}

	case types.CardSpell:
		switch def.Spell {
		case types.SpellDamage:
			amount := def.Amount
			if amount == 0 {
				amount = def.ManaCost * 2
			}
			return Effect{
				Kind:     Damage,
				Phase:    types.PhaseNegative,
				Source:   card.ID,
				ManaCost: def.ManaCost,
				Amount:   amount,
				Spell:    true,
			}
		case types.SpellGrantSkill:
			if !knownSkills[def.Skill] {
				return f.noop(card.ID, "unknown skill "+string(def.Skill))
			}
			eff := f.ForSkill(def.Skill)
			eff.Source = card.ID
			eff.ManaCost = def.ManaCost
			return eff
		case types.SpellHeal:
			amount := def.Amount
			if amount == 0 {
				amount = 1
			}
			return Effect{
				Kind:     Heal,
				Phase:    types.PhasePositive,
				Source:   card.ID,
				ManaCost: def.ManaCost,
				Amount:   amount,
			}
		}
		return f.noop(card.ID, "unknown spell kind "+string(def.Spell))
	}

	return f.noop(card.ID, "unknown card kind "+string(def.Kind))
}

// ForSkill returns a free GrantSkill effect for skill.
func (f *Factory) ForSkill(skill types.SkillID) Effect {
	if eff, ok := f.skills[skill]; ok {
		return eff
	}
	var eff Effect
	if knownSkills[skill] {
		eff = Effect{Kind: GrantSkill, Phase: types.PhasePositive, Source: string(skill), Skill: skill}
	} else {
		eff = f.noop(string(skill), "unknown skill")
	}
	f.skills[skill] = eff
	return eff
}

// ForPassive returns the effect a passive rule applies to its cell.
func (f *Factory) ForPassive(rule types.PassiveRule) Effect {
	switch rule.Effect {
	case "heal":
		return Effect{Kind: Heal, Phase: rule.Phase, Source: rule.ID, Amount: rule.Amount}
	case "damage":
		return Effect{Kind: Damage, Phase: rule.Phase, Source: rule.ID, Amount: rule.Amount}
	}
	return f.noop(rule.ID, "unknown passive effect "+rule.Effect)
}

// Combat returns the combat phase effect.
func (f *Factory) Combat() Effect {
	return Effect{Kind: Combat, Phase: types.PhaseCombat, Source: "combat"}
}

func (f *Factory) noop(id, reason string) Effect {
	f.logger.Warn("effect lookup failed, using no-op",
		zap.String("id", id),
		zap.String("reason", reason),
		zap.String("code", string(rulerr.CodeDataLookupFailure)),
	)
	return Effect{Kind: NoOp, Phase: types.PhasePositive, Source: id}
}
