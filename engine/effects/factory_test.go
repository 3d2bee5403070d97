package effects

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

func factoryDefs() *state.Defs {
	return &state.Defs{
		Units: map[string]types.UnitDef{
			"footman": {ID: "footman", Levels: []types.UnitStats{
				{Health: 2, Damage: 1},
				{Health: 4, Damage: 2},
			}},
		},
		Cards: map[string]types.CardDef{
			"footman_card": {ID: "footman_card", Kind: types.CardUnit, ManaCost: 1, Unit: "footman"},
			"fireball":     {ID: "fireball", Kind: types.CardSpell, ManaCost: 3, Spell: types.SpellDamage},
			"pyroblast":    {ID: "pyroblast", Kind: types.CardSpell, ManaCost: 5, Spell: types.SpellDamage, Amount: 7},
			"bloodlust":    {ID: "bloodlust", Kind: types.CardSpell, ManaCost: 2, Spell: types.SpellGrantSkill, Skill: types.SkillVampire},
			"mend":         {ID: "mend", Kind: types.CardSpell, ManaCost: 1, Spell: types.SpellHeal},
			"broken_unit":  {ID: "broken_unit", Kind: types.CardUnit, ManaCost: 1, Unit: "missing"},
			"weird_skill":  {ID: "weird_skill", Kind: types.CardSpell, ManaCost: 1, Spell: types.SpellGrantSkill, Skill: "flying"},
		},
	}
}

func observedFactory(t *testing.T) (*Factory, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	return NewFactory(factoryDefs(), zap.New(core)), logs
}

func TestForCard_Unit(t *testing.T) {
	f := NewFactory(factoryDefs(), zaptest.NewLogger(t))
	eff := f.ForCard(types.CardLevel{ID: "footman_card", Level: 2})
	if eff.Kind != PlaceUnit || eff.ManaCost != 1 || eff.Stats.Health != 4 || eff.Phase != types.PhasePositive {
		t.Errorf("effect = %+v", eff)
	}
}

func TestForCard_ReferenceSpellDamageIsTwiceCost(t *testing.T) {
	f := NewFactory(factoryDefs(), zaptest.NewLogger(t))
	eff := f.ForCard(types.CardLevel{ID: "fireball", Level: 1})
	if eff.Kind != Damage || eff.Amount != 6 || !eff.Spell || eff.Phase != types.PhaseNegative {
		t.Errorf("effect = %+v", eff)
	}
	if got := f.ForCard(types.CardLevel{ID: "pyroblast", Level: 1}).Amount; got != 7 {
		t.Errorf("explicit amount = %d, want 7", got)
	}
}

func TestForCard_SpellVariants(t *testing.T) {
	f := NewFactory(factoryDefs(), zaptest.NewLogger(t))
	grant := f.ForCard(types.CardLevel{ID: "bloodlust", Level: 1})
	if grant.Kind != GrantSkill || grant.Skill != types.SkillVampire || grant.ManaCost != 2 || grant.Source != "bloodlust" {
		t.Errorf("grant = %+v", grant)
	}
	heal := f.ForCard(types.CardLevel{ID: "mend", Level: 1})
	if heal.Kind != Heal || heal.Amount != 1 {
		t.Errorf("heal = %+v", heal)
	}
	// The skill cache keeps a free grant.
	if free := f.ForSkill(types.SkillVampire); free.ManaCost != 0 || free.Source != "vampire" {
		t.Errorf("ForSkill = %+v", free)
	}
}

func TestForCard_UnknownIDLogsWarning(t *testing.T) {
	f, logs := observedFactory(t)

	tests := []string{"no_such_card", "broken_unit", "weird_skill"}
	for _, id := range tests {
		eff := f.ForCard(types.CardLevel{ID: id, Level: 1})
		if eff.Kind != NoOp {
			t.Errorf("%s: kind = %v, want noop", id, eff.Kind)
		}
	}

	entries := logs.FilterMessage("effect lookup failed, using no-op").All()
	if len(entries) != len(tests) {
		t.Fatalf("warnings = %d, want %d", len(entries), len(tests))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", entries[0].Level)
	}
	if entries[0].ContextMap()["code"] != "DATA_LOOKUP_FAILURE" {
		t.Errorf("fields = %v", entries[0].ContextMap())
	}
}

func TestForCard_Cached(t *testing.T) {
	f, logs := observedFactory(t)
	f.ForCard(types.CardLevel{ID: "ghost", Level: 1})
	f.ForCard(types.CardLevel{ID: "ghost", Level: 1})
	if n := logs.Len(); n != 1 {
		t.Errorf("warnings = %d, want 1 (second lookup cached)", n)
	}
}

func TestForPassive(t *testing.T) {
	f, logs := observedFactory(t)
	heal := f.ForPassive(types.PassiveRule{ID: "r", Phase: types.PhasePassive, Effect: "heal", Amount: 1})
	if heal.Kind != Heal || heal.Amount != 1 || heal.ManaCost != 0 {
		t.Errorf("heal = %+v", heal)
	}
	if f.ForPassive(types.PassiveRule{ID: "x", Effect: "explode"}).Kind != NoOp || logs.Len() != 1 {
		t.Error("unknown passive effect should be a logged NoOp")
	}
}
