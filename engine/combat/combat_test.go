package combat

import (
	"testing"

	"github.com/Fedya1234/CardBattle/engine/events"
	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

func newState() *types.GameState {
	s := &types.GameState{}
	for p := range s.Players {
		s.Players[p].Hero = types.Hero{ID: "hero", Health: 20, Mana: 2, MaxMana: 9}
	}
	return s
}

func put(s *types.GameState, player, line, row, health, damage int, skills ...types.SkillID) *types.Unit {
	u := state.NewUnit("unit", 1, types.UnitStats{Health: health, Damage: damage, Skills: skills})
	s.Players[player].Board[line][row].Unit = u
	return u
}

func TestResolve_MutualDamage(t *testing.T) {
	s := newState()
	a := put(s, 0, 0, 0, 2, 1)
	b := put(s, 1, 0, 0, 2, 1)

	Resolve(s)

	if a.Health != 1 || b.Health != 1 {
		t.Errorf("health = %d/%d, want 1/1", a.Health, b.Health)
	}
	if s.Players[0].Board[0][0].Unit != a || s.Players[1].Board[0][0].Unit != b {
		t.Error("both units should remain alive on the board")
	}
}

func TestResolve_SimultaneousKill(t *testing.T) {
	s := newState()
	put(s, 0, 1, 0, 2, 3)
	put(s, 1, 1, 0, 3, 2)

	evts := Resolve(s)

	if !state.IsEmpty(&s.Players[0].Board[1][0]) || !state.IsEmpty(&s.Players[1].Board[1][0]) {
		t.Fatal("both units should be dead after the batch")
	}
	if len(s.Players[0].Board[1][0].Dead) != 1 || len(s.Players[1].Board[1][0].Dead) != 1 {
		t.Error("dead units should be kept in the place history")
	}
	if got := len(events.Filter(evts, events.UnitDied)); got != 2 {
		t.Errorf("unit_died events = %d, want 2", got)
	}
	if s.Players[0].Hero.Health != 20 || s.Players[1].Hero.Health != 20 {
		t.Error("heroes should be untouched")
	}
}

func TestResolve_VampireOverheal(t *testing.T) {
	s := newState()
	v := put(s, 0, 2, 0, 3, 5, types.SkillVampire)
	put(s, 1, 2, 0, 1, 1)

	Resolve(s)

	// Took 1, dealt 5 to a unit with 1 health, heals the full 5.
	if v.Health != 3-1+5 {
		t.Errorf("vampire health = %d, want %d", v.Health, 3-1+5)
	}
	if !state.IsEmpty(&s.Players[1].Board[2][0]) {
		t.Error("target should be dead")
	}
}

func TestResolve_VampireHeroHitDoesNotHeal(t *testing.T) {
	s := newState()
	v := put(s, 0, 0, 1, 3, 4, types.SkillVampire)

	Resolve(s)

	if v.Health != 3 {
		t.Errorf("vampire health = %d, want 3", v.Health)
	}
	if s.Players[1].Hero.Health != 16 {
		t.Errorf("hero health = %d, want 16", s.Players[1].Hero.Health)
	}
}

func TestResolve_VampireHealsBeforeDeathCheck(t *testing.T) {
	s := newState()
	v := put(s, 0, 0, 0, 2, 3, types.SkillVampire)
	put(s, 1, 0, 0, 2, 3)

	evts := Resolve(s)

	if v.Health != 3 {
		t.Errorf("vampire health = %d, want 3", v.Health)
	}
	if s.Players[0].Board[0][0].Unit != v {
		t.Error("vampire should survive a lethal trade")
	}
	if !state.IsEmpty(&s.Players[1].Board[0][0]) {
		t.Error("opposing unit should be dead")
	}
	if n := len(events.Filter(evts, events.UnitDied)); n != 1 {
		t.Errorf("deaths = %d, want 1", n)
	}
}

func TestResolve_FirstHitKill(t *testing.T) {
	s := newState()
	fh := put(s, 0, 0, 0, 2, 5, types.SkillFirstHit)
	put(s, 1, 0, 0, 2, 1)
	// A second attacker for player 0 in the same line.
	put(s, 0, 0, 1, 2, 3)

	evts := Resolve(s)

	if !state.IsEmpty(&s.Players[1].Board[0][0]) {
		t.Fatal("FirstHit unit should kill its target in sub-phase A")
	}
	if fh.Health != 2 {
		t.Errorf("FirstHit unit health = %d, want 2 (no retaliation)", fh.Health)
	}
	// Sub-phase B finds no defender, so the regular attacker hits the hero.
	if s.Players[1].Hero.Health != 17 {
		t.Errorf("hero health = %d, want 17", s.Players[1].Hero.Health)
	}
	died := events.Filter(evts, events.UnitDied)
	if len(died) != 1 || evts[0].Type != events.UnitDamaged {
		t.Errorf("expected the FirstHit strike first, got %v", evts)
	}
}

func TestResolve_FirstHitDoubleDamageRetargets(t *testing.T) {
	s := newState()
	put(s, 0, 1, 2, 1, 3, types.SkillFirstHit, types.SkillDoubleDamage)
	front := put(s, 1, 1, 0, 3, 0)
	back := put(s, 1, 1, 2, 5, 0)

	Resolve(s)

	if front.Health != 0 || !state.IsEmpty(&s.Players[1].Board[1][0]) {
		t.Error("first hit should kill the front unit")
	}
	if back.Health != 2 {
		t.Errorf("second hit should retarget to the back unit: health = %d, want 2", back.Health)
	}
}

func TestResolve_FirstHitScanOrder(t *testing.T) {
	s := newState()
	// Both FirstHit units kill each other's only target; player 0 acts first.
	p0 := put(s, 0, 0, 0, 1, 1, types.SkillFirstHit)
	put(s, 1, 0, 0, 1, 1, types.SkillFirstHit)

	Resolve(s)

	if p0.Health != 1 || s.Players[0].Board[0][0].Unit != p0 {
		t.Error("player 0's FirstHit should kill before player 1 acts")
	}
	if !state.IsEmpty(&s.Players[1].Board[0][0]) {
		t.Error("player 1's FirstHit unit should be dead")
	}
	if s.Players[0].Hero.Health != 20 {
		t.Errorf("player 0 hero = %d, want 20", s.Players[0].Hero.Health)
	}
}

func TestResolve_DoubleDamageBatch(t *testing.T) {
	s := newState()
	put(s, 0, 2, 0, 5, 2, types.SkillDoubleDamage)
	target := put(s, 1, 2, 0, 10, 0)

	Resolve(s)

	if target.Health != 6 {
		t.Errorf("target health = %d, want 6", target.Health)
	}
}

func TestResolve_SurplusAttackersShareTarget(t *testing.T) {
	s := newState()
	put(s, 0, 1, 0, 5, 2)
	put(s, 0, 1, 1, 5, 2)
	put(s, 0, 1, 2, 5, 2)
	target := put(s, 1, 1, 1, 10, 1)

	Resolve(s)

	if target.Health != 4 {
		t.Errorf("target health = %d, want 4", target.Health)
	}
	// The defender hits the front attacker.
	if s.Players[0].Board[1][0].Unit.Health != 4 {
		t.Errorf("front attacker health = %d, want 4", s.Players[0].Board[1][0].Unit.Health)
	}
}

func TestResolve_ArmorAndAntiMagicIgnoredInCombat(t *testing.T) {
	s := newState()
	put(s, 0, 0, 0, 5, 3)
	armored := put(s, 1, 0, 0, 5, 0, types.SkillArmor, types.SkillAntiMagic)

	Resolve(s)

	if armored.Health != 2 {
		t.Errorf("armored health = %d, want 2", armored.Health)
	}
}

func TestResolve_HeroDamageCommutative(t *testing.T) {
	build := func(reverse bool) *types.GameState {
		s := newState()
		lines := []int{0, 1, 2}
		if reverse {
			lines = []int{2, 1, 0}
		}
		dmg := map[int]int{0: 2, 1: 3, 2: 4}
		for _, line := range lines {
			put(s, 0, line, 0, 5, dmg[line])
		}
		put(s, 0, 1, 1, 5, 1, types.SkillFirstHit, types.SkillDoubleDamage)
		return s
	}

	a := build(false)
	evts := Resolve(a)
	b := build(true)
	Resolve(b)

	sum := 0
	for _, e := range events.Filter(evts, events.HeroDamaged) {
		sum += e.Data["amount"].(int)
	}
	if a.Players[1].Hero.Health != 20-sum {
		t.Errorf("hero health = %d, want 20-%d", a.Players[1].Hero.Health, sum)
	}
	if sum != 2+3+4+2 {
		t.Errorf("total hero damage = %d, want 11", sum)
	}
	if a.Players[1].Hero.Health != b.Players[1].Hero.Health {
		t.Errorf("placement order changed hero health: %d vs %d",
			a.Players[1].Hero.Health, b.Players[1].Hero.Health)
	}
}

func TestResolve_LinesIndependent(t *testing.T) {
	s := newState()
	put(s, 0, 0, 0, 3, 1)
	put(s, 1, 2, 0, 3, 1)

	Resolve(s)

	// Each attacker finds no defender in its own line.
	if s.Players[1].Hero.Health != 19 || s.Players[0].Hero.Health != 19 {
		t.Errorf("heroes = %d/%d, want 19/19", s.Players[0].Hero.Health, s.Players[1].Hero.Health)
	}
}

func TestResolve_EmptyBoard(t *testing.T) {
	s := newState()
	if evts := Resolve(s); len(evts) != 0 {
		t.Errorf("expected no events, got %v", evts)
	}
}
