package battle

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Fedya1234/CardBattle/engine/events"
	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Units: map[string]types.UnitDef{
			"footman": {ID: "footman", Levels: []types.UnitStats{{Health: 2, Damage: 1}}},
			"ogre":    {ID: "ogre", Levels: []types.UnitStats{{Health: 6, Damage: 3}}},
			"cleric": {ID: "cleric", Levels: []types.UnitStats{
				{Health: 2, Damage: 0, Skills: []types.SkillID{types.SkillEndTurnHeal}},
			}},
		},
		Cards: map[string]types.CardDef{
			"footman_card": {ID: "footman_card", Kind: types.CardUnit, ManaCost: 1, Unit: "footman"},
			"ogre_card":    {ID: "ogre_card", Kind: types.CardUnit, ManaCost: 4, Unit: "ogre"},
			"cleric_card":  {ID: "cleric_card", Kind: types.CardUnit, ManaCost: 2, Unit: "cleric"},
			"fireball":     {ID: "fireball", Kind: types.CardSpell, ManaCost: 2, Spell: types.SpellDamage},
		},
	}
}

func card(id string) types.CardLevel {
	return types.CardLevel{ID: id, Level: 1}
}

func newGame(mana int, hand ...types.CardLevel) *types.GameState {
	s := &types.GameState{Round: 1}
	for p := range s.Players {
		s.Players[p].Hero = types.Hero{ID: "knight", Health: 20, Mana: mana, MaxMana: 9}
		s.Players[p].Cards.Hand = append([]types.CardLevel(nil), hand...)
	}
	return s
}

func place(id string, line, row int) types.Placement {
	return types.Placement{Card: card(id), Line: line, Row: row}
}

func TestOrder_ManaThenPlayerThenSubmission(t *testing.T) {
	moves := [types.Players]types.Move{
		{Placements: []types.Placement{
			place("footman_card", 0, 0),
			place("ogre_card", 1, 0),
			place("fireball", 2, 0),
			place("cleric_card", 0, 1),
		}},
		{Placements: []types.Placement{
			place("cleric_card", 1, 1),
			place("ogre_card", 0, 0),
		}},
	}

	got := Order(testDefs(), moves)
	want := []struct {
		player int
		id     string
		line   int
	}{
		{0, "ogre_card", 1},
		{1, "ogre_card", 0},
		{0, "fireball", 2},
		{0, "cleric_card", 0},
		{1, "cleric_card", 1},
		{0, "footman_card", 0},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		g := got[i]
		if g.Player != w.player || g.Placement.Card.ID != w.id || g.Placement.Line != w.line {
			t.Errorf("[%d] = P%d %s line %d, want P%d %s line %d",
				i, g.Player, g.Placement.Card.ID, g.Placement.Line, w.player, w.id, w.line)
		}
	}
}

func TestResolve_WinScenario(t *testing.T) {
	s := newGame(0)
	s.Players[0].Hero.Health = 1
	s.Players[1].Hero.Health = 5
	s.Players[1].Board[0][0].Unit = state.NewUnit("ogre", 1, types.UnitStats{Health: 6, Damage: 3})

	res := New(testDefs(), nil, zaptest.NewLogger(t)).Resolve(s, types.Move{}, types.Move{})

	if s.Players[0].Hero.Health != -2 {
		t.Errorf("hero0 = %d, want -2", s.Players[0].Hero.Health)
	}
	if s.Players[1].Hero.Health != 5 {
		t.Errorf("hero1 = %d, want 5", s.Players[1].Hero.Health)
	}
	if res.Outcome != types.OutcomePlayer1Wins {
		t.Errorf("outcome = %q, want %q", res.Outcome, types.OutcomePlayer1Wins)
	}
	last := res.Events[len(res.Events)-1]
	if last.Type != events.RoundEnded || last.Data["outcome"] != string(types.OutcomePlayer1Wins) {
		t.Errorf("last event = %+v", last)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		h0, h1 int
		want   types.Outcome
	}{
		{5, 5, types.OutcomeNone},
		{0, 5, types.OutcomePlayer1Wins},
		{5, -1, types.OutcomePlayer0Wins},
		{0, -3, types.OutcomeDraw},
	}
	for _, tt := range tests {
		s := &types.GameState{}
		s.Players[0].Hero.Health = tt.h0
		s.Players[1].Hero.Health = tt.h1
		if got := Outcome(s); got != tt.want {
			t.Errorf("Outcome(%d, %d) = %q, want %q", tt.h0, tt.h1, got, tt.want)
		}
	}
}

func TestResolve_ManaConservation(t *testing.T) {
	s := newGame(5, card("ogre_card"), card("footman_card"), card("fireball"))
	m0 := types.Move{
		Placements: []types.Placement{place("ogre_card", 0, 2)},
		Burned:     &types.CardLevel{ID: "fireball", Level: 1},
	}
	m1 := types.Move{Placements: []types.Placement{place("footman_card", 1, 2)}}

	New(testDefs(), nil, nil).Resolve(s, m0, m1)

	// 5 - 4 (ogre) + 1 (burn)
	if s.Players[0].Hero.Mana != 2 {
		t.Errorf("mana0 = %d, want 2", s.Players[0].Hero.Mana)
	}
	// 5 - 1 (footman)
	if s.Players[1].Hero.Mana != 4 {
		t.Errorf("mana1 = %d, want 4", s.Players[1].Hero.Mana)
	}
	if len(s.Players[0].Cards.Hand) != 1 || len(s.Players[0].Cards.Discard) != 2 {
		t.Errorf("cards0 = %+v", s.Players[0].Cards)
	}
}

func TestResolve_BurnClampsAtMaxMana(t *testing.T) {
	s := newGame(9, card("fireball"))
	m := types.Move{Burned: &types.CardLevel{ID: "fireball", Level: 1}}
	res := New(testDefs(), nil, nil).Resolve(s, m, types.Move{})
	if s.Players[0].Hero.Mana != 9 {
		t.Errorf("mana = %d, want 9", s.Players[0].Hero.Mana)
	}
	if len(events.Filter(res.Events, events.ManaBurned)) != 1 {
		t.Error("burn should still discard the card")
	}
}

func TestResolve_FailedPlayKeepsCardInHand(t *testing.T) {
	s := newGame(1, card("ogre_card"))
	m := types.Move{Placements: []types.Placement{place("ogre_card", 0, 0)}}

	res := New(testDefs(), nil, zaptest.NewLogger(t)).Resolve(s, m, types.Move{})

	if !state.HasCard(&s.Players[0].Cards, card("ogre_card")) {
		t.Error("failed play should leave the card in hand")
	}
	if s.Players[0].Hero.Mana != 1 {
		t.Errorf("mana = %d, want 1", s.Players[0].Hero.Mana)
	}
	if len(events.Filter(res.Events, events.PlayFailed)) != 1 {
		t.Errorf("events = %v", res.Events)
	}
}

func TestResolve_CardNotInHandSkippedAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s := newGame(5, card("footman_card"))
	m := types.Move{
		Placements: []types.Placement{place("ogre_card", 0, 0), place("footman_card", 1, 0)},
		Burned:     &types.CardLevel{ID: "ghost", Level: 1},
	}

	res := New(testDefs(), nil, zap.New(core)).Resolve(s, m, types.Move{})

	if s.Players[0].Board[0][0].Unit != nil {
		t.Error("card not in hand should not be played")
	}
	if s.Players[0].Board[1][0].Unit == nil {
		t.Error("the valid play should still resolve")
	}
	if n := logs.FilterMessage("card not in hand, play skipped").Len(); n != 1 {
		t.Errorf("play skip errors = %d, want 1", n)
	}
	if n := logs.FilterMessage("burned card not in hand, burn skipped").Len(); n != 1 {
		t.Errorf("burn skip errors = %d, want 1", n)
	}
	entry := logs.All()[0]
	if entry.ContextMap()["code"] != "INVARIANT_VIOLATION" {
		t.Errorf("fields = %v", entry.ContextMap())
	}
	if len(events.Filter(res.Events, events.PlaySkipped)) != 1 {
		t.Error("expected a play_skipped event")
	}
}

func TestResolve_DuplicatePlayOfSingleCard(t *testing.T) {
	s := newGame(5, card("footman_card"))
	m := types.Move{Placements: []types.Placement{place("footman_card", 0, 0), place("footman_card", 1, 0)}}

	New(testDefs(), nil, nil).Resolve(s, m, types.Move{})

	if s.Players[0].Board[0][0].Unit == nil || s.Players[0].Board[1][0].Unit != nil {
		t.Error("only the first play of a single card should resolve")
	}
	if s.Players[0].Hero.Mana != 4 {
		t.Errorf("mana = %d, want 4", s.Players[0].Hero.Mana)
	}
}

func TestResolve_HigherCostPlaysFirst(t *testing.T) {
	// Player 1's fireball (cost 2) resolves before player 0's footman
	// (cost 1), so it finds (0,0) empty and hits the hero.
	s := newGame(5, card("footman_card"), card("fireball"))
	m0 := types.Move{Placements: []types.Placement{place("footman_card", 0, 0)}}
	m1 := types.Move{Placements: []types.Placement{place("fireball", 0, 0)}}

	res := New(testDefs(), nil, nil).Resolve(s, m0, m1)

	hits := events.Filter(res.Events, events.HeroDamaged)
	if len(hits) == 0 || hits[0].Data["source"] != "fireball" {
		t.Fatalf("expected the fireball to hit the hero first, got %v", hits)
	}
	if s.Players[0].Board[0][0].Unit == nil {
		t.Error("footman should be placed after the fireball")
	}
}

func TestResolve_PassiveHealOnFrontRow(t *testing.T) {
	s := newGame(0)
	front := state.NewUnit("cleric", 1, types.UnitStats{Health: 2, Skills: []types.SkillID{types.SkillEndTurnHeal}})
	back := state.NewUnit("cleric", 1, types.UnitStats{Health: 2, Skills: []types.SkillID{types.SkillEndTurnHeal}})
	s.Players[0].Board[0][0].Unit = front
	s.Players[0].Board[1][2].Unit = back
	// Give both sides a blocker so no combat damage lands on the clerics.
	s.Players[1].Board[0][0].Unit = state.NewUnit("wall", 1, types.UnitStats{Health: 9})
	s.Players[1].Board[1][0].Unit = state.NewUnit("wall", 1, types.UnitStats{Health: 9})

	res := New(testDefs(), nil, nil).Resolve(s, types.Move{}, types.Move{})

	if front.Health != 3 {
		t.Errorf("front cleric = %d, want 3", front.Health)
	}
	if back.Health != 2 {
		t.Errorf("back cleric = %d, want 2", back.Health)
	}
	if len(events.Filter(res.Events, events.UnitHealed)) != 1 {
		t.Errorf("events = %v", res.Events)
	}
}

func TestResolve_ContentPassiveInNegativePhase(t *testing.T) {
	thorns := types.PassiveRule{ID: "thorns", Skill: types.SkillArmor, Phase: types.PhaseNegative, Effect: "damage", Amount: 2}
	s := newGame(0)
	s.Players[0].Board[2][1].Unit = state.NewUnit("knight", 1, types.UnitStats{Health: 5, Skills: []types.SkillID{types.SkillArmor}})
	s.Players[1].Board[2][0].Unit = state.NewUnit("wall", 1, types.UnitStats{Health: 9})

	New(testDefs(), []types.PassiveRule{thorns}, nil).Resolve(s, types.Move{}, types.Move{})

	// Thorns fire at the facing cell (2,1), which is empty: the hero is hit.
	if s.Players[1].Hero.Health != 18 {
		t.Errorf("hero1 = %d, want 18", s.Players[1].Hero.Health)
	}
}

func TestResolve_PhaseOrder(t *testing.T) {
	res := New(testDefs(), nil, nil).Resolve(newGame(0), types.Move{}, types.Move{})

	var phases []string
	for _, e := range events.Filter(res.Events, events.PhaseStarted) {
		phases = append(phases, e.Data["phase"].(string))
	}
	want := []string{"positive", "negative", "passive", "combat"}
	if len(phases) != len(want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Errorf("phases = %v, want %v", phases, want)
			break
		}
	}
	if res.Outcome != types.OutcomeNone || res.Round != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestResolve_GarbageMoveDoesNotPanic(t *testing.T) {
	s := newGame(5, card("footman_card"), card("nonsense"))
	m := types.Move{Placements: []types.Placement{
		place("footman_card", -1, 7),
		place("nonsense", 0, 0),
	}}

	res := New(testDefs(), nil, zaptest.NewLogger(t)).Resolve(s, m, types.Move{})

	if len(events.Filter(res.Events, events.PlayFailed)) != 1 {
		t.Errorf("expected the off-board play to fail: %v", res.Events)
	}
	// Unknown card degrades to a no-op that still succeeds.
	if state.HasCard(&s.Players[0].Cards, card("nonsense")) {
		t.Error("no-op play should move the card to discard")
	}
}
