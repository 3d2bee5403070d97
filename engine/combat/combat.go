// Package combat resolves the automated combat phase: FirstHit attackers
// strike first and immediately, then the remaining units of each line deal
// their damage simultaneously.
//
// Armor and AntiMagic only affect spell damage; combat damage ignores them.
package combat

import (
	"github.com/Fedya1234/CardBattle/engine/events"
	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

// cellRef addresses a unit on a board.
type cellRef struct {
	player, line, row int
}

// pending is a computed but not yet applied hit.
type pending struct {
	attacker *types.Unit
	from     cellRef
	target   *types.Unit // nil when the hit goes to the hero
	at       cellRef     // target cell, or the defending player for hero hits
	amount   int
}

// Resolve runs both combat sub-phases on s and returns the ordered events.
func Resolve(s *types.GameState) []types.Event {
	var evts []types.Event
	evts = append(evts, firstHits(s)...)
	for line := 0; line < types.Lines; line++ {
		evts = append(evts, resolveLine(s, line)...)
	}
	return evts
}

// firstHits scans player 0 then player 1, rows outer and lines inner, and
// lets every living FirstHit unit strike at once.
func firstHits(s *types.GameState) []types.Event {
	var evts []types.Event
	for p := 0; p < types.Players; p++ {
		for row := 0; row < types.Rows; row++ {
			for line := 0; line < types.Lines; line++ {
				u := s.Players[p].Board[line][row].Unit
				if !state.Alive(u) || !state.HasSkill(u, types.SkillFirstHit) {
					continue
				}
				from := cellRef{p, line, row}
				for i := 0; i < hitCount(u); i++ {
					hit := aim(s, u, from)
					evts = append(evts, apply(s, hit)...)
					evts = append(evts, vampire(hit)...)
					evts = append(evts, bury(s, hit)...)
				}
			}
		}
	}
	return evts
}

// resolveLine batches every non-FirstHit attacker in line. All hits are
// computed against pre-damage state, applied together, then followed by
// vampire heals and deaths in record order.
func resolveLine(s *types.GameState, line int) []types.Event {
	var sides [types.Players][]cellRef
	for p := 0; p < types.Players; p++ {
		for row := 0; row < types.Rows; row++ {
			u := s.Players[p].Board[line][row].Unit
			if state.Alive(u) && !state.HasSkill(u, types.SkillFirstHit) {
				sides[p] = append(sides[p], cellRef{p, line, row})
			}
		}
	}

	var batch []pending
	pairs := max(len(sides[0]), len(sides[1]))
	for i := 0; i < pairs; i++ {
		for p := 0; p < types.Players; p++ {
			if i >= len(sides[p]) {
				continue
			}
			from := sides[p][i]
			u := unitAt(s, from)
			for h := 0; h < hitCount(u); h++ {
				batch = append(batch, aim(s, u, from))
			}
		}
	}
	if len(batch) == 0 {
		return nil
	}

	var evts []types.Event
	for _, hit := range batch {
		evts = append(evts, apply(s, hit)...)
	}
	for _, hit := range batch {
		evts = append(evts, vampire(hit)...)
	}
	for _, hit := range batch {
		evts = append(evts, bury(s, hit)...)
	}
	return evts
}

func hitCount(u *types.Unit) int {
	if state.HasSkill(u, types.SkillDoubleDamage) {
		return 2
	}
	return 1
}

func unitAt(s *types.GameState, c cellRef) *types.Unit {
	return s.Players[c.player].Board[c.line][c.row].Unit
}

// aim resolves the target of an attack from the attacker's cell: the first
// living opposing unit in the same line, else the opposing hero.
func aim(s *types.GameState, u *types.Unit, from cellRef) pending {
	opp := state.Opponent(from.player)
	hit := pending{
		attacker: u,
		from:     from,
		at:       cellRef{player: opp, line: from.line},
		amount:   max(u.Damage, 0),
	}
	if row, ok := state.FirstLivingRow(s, opp, from.line); ok {
		hit.at.row = row
		hit.target = unitAt(s, hit.at)
	}
	return hit
}

func apply(s *types.GameState, hit pending) []types.Event {
	if hit.target == nil {
		hero := &s.Players[hit.at.player].Hero
		hero.Health -= hit.amount
		return []types.Event{events.New(events.HeroDamaged,
			"player", hit.at.player, "amount", hit.amount, "health", hero.Health,
			"source", "combat", "attacker", hit.attacker.ID)}
	}
	state.DamageUnit(hit.target, hit.amount)
	return []types.Event{events.New(events.UnitDamaged,
		"player", hit.at.player, "unit", hit.target.ID,
		"line", hit.at.line, "row", hit.at.row,
		"amount", hit.amount, "health", hit.target.Health,
		"source", "combat", "attacker", hit.attacker.ID)}
}

// vampire heals the attacker by the full hit amount when it struck a unit.
// Heals run before deaths are checked, so a vampire driven to 0 by the same
// batch comes back up to the amount it dealt.
func vampire(hit pending) []types.Event {
	if hit.target == nil || !state.HasSkill(hit.attacker, types.SkillVampire) {
		return nil
	}
	state.HealUnit(hit.attacker, hit.amount)
	return []types.Event{events.New(events.VampireHeal,
		"player", hit.from.player, "unit", hit.attacker.ID,
		"line", hit.from.line, "row", hit.from.row,
		"amount", hit.amount, "health", hit.attacker.Health)}
}

// bury moves a unit killed by hit into its place's dead history. Units
// already buried by an earlier record are skipped.
func bury(s *types.GameState, hit pending) []types.Event {
	if hit.target == nil || state.Alive(hit.target) {
		return nil
	}
	place := &s.Players[hit.at.player].Board[hit.at.line][hit.at.row]
	if place.Unit != hit.target {
		return nil
	}
	state.Kill(place)
	return []types.Event{events.New(events.UnitDied,
		"player", hit.at.player, "unit", hit.target.ID,
		"line", hit.at.line, "row", hit.at.row)}
}
