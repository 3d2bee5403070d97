// Package effects implements the rule effects and the single Apply function
// that resolves them. Every effect targets one cell; a failed effect leaves
// the state untouched.
package effects

import (
	"github.com/Fedya1234/CardBattle/engine/combat"
	"github.com/Fedya1234/CardBattle/engine/events"
	"github.com/Fedya1234/CardBattle/engine/rulerr"
	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

// Kind tags an Effect variant.
type Kind int

const (
	NoOp Kind = iota
	PlaceUnit
	Damage
	GrantSkill
	Heal
	Combat
)

var kindNames = [...]string{"noop", "place_unit", "damage", "grant_skill", "heal", "combat"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Effect is a tagged variant. Only the fields of its Kind are meaningful.
type Effect struct {
	Kind     Kind
	Phase    types.Phase
	Source   string // card, skill or rule id that produced the effect
	ManaCost int    // charged on success

	// Damage and Heal.
	Amount int
	Spell  bool // spell damage is blocked by AntiMagic and reduced by Armor

	// GrantSkill.
	Skill types.SkillID

	// PlaceUnit.
	UnitID string
	Level  int
	Stats  types.UnitStats
}

// Apply resolves eff for player at (line, row). A nil error means success.
// On failure no state is mutated and the error carries
// rulerr.CodeValidationFailure.
func Apply(s *types.GameState, eff Effect, player, line, row int) ([]types.Event, error) {
	switch eff.Kind {
	case NoOp:
		return nil, nil
	case Combat:
		evts := []types.Event{events.New(events.CombatStarted)}
		return append(evts, combat.Resolve(s)...), nil
	}

	if player < 0 || player >= types.Players || !state.InBounds(line, row) {
		return nil, rulerr.Validation("cell (%d,%d) is off the board", line, row)
	}
	hero := &s.Players[player].Hero
	if eff.ManaCost < 0 || hero.Mana < eff.ManaCost {
		return nil, rulerr.Validation("not enough mana: have %d, need %d", hero.Mana, eff.ManaCost)
	}

	var evts []types.Event
	var err error
	switch eff.Kind {
	case PlaceUnit:
		evts, err = placeUnit(s, eff, player, line, row)
	case Damage:
		evts, err = damage(s, eff, player, line, row)
	case GrantSkill:
		evts, err = grantSkill(s, eff, player, line, row)
	case Heal:
		evts, err = heal(s, eff, player, line, row)
	default:
		err = rulerr.Validation("unsupported effect kind %d", int(eff.Kind))
	}
	if err != nil {
		return nil, err
	}

	if eff.ManaCost > 0 {
		state.SpendMana(hero, eff.ManaCost)
		evts = append(evts, events.New(events.ManaSpent,
			"player", player, "amount", eff.ManaCost, "mana", hero.Mana))
	}
	return evts, nil
}

func placeUnit(s *types.GameState, eff Effect, player, line, row int) ([]types.Event, error) {
	place := state.Place(s, player, line, row)
	if !state.IsEmpty(place) {
		return nil, rulerr.Validation("cell (%d,%d) is occupied", line, row)
	}
	place.Unit = state.NewUnit(eff.UnitID, eff.Level, eff.Stats)
	state.Mark(place, types.MarkSummoned)
	return []types.Event{events.New(events.UnitPlaced,
		"player", player, "unit", eff.UnitID, "line", line, "row", row,
		"health", place.Unit.Health, "damage", place.Unit.Damage, "source", eff.Source)}, nil
}

// damage hits the opponent's cell facing (line, row), or the opponent's hero
// when that cell is empty.
func damage(s *types.GameState, eff Effect, player, line, row int) ([]types.Event, error) {
	opp := state.Opponent(player)
	place := state.Place(s, opp, line, row)

	if state.IsEmpty(place) {
		hero := &s.Players[opp].Hero
		hero.Health -= eff.Amount
		return []types.Event{events.New(events.HeroDamaged,
			"player", opp, "amount", eff.Amount, "health", hero.Health, "source", eff.Source)}, nil
	}

	u := place.Unit
	amount := eff.Amount
	if eff.Spell {
		if state.HasSkill(u, types.SkillAntiMagic) {
			return nil, rulerr.Validation("%s at (%d,%d) is immune to magic", u.ID, line, row)
		}
		if state.HasSkill(u, types.SkillArmor) {
			amount = max(amount-1, 0)
		}
	}

	state.DamageUnit(u, amount)
	evts := []types.Event{events.New(events.UnitDamaged,
		"player", opp, "unit", u.ID, "line", line, "row", row,
		"amount", amount, "health", u.Health, "source", eff.Source)}
	if !state.Alive(u) {
		state.Kill(place)
		evts = append(evts, events.New(events.UnitDied,
			"player", opp, "unit", u.ID, "line", line, "row", row))
	}
	return evts, nil
}

func grantSkill(s *types.GameState, eff Effect, player, line, row int) ([]types.Event, error) {
	place := state.Place(s, player, line, row)
	if state.IsEmpty(place) {
		return nil, rulerr.Validation("no unit at (%d,%d)", line, row)
	}
	if !state.AddSkill(place.Unit, eff.Skill) {
		return nil, rulerr.Validation("%s already has %s", place.Unit.ID, eff.Skill)
	}
	return []types.Event{events.New(events.SkillGranted,
		"player", player, "unit", place.Unit.ID, "line", line, "row", row,
		"skill", string(eff.Skill), "source", eff.Source)}, nil
}

func heal(s *types.GameState, eff Effect, player, line, row int) ([]types.Event, error) {
	place := state.Place(s, player, line, row)
	if !state.Alive(place.Unit) {
		return nil, rulerr.Validation("no living unit at (%d,%d)", line, row)
	}
	state.HealUnit(place.Unit, eff.Amount)
	return []types.Event{events.New(events.UnitHealed,
		"player", player, "unit", place.Unit.ID, "line", line, "row", row,
		"amount", eff.Amount, "health", place.Unit.Health, "source", eff.Source)}, nil
}
