// Package state holds the static content catalog and the invariant-preserving
// operations on the mutable game state (placement, damage, death, revive,
// mana and card movement).
package state

import (
	"slices"

	"github.com/Fedya1234/CardBattle/engine/rulerr"
	"github.com/Fedya1234/CardBattle/types"
)

// Defaults used when content leaves match tuning unset.
const (
	DefaultStartMana = 2
	DefaultMaxMana   = 9
	DefaultHandSize  = 4
)

// Provider supplies static card, unit and hero data. Implementations must be
// read-only and deterministic.
type Provider interface {
	Card(id string) (types.CardDef, bool)
	CardManaCost(id string) (int, bool)
	UnitBaseStats(id string, level int) (types.UnitStats, bool)
	HeroBaseStats(id string, level int) (types.HeroStats, bool)
}

// Defs holds the immutable game definitions loaded from Lua.
type Defs struct {
	Game     types.GameDef
	Heroes   map[string]types.HeroDef
	Units    map[string]types.UnitDef
	Cards    map[string]types.CardDef
	Decks    map[string]types.DeckDef
	Passives []types.PassiveRule
}

var _ Provider = (*Defs)(nil)

// Card returns the card definition for id.
func (d *Defs) Card(id string) (types.CardDef, bool) {
	c, ok := d.Cards[id]
	return c, ok
}

// CardManaCost returns the mana cost of a card.
func (d *Defs) CardManaCost(id string) (int, bool) {
	c, ok := d.Cards[id]
	if !ok {
		return 0, false
	}
	return c.ManaCost, true
}

// UnitBaseStats returns a copy of a unit's stats at level. Levels past the
// last defined one clamp to the last; levels below 1 clamp to 1.
func (d *Defs) UnitBaseStats(id string, level int) (types.UnitStats, bool) {
	u, ok := d.Units[id]
	if !ok || len(u.Levels) == 0 {
		return types.UnitStats{}, false
	}
	st := u.Levels[clampLevel(level, len(u.Levels))]
	st.Skills = slices.Clone(st.Skills)
	return st, true
}

// HeroBaseStats returns a hero's stats at level, clamped like units.
func (d *Defs) HeroBaseStats(id string, level int) (types.HeroStats, bool) {
	h, ok := d.Heroes[id]
	if !ok || len(h.HealthByLevel) == 0 {
		return types.HeroStats{}, false
	}
	return types.HeroStats{Health: h.HealthByLevel[clampLevel(level, len(h.HealthByLevel))]}, true
}

func clampLevel(level, n int) int {
	i := level - 1
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// NewPlayer seeds a player from a save snapshot. The deck is expanded in
// snapshot order; callers shuffle it.
func NewPlayer(p Provider, save types.PlayerSave, game types.GameDef) (types.Player, error) {
	hs, ok := p.HeroBaseStats(save.Hero, save.Level)
	if !ok {
		return types.Player{}, rulerr.Newf(rulerr.CodeDataLookupFailure, "unknown hero %q", save.Hero)
	}
	for _, cs := range save.Cards {
		if _, ok := p.Card(cs.ID); !ok {
			return types.Player{}, rulerr.Newf(rulerr.CodeDataLookupFailure, "unknown card %q", cs.ID)
		}
	}
	maxMana := game.MaxMana
	if maxMana <= 0 {
		maxMana = DefaultMaxMana
	}
	startMana := game.StartMana
	if startMana <= 0 {
		startMana = DefaultStartMana
	}
	return types.Player{
		Hero: types.Hero{
			ID:      save.Hero,
			Level:   save.Level,
			Health:  hs.Health,
			Mana:    min(startMana, maxMana),
			MaxMana: maxMana,
		},
		Cards: types.Cards{
			Deck:    ExpandDeck(save.Cards),
			Hand:    []types.CardLevel{},
			Discard: []types.CardLevel{},
		},
	}, nil
}

// ExpandDeck turns {id, level, count} entries into individual cards.
func ExpandDeck(entries []types.CardSave) []types.CardLevel {
	var deck []types.CardLevel
	for _, e := range entries {
		for i := 0; i < e.Count; i++ {
			deck = append(deck, types.CardLevel{ID: e.ID, Level: e.Level})
		}
	}
	return deck
}

// HandSize returns the opening hand size configured by content.
func HandSize(game types.GameDef) int {
	if game.HandSize <= 0 {
		return DefaultHandSize
	}
	return game.HandSize
}

// Opponent returns the other player's index.
func Opponent(player int) int {
	return 1 - player
}

// InBounds reports whether (line, row) addresses a board cell.
func InBounds(line, row int) bool {
	return line >= 0 && line < types.Lines && row >= 0 && row < types.Rows
}

// Place returns the board cell for player at (line, row), or nil when any
// index is out of range.
func Place(s *types.GameState, player, line, row int) *types.BoardPlace {
	if player < 0 || player >= types.Players || !InBounds(line, row) {
		return nil
	}
	return &s.Players[player].Board[line][row]
}

// IsEmpty reports whether no live unit occupies the place.
func IsEmpty(p *types.BoardPlace) bool {
	return p.Unit == nil
}

// Alive reports whether u is a living unit.
func Alive(u *types.Unit) bool {
	return u != nil && u.Health > 0
}

// NewUnit creates a unit instance from base stats. The instance never shares
// its skill slice with the stats it was built from.
func NewUnit(id string, level int, base types.UnitStats) *types.Unit {
	base.Skills = slices.Clone(base.Skills)
	return &types.Unit{
		ID:     id,
		Level:  level,
		Health: base.Health,
		Damage: max(base.Damage, 0),
		Skills: slices.Clone(base.Skills),
		Base:   base,
	}
}

// HasSkill reports whether u carries skill.
func HasSkill(u *types.Unit, skill types.SkillID) bool {
	return u != nil && slices.Contains(u.Skills, skill)
}

// AddSkill adds skill to u. Returns false if u already had it.
func AddSkill(u *types.Unit, skill types.SkillID) bool {
	if HasSkill(u, skill) {
		return false
	}
	u.Skills = append(u.Skills, skill)
	return true
}

// DamageUnit lowers u's health by amount, clamping at 0. Negative amounts are
// treated as 0.
func DamageUnit(u *types.Unit, amount int) {
	u.Health = max(u.Health-max(amount, 0), 0)
}

// HealUnit raises u's health by amount. Healing is uncapped.
func HealUnit(u *types.Unit, amount int) {
	u.Health += max(amount, 0)
}

// FirstLivingRow scans player's board along line from row 0 and returns the
// first row holding a living unit.
func FirstLivingRow(s *types.GameState, player, line int) (int, bool) {
	for row := 0; row < types.Rows; row++ {
		if Alive(s.Players[player].Board[line][row].Unit) {
			return row, true
		}
	}
	return 0, false
}

// Kill moves the place's unit into its dead history. Returns the unit, or nil
// if the place was empty.
func Kill(p *types.BoardPlace) *types.Unit {
	u := p.Unit
	if u == nil {
		return nil
	}
	p.Dead = append(p.Dead, u)
	p.Unit = nil
	return u
}

// Mark tags p with mark once.
func Mark(p *types.BoardPlace, mark string) {
	if !slices.Contains(p.Marks, mark) {
		p.Marks = append(p.Marks, mark)
	}
}

// HasMark reports whether p carries mark.
func HasMark(p *types.BoardPlace, mark string) bool {
	return slices.Contains(p.Marks, mark)
}

// ClearMarks drops every place mark on both boards.
func ClearMarks(s *types.GameState) {
	for p := range s.Players {
		for line := range s.Players[p].Board {
			for row := range s.Players[p].Board[line] {
				s.Players[p].Board[line][row].Marks = s.Players[p].Board[line][row].Marks[:0]
			}
		}
	}
}

// Revive returns the most recently killed unit to an empty place, reset to
// its base stats. Returns nil if the place is occupied or has no dead units.
func Revive(p *types.BoardPlace) *types.Unit {
	if !IsEmpty(p) || len(p.Dead) == 0 {
		return nil
	}
	last := p.Dead[len(p.Dead)-1]
	p.Dead = p.Dead[:len(p.Dead)-1]
	u := NewUnit(last.ID, last.Level, last.Base)
	p.Unit = u
	return u
}

// AddMana grants amount mana, clamped to [0, MaxMana].
func AddMana(h *types.Hero, amount int) {
	h.Mana = min(max(h.Mana+amount, 0), h.MaxMana)
}

// SpendMana deducts cost if affordable. Returns false without mutation otherwise.
func SpendMana(h *types.Hero, cost int) bool {
	if cost < 0 || h.Mana < cost {
		return false
	}
	h.Mana -= cost
	return true
}

// HasCard reports whether card is in hand.
func HasCard(c *types.Cards, card types.CardLevel) bool {
	return slices.Contains(c.Hand, card)
}

// Discard moves the first matching card from hand to discard. Returns false
// if the card is not in hand.
func Discard(c *types.Cards, card types.CardLevel) bool {
	i := slices.Index(c.Hand, card)
	if i < 0 {
		return false
	}
	c.Hand = slices.Delete(c.Hand, i, i+1)
	c.Discard = append(c.Discard, card)
	return true
}

// Draw moves the top deck card into hand. Returns false on an empty deck.
func Draw(c *types.Cards) (types.CardLevel, bool) {
	if len(c.Deck) == 0 {
		return types.CardLevel{}, false
	}
	card := c.Deck[0]
	c.Deck = c.Deck[1:]
	c.Hand = append(c.Hand, card)
	return card, true
}

// ReturnToDeck moves the first matching hand card to the bottom of the deck.
func ReturnToDeck(c *types.Cards, card types.CardLevel) bool {
	i := slices.Index(c.Hand, card)
	if i < 0 {
		return false
	}
	c.Hand = slices.Delete(c.Hand, i, i+1)
	c.Deck = append(c.Deck, card)
	return true
}

// CardCount returns the number of cards across deck, hand and discard.
func CardCount(c *types.Cards) int {
	return len(c.Deck) + len(c.Hand) + len(c.Discard)
}

// LivingUnits counts the living units on a player's board.
func LivingUnits(s *types.GameState, player int) int {
	n := 0
	for line := 0; line < types.Lines; line++ {
		for row := 0; row < types.Rows; row++ {
			if Alive(s.Players[player].Board[line][row].Unit) {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy of s that shares no mutable memory with it.
func Clone(s *types.GameState) *types.GameState {
	c := &types.GameState{Round: s.Round}
	for p := range s.Players {
		src := &s.Players[p]
		dst := &c.Players[p]
		dst.Hero = src.Hero
		dst.Cards = types.Cards{
			Deck:    slices.Clone(src.Cards.Deck),
			Hand:    slices.Clone(src.Cards.Hand),
			Discard: slices.Clone(src.Cards.Discard),
		}
		for line := 0; line < types.Lines; line++ {
			for row := 0; row < types.Rows; row++ {
				sp := &src.Board[line][row]
				dp := &dst.Board[line][row]
				dp.Unit = cloneUnit(sp.Unit)
				dp.Marks = slices.Clone(sp.Marks)
				if sp.Dead != nil {
					dp.Dead = make([]*types.Unit, len(sp.Dead))
					for i, u := range sp.Dead {
						dp.Dead[i] = cloneUnit(u)
					}
				}
			}
		}
	}
	return c
}

func cloneUnit(u *types.Unit) *types.Unit {
	if u == nil {
		return nil
	}
	c := *u
	c.Skills = slices.Clone(u.Skills)
	c.Base.Skills = slices.Clone(u.Base.Skills)
	return &c
}
