// Package types defines the shared data structures for the CardBattle engine.
// This package holds data only; behavior lives under engine/.
package types

// Board geometry.
const (
	Lines   = 3
	Rows    = 3
	Players = 2
)

// SkillID names a unit skill tag.
type SkillID string

const (
	SkillDoubleDamage SkillID = "double_damage"
	SkillVampire      SkillID = "vampire"
	SkillFirstHit     SkillID = "first_hit"
	SkillAntiMagic    SkillID = "anti_magic"
	SkillArmor        SkillID = "armor"
	SkillEndTurnHeal  SkillID = "end_turn_heal_1"
)

// Phase is the fixed macro-ordering of round resolution.
type Phase int

const (
	PhasePositive Phase = iota
	PhaseNegative
	PhasePassive
	PhaseCombat
)

// Outcome is the result of a round's win check.
type Outcome string

const (
	OutcomeNone        Outcome = ""
	OutcomePlayer0Wins Outcome = "player0_wins"
	OutcomePlayer1Wins Outcome = "player1_wins"
	OutcomeDraw        Outcome = "draw"
)

// CardLevel identifies a card instance by id and level.
type CardLevel struct {
	ID    string `json:"id" yaml:"id"`
	Level int    `json:"level" yaml:"level"`
}

// Placement is one card play targeting a cell of the acting player's board.
type Placement struct {
	Card CardLevel `json:"card" yaml:"card"`
	Line int       `json:"line" yaml:"line"`
	Row  int       `json:"row" yaml:"row"`
}

// Move is one player's submission for a round. At most one card can be burned.
type Move struct {
	Placements []Placement `json:"placements" yaml:"placements"`
	Burned     *CardLevel  `json:"burned,omitempty" yaml:"burned,omitempty"`
}

// UnitStats are the base stats of a unit at a given level.
type UnitStats struct {
	Health int       `json:"health"`
	Damage int       `json:"damage"`
	Skills []SkillID `json:"skills"`
}

// Unit is a live (or dead) unit instance on a board.
type Unit struct {
	ID     string    `json:"id"`
	Level  int       `json:"level"`
	Health int       `json:"health"`
	Damage int       `json:"damage"`
	Skills []SkillID `json:"skills"`
	Base   UnitStats `json:"base"` // restored by revive
}

// MarkSummoned tags a place whose unit was put down by the latest resolved
// round. It clears when the next round resolves.
const MarkSummoned = "summoned"

// BoardPlace is one cell: an optional live unit, the dead-unit history and marks.
type BoardPlace struct {
	Unit  *Unit    `json:"unit,omitempty"`
	Dead  []*Unit  `json:"dead"`
	Marks []string `json:"marks"`
}

// Board is indexed [line][row].
type Board [Lines][Rows]BoardPlace

// Hero is a player's avatar. Health may be negative until the win check.
type Hero struct {
	ID      string `json:"id"`
	Level   int    `json:"level"`
	Health  int    `json:"health"`
	Mana    int    `json:"mana"`
	MaxMana int    `json:"max_mana"`
}

// Cards holds a player's card collections. Deck order is draw order.
type Cards struct {
	Deck    []CardLevel `json:"deck"`
	Hand    []CardLevel `json:"hand"`
	Discard []CardLevel `json:"discard"`
}

// Player holds one side's runtime state.
type Player struct {
	Board Board `json:"board"`
	Hero  Hero  `json:"hero"`
	Cards Cards `json:"cards"`
}

// GameState is the complete mutable match state.
type GameState struct {
	Players [Players]Player `json:"players"`
	Round   int             `json:"round"`
}

// Event is one entry of the ordered change log produced by resolution.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// RoundResult is returned after a round resolves.
type RoundResult struct {
	Round     int
	Events    []Event
	Outcome   Outcome
	Advantage float64
}

// CardKind distinguishes unit cards from spells.
type CardKind string

const (
	CardUnit  CardKind = "unit"
	CardSpell CardKind = "spell"
)

// SpellKind selects the effect a spell card produces.
type SpellKind string

const (
	SpellDamage     SpellKind = "damage"
	SpellGrantSkill SpellKind = "grant_skill"
	SpellHeal       SpellKind = "heal"
)

// CardDef is the static definition of a card.
type CardDef struct {
	ID       string
	Name     string
	Kind     CardKind
	ManaCost int
	Unit     string    // unit def id, for unit cards
	Spell    SpellKind // for spell cards
	Skill    SkillID   // for grant_skill spells
	Amount   int       // 0 means the default for the spell kind
	Text     string
}

// UnitDef is the static definition of a unit. Levels[i] holds level i+1.
type UnitDef struct {
	ID     string
	Name   string
	Levels []UnitStats
}

// HeroStats are the base stats of a hero at a level.
type HeroStats struct {
	Health int
}

// HeroDef is the static definition of a hero. HealthByLevel[i] holds level i+1.
type HeroDef struct {
	ID            string
	Name          string
	HealthByLevel []int
}

// CardSave is one deck entry of a player snapshot.
type CardSave struct {
	ID    string `json:"id" yaml:"id"`
	Level int    `json:"level" yaml:"level"`
	Count int    `json:"count" yaml:"count"`
}

// PlayerSave is the external snapshot a player is seeded from.
type PlayerSave struct {
	Hero  string     `json:"hero" yaml:"hero"`
	Level int        `json:"level" yaml:"level"`
	Cards []CardSave `json:"cards" yaml:"cards"`
}

// DeckDef is a named starter deck defined in content.
type DeckDef struct {
	ID   string
	Save PlayerSave
}

// GameDef holds match metadata and tuning from Lua.
type GameDef struct {
	Title     string
	Author    string
	Version   string
	Intro     string
	StartMana int
	MaxMana   int
	HandSize  int
}

// Condition is a predicate evaluated against a board cell.
type Condition struct {
	Type   string         // "row_is", "line_is", "has_skill", "health_lt", "hero_health_lt", "not"
	Params map[string]any // condition-specific parameters
	Inner  *Condition     // for Not(): the negated inner condition
}

// PassiveRule binds a skill to an effect applied during a phase.
type PassiveRule struct {
	ID         string
	Skill      SkillID
	Phase      Phase
	Conditions []Condition
	Effect     string // "heal" or "damage"
	Amount     int
}
