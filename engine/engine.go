// Package engine provides the match session that wires the content catalog,
// the seeded RNG and the round resolver into one game between two players.
package engine

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Fedya1234/CardBattle/engine/battle"
	"github.com/Fedya1234/CardBattle/engine/events"
	"github.com/Fedya1234/CardBattle/engine/rulerr"
	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

// Options tune a new session.
type Options struct {
	Seed   int64
	Logger *zap.Logger
}

// Engine holds the game definitions and mutable state.
type Engine struct {
	Defs  *state.Defs
	State *types.GameState
	RNG   *RNG

	resolver *battle.Resolver
	logger   *zap.Logger
	outcome  types.Outcome
}

// New seeds both players from their save snapshots and shuffles their decks.
func New(defs *state.Defs, saves [types.Players]types.PlayerSave, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		Defs:     defs,
		State:    &types.GameState{},
		RNG:      NewRNG(opts.Seed),
		resolver: battle.New(defs, defs.Passives, logger),
		logger:   logger,
	}
	for p := range saves {
		pl, err := state.NewPlayer(defs, saves[p], defs.Game)
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", p, err)
		}
		e.State.Players[p] = pl
		e.shuffle(p)
	}
	return e, nil
}

// Restore rebuilds a session around a saved state. The outcome is recomputed
// from hero health.
func Restore(defs *state.Defs, s *types.GameState, seed, position int64, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		Defs:     defs,
		State:    s,
		RNG:      RestoreRNG(seed, position),
		resolver: battle.New(defs, defs.Passives, logger),
		logger:   logger,
	}
	if s.Round > 0 {
		e.outcome = battle.Outcome(s)
	}
	return e
}

// Logger returns the session logger.
func (e *Engine) Logger() *zap.Logger {
	return e.logger
}

func (e *Engine) shuffle(p int) {
	deck := e.State.Players[p].Cards.Deck
	e.RNG.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
}

// DealOpening draws player p up to the opening hand size and returns the
// candidates.
func (e *Engine) DealOpening(p int) []types.CardLevel {
	cards := &e.State.Players[p].Cards
	size := state.HandSize(e.Defs.Game)
	for len(cards.Hand) < size {
		if _, ok := state.Draw(cards); !ok {
			break
		}
	}
	return slices.Clone(cards.Hand)
}

// KeepOpening returns the discarded candidates to the bottom of p's deck and
// draws replacements up to the hand size. Every kept and discarded card must
// be in hand; otherwise nothing changes.
func (e *Engine) KeepOpening(p int, kept, discarded []types.CardLevel) error {
	if p < 0 || p >= types.Players {
		return rulerr.Validation("no player %d", p)
	}
	cards := &e.State.Players[p].Cards

	pool := slices.Clone(cards.Hand)
	for _, c := range slices.Concat(kept, discarded) {
		i := slices.Index(pool, c)
		if i < 0 {
			return rulerr.Validation("%s (level %d) is not an opening candidate", c.ID, c.Level)
		}
		pool = slices.Delete(pool, i, i+1)
	}

	for _, c := range discarded {
		state.ReturnToDeck(cards, c)
	}
	size := state.HandSize(e.Defs.Game)
	for len(cards.Hand) < size {
		if _, ok := state.Draw(cards); !ok {
			break
		}
	}
	e.logger.Debug("opening hand kept",
		zap.Int("player", p),
		zap.Int("kept", len(kept)),
		zap.Int("discarded", len(discarded)),
	)
	return nil
}

// Arrange moves the given cards from p's deck into p's hand, skipping the
// opening deal. Either every card is found in the deck or nothing moves.
func (e *Engine) Arrange(p int, hand []types.CardLevel) error {
	if p < 0 || p >= types.Players {
		return rulerr.Validation("no player %d", p)
	}
	cards := &e.State.Players[p].Cards

	deck := slices.Clone(cards.Deck)
	for _, c := range hand {
		i := slices.Index(deck, c)
		if i < 0 {
			return rulerr.Validation("%s (level %d) is not in the deck", c.ID, c.Level)
		}
		deck = slices.Delete(deck, i, i+1)
	}
	cards.Deck = deck
	cards.Hand = append(cards.Hand, hand...)
	return nil
}

// BeginRound starts the next round: every hero gains one mana up to its
// maximum and every player draws one card if the deck allows.
func (e *Engine) BeginRound() []types.Event {
	if e.Over() {
		return nil
	}
	e.State.Round++
	evts := []types.Event{events.New(events.RoundStarted, "round", e.State.Round)}
	for p := range e.State.Players {
		pl := &e.State.Players[p]
		state.AddMana(&pl.Hero, 1)
		if card, ok := state.Draw(&pl.Cards); ok {
			evts = append(evts, events.New(events.CardDrawn,
				"player", p, "card", card.ID, "level", card.Level, "mana", pl.Hero.Mana))
		}
	}
	return evts
}

// Resolve resolves the current round with both players' moves. Place marks
// left by the previous resolution are cleared first. After a terminal
// outcome the session is over and further rounds are refused.
func (e *Engine) Resolve(m0, m1 types.Move) (types.RoundResult, error) {
	if e.Over() {
		return types.RoundResult{}, rulerr.New(rulerr.CodeValidationFailure, "the match is over")
	}
	state.ClearMarks(e.State)
	res := e.resolver.Resolve(e.State, m0, m1)
	if res.Outcome != types.OutcomeNone {
		e.outcome = res.Outcome
		e.logger.Info("match over", zap.String("outcome", string(res.Outcome)), zap.Int("round", res.Round))
	}
	return res, nil
}

// Revive returns the most recently killed unit at p's (line, row) to the
// board at its base stats.
func (e *Engine) Revive(p, line, row int) ([]types.Event, error) {
	if e.Over() {
		return nil, rulerr.New(rulerr.CodeValidationFailure, "the match is over")
	}
	place := state.Place(e.State, p, line, row)
	if place == nil {
		return nil, rulerr.Validation("cell (%d,%d) is off the board", line, row)
	}
	u := state.Revive(place)
	if u == nil {
		return nil, rulerr.Validation("nothing to revive at (%d,%d)", line, row)
	}
	return []types.Event{events.New(events.UnitRevived,
		"player", p, "unit", u.ID, "line", line, "row", row, "health", u.Health)}, nil
}

// Over reports whether the match has a winner or ended in a draw.
func (e *Engine) Over() bool {
	return e.outcome != types.OutcomeNone
}

// Outcome returns the match outcome, empty while play continues.
func (e *Engine) Outcome() types.Outcome {
	return e.outcome
}
