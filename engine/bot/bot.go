// Package bot plays one side of a match. It draws candidate moves from the
// session RNG, simulates each on a copy of the state and keeps the one that
// leaves it the best advantage.
package bot

import (
	"slices"

	"go.uber.org/zap"

	"github.com/Fedya1234/CardBattle/engine/advantage"
	"github.com/Fedya1234/CardBattle/engine/battle"
	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

const (
	// DefaultCandidates is the number of random moves simulated per turn.
	DefaultCandidates = 8

	// openingMaxCost is the highest mana cost kept in an opening hand.
	openingMaxCost = 3

	maxPlays      = 3
	burnChancePct = 30
)

// rowWeights favor the middle row.
var rowWeights = []int{25, 50, 25}

// Random is the subset of the session RNG the bot draws from.
type Random interface {
	Intn(n int) int
	WeightedSelect(weights []int) int
	Shuffle(n int, swap func(i, j int))
}

// Emotion is the bot's reaction to the current position.
type Emotion string

const (
	EmotionNone      Emotion = ""
	EmotionHappy     Emotion = "happy"
	EmotionConfident Emotion = "confident"
	EmotionNervous   Emotion = "nervous"
	EmotionSad       Emotion = "sad"
)

// Bot chooses moves for one player.
type Bot struct {
	Player     int
	Candidates int

	data   *state.Defs
	rng    Random
	sim    *battle.Resolver
	logger *zap.Logger
}

// New creates a bot for player. Simulated rounds never log.
func New(player int, defs *state.Defs, rng Random, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		Player:     player,
		Candidates: DefaultCandidates,
		data:       defs,
		rng:        rng,
		sim:        battle.New(defs, defs.Passives, zap.NewNop()),
		logger:     logger.With(zap.Int("bot", player)),
	}
}

// Opening splits the opening candidates into kept and discarded cards. Cheap
// cards are kept; if none qualify the cheapest card is kept.
func (b *Bot) Opening(hand []types.CardLevel) (kept, discarded []types.CardLevel) {
	for _, c := range hand {
		cost, _ := b.data.CardManaCost(c.ID)
		if cost <= openingMaxCost {
			kept = append(kept, c)
		} else {
			discarded = append(discarded, c)
		}
	}
	if len(kept) == 0 && len(discarded) > 0 {
		i := slices.IndexFunc(discarded, func(c types.CardLevel) bool {
			return b.cost(c) == b.cheapest(discarded)
		})
		kept = append(kept, discarded[i])
		discarded = slices.Delete(discarded, i, i+1)
	}
	return kept, discarded
}

func (b *Bot) cost(c types.CardLevel) int {
	cost, _ := b.data.CardManaCost(c.ID)
	return cost
}

func (b *Bot) cheapest(cards []types.CardLevel) int {
	low := b.cost(cards[0])
	for _, c := range cards[1:] {
		low = min(low, b.cost(c))
	}
	return low
}

// Move picks the best of several random candidate moves for s. The live
// state is never modified.
func (b *Bot) Move(s *types.GameState) types.Move {
	best := types.Move{}
	bestScore := b.score(s, best)
	for i := 0; i < b.Candidates; i++ {
		m := b.candidate(s)
		if len(m.Placements) == 0 && m.Burned == nil {
			continue
		}
		if score := b.score(s, m); score > bestScore {
			best, bestScore = m, score
		}
	}
	b.logger.Debug("bot move chosen",
		zap.Int("plays", len(best.Placements)),
		zap.Bool("burn", best.Burned != nil),
		zap.Float64("score", bestScore),
	)
	return best
}

// score resolves m on a copy of s against an idle opponent.
func (b *Bot) score(s *types.GameState, m types.Move) float64 {
	sim := state.Clone(s)
	var moves [types.Players]types.Move
	moves[b.Player] = m
	res := b.sim.Resolve(sim, moves[0], moves[1])

	v := advantage.ForPlayer(sim, b.Player)
	switch res.Outcome {
	case types.OutcomeDraw:
		v -= 1
	case types.OutcomePlayer0Wins, types.OutcomePlayer1Wins:
		if (res.Outcome == types.OutcomePlayer0Wins) == (b.Player == 0) {
			v += 2
		} else {
			v -= 2
		}
	}
	return v
}

// candidate draws one random move: up to three affordable hand cards placed
// on legal cells, and sometimes a burn.
func (b *Bot) candidate(s *types.GameState) types.Move {
	var m types.Move
	pl := &s.Players[b.Player]
	hand := slices.Clone(pl.Cards.Hand)
	if len(hand) == 0 {
		return m
	}
	b.rng.Shuffle(len(hand), func(i, j int) { hand[i], hand[j] = hand[j], hand[i] })

	mana := pl.Hero.Mana
	taken := map[[2]int]bool{}
	used := make([]bool, len(hand))
	n := 1 + b.rng.Intn(min(maxPlays, len(hand)))
	for i := 0; i < n; i++ {
		card := hand[i]
		def, ok := b.data.Card(card.ID)
		if !ok || def.ManaCost > mana {
			continue
		}
		line, row, ok := b.target(s, def, taken)
		if !ok {
			continue
		}
		if def.Kind == types.CardUnit {
			taken[[2]int{line, row}] = true
		}
		m.Placements = append(m.Placements, types.Placement{Card: card, Line: line, Row: row})
		mana -= def.ManaCost
		used[i] = true
	}

	var rest []types.CardLevel
	for i, c := range hand {
		if !used[i] {
			rest = append(rest, c)
		}
	}
	if len(rest) > 0 && b.rng.Intn(100) < burnChancePct {
		burn := rest[b.rng.Intn(len(rest))]
		m.Burned = &burn
	}
	return m
}

// target chooses a cell for def. Units need an empty own cell, preferring the
// middle row. Damage aims at any cell. Buffs need an own living unit.
func (b *Bot) target(s *types.GameState, def types.CardDef, taken map[[2]int]bool) (int, int, bool) {
	board := &s.Players[b.Player].Board
	switch {
	case def.Kind == types.CardUnit:
		line, row := b.rng.Intn(types.Lines), b.rng.WeightedSelect(rowWeights)
		if board[line][row].Unit == nil && !taken[[2]int{line, row}] {
			return line, row, true
		}
		for l := 0; l < types.Lines; l++ {
			for r := 0; r < types.Rows; r++ {
				if board[l][r].Unit == nil && !taken[[2]int{l, r}] {
					return l, r, true
				}
			}
		}
		return 0, 0, false

	case def.Spell == types.SpellDamage:
		return b.rng.Intn(types.Lines), b.rng.WeightedSelect(rowWeights), true

	default:
		var cells [][2]int
		for l := 0; l < types.Lines; l++ {
			for r := 0; r < types.Rows; r++ {
				if u := board[l][r].Unit; state.Alive(u) && !(def.Spell == types.SpellGrantSkill && state.HasSkill(u, def.Skill)) {
					cells = append(cells, [2]int{l, r})
				}
			}
		}
		if len(cells) == 0 {
			return 0, 0, false
		}
		c := cells[b.rng.Intn(len(cells))]
		return c[0], c[1], true
	}
}

// Mood maps player's advantage to an emotion.
func Mood(s *types.GameState, player int) Emotion {
	v := advantage.ForPlayer(s, player)
	switch {
	case v > 0.5:
		return EmotionHappy
	case v > 0.2:
		return EmotionConfident
	case v < -0.5:
		return EmotionSad
	case v < -0.2:
		return EmotionNervous
	default:
		return EmotionNone
	}
}
