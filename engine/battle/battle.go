// Package battle resolves one round: card plays, mana burns, the positive,
// negative and passive phases, combat and the win check. Phases are driven
// by a finite state machine so the order is declared in one place.
package battle

import (
	"context"
	"sort"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/Fedya1234/CardBattle/engine/advantage"
	"github.com/Fedya1234/CardBattle/engine/effects"
	"github.com/Fedya1234/CardBattle/engine/events"
	"github.com/Fedya1234/CardBattle/engine/rulerr"
	"github.com/Fedya1234/CardBattle/engine/rules"
	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

// Round states, in resolution order.
const (
	StateReady    = "ready"
	StatePlays    = "plays"
	StateBurns    = "burns"
	StatePositive = "positive"
	StateNegative = "negative"
	StatePassive  = "passive"
	StateCombat   = "combat"
	StateWinCheck = "win_check"
)

// step is one transition of the round machine.
type step struct {
	event string
	src   string
	dst   string
}

var steps = []step{
	{"resolve_plays", StateReady, StatePlays},
	{"resolve_burns", StatePlays, StateBurns},
	{"run_positive", StateBurns, StatePositive},
	{"run_negative", StatePositive, StateNegative},
	{"run_passive", StateNegative, StatePassive},
	{"run_combat", StatePassive, StateCombat},
	{"check_win", StateCombat, StateWinCheck},
}

// Resolver resolves rounds against injected static data.
type Resolver struct {
	data     state.Provider
	factory  *effects.Factory
	passives []types.PassiveRule
	logger   *zap.Logger
}

// New creates a Resolver. passives are content rules merged over the builtin
// ones. A nil logger discards diagnostics.
func New(data state.Provider, passives []types.PassiveRule, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		data:     data,
		factory:  effects.NewFactory(data, logger),
		passives: rules.Passives(passives),
		logger:   logger,
	}
}

// round carries the per-round working set through the machine callbacks.
type round struct {
	r       *Resolver
	s       *types.GameState
	moves   [types.Players]types.Move
	events  []types.Event
	outcome types.Outcome
}

// Play is one placement in the merged play order.
type Play struct {
	Player    int
	Placement types.Placement
	Cost      int
}

// Resolve runs one round on s with both players' moves and returns the
// ordered event log and outcome. It never fails: invalid plays are skipped
// and logged.
func (r *Resolver) Resolve(s *types.GameState, m0, m1 types.Move) types.RoundResult {
	rd := &round{r: r, s: s, moves: [types.Players]types.Move{m0, m1}}

	descs := make(fsm.Events, 0, len(steps))
	for _, st := range steps {
		descs = append(descs, fsm.EventDesc{Name: st.event, Src: []string{st.src}, Dst: st.dst})
	}
	machine := fsm.NewFSM(StateReady, descs, fsm.Callbacks{
		"enter_" + StatePlays:    func(context.Context, *fsm.Event) { rd.resolvePlays() },
		"enter_" + StateBurns:    func(context.Context, *fsm.Event) { rd.resolveBurns() },
		"enter_" + StatePositive: func(context.Context, *fsm.Event) { rd.runPhase(types.PhasePositive) },
		"enter_" + StateNegative: func(context.Context, *fsm.Event) { rd.runPhase(types.PhaseNegative) },
		"enter_" + StatePassive:  func(context.Context, *fsm.Event) { rd.runPhase(types.PhasePassive) },
		"enter_" + StateCombat:   func(context.Context, *fsm.Event) { rd.runCombat() },
		"enter_" + StateWinCheck: func(context.Context, *fsm.Event) { rd.checkWin() },
	})

	ctx := context.Background()
	for _, st := range steps {
		if err := machine.Event(ctx, st.event); err != nil {
			r.logger.Error("round machine stalled",
				zap.String("event", st.event),
				zap.String("state", machine.Current()),
				zap.Error(err),
			)
			break
		}
	}

	adv := advantage.Evaluate(s)
	r.logger.Info("round resolved",
		zap.Int("round", s.Round),
		zap.String("outcome", string(rd.outcome)),
		zap.Int("hero0", s.Players[0].Hero.Health),
		zap.Int("hero1", s.Players[1].Hero.Health),
		zap.Float64("advantage", adv),
	)
	return types.RoundResult{
		Round:     s.Round,
		Events:    rd.events,
		Outcome:   rd.outcome,
		Advantage: adv,
	}
}

// Order merges both players' placements: descending mana cost, then player
// index, then submission order.
func Order(data state.Provider, moves [types.Players]types.Move) []Play {
	var plays []Play
	for p, m := range moves {
		for _, pl := range m.Placements {
			cost, _ := data.CardManaCost(pl.Card.ID)
			plays = append(plays, Play{Player: p, Placement: pl, Cost: cost})
		}
	}
	sort.SliceStable(plays, func(i, j int) bool {
		if plays[i].Cost != plays[j].Cost {
			return plays[i].Cost > plays[j].Cost
		}
		return plays[i].Player < plays[j].Player
	})
	return plays
}

func (rd *round) emit(evts ...types.Event) {
	rd.events = append(rd.events, evts...)
}

func (rd *round) resolvePlays() {
	log := rd.r.logger
	for _, pl := range Order(rd.r.data, rd.moves) {
		p, card := pl.Player, pl.Placement.Card
		line, row := pl.Placement.Line, pl.Placement.Row
		cards := &rd.s.Players[p].Cards

		if !state.HasCard(cards, card) {
			log.Error("card not in hand, play skipped",
				zap.Int("player", p),
				zap.String("card", card.ID),
				zap.Int("level", card.Level),
				zap.String("code", string(rulerr.CodeInvariantViolation)),
			)
			rd.emit(events.New(events.PlaySkipped, "player", p, "card", card.ID))
			continue
		}

		eff := rd.r.factory.ForCard(card)
		evts, err := effects.Apply(rd.s, eff, p, line, row)
		if err != nil {
			log.Debug("play failed",
				zap.Int("player", p),
				zap.String("card", card.ID),
				zap.Int("line", line),
				zap.Int("row", row),
				zap.String("code", string(rulerr.CodeOf(err))),
				zap.Error(err),
			)
			rd.emit(events.New(events.PlayFailed,
				"player", p, "card", card.ID, "line", line, "row", row, "reason", err.Error()))
			continue
		}

		state.Discard(cards, card)
		rd.emit(events.New(events.CardPlayed,
			"player", p, "card", card.ID, "level", card.Level, "line", line, "row", row,
			"effect", eff.Kind.String()))
		rd.emit(evts...)
	}
}

// resolveBurns moves each burned card to discard for +1 mana, capped at the
// hero's maximum.
func (rd *round) resolveBurns() {
	for p, m := range rd.moves {
		if m.Burned == nil {
			continue
		}
		card := *m.Burned
		pl := &rd.s.Players[p]
		if !state.Discard(&pl.Cards, card) {
			rd.r.logger.Error("burned card not in hand, burn skipped",
				zap.Int("player", p),
				zap.String("card", card.ID),
				zap.String("code", string(rulerr.CodeInvariantViolation)),
			)
			rd.emit(events.New(events.BurnSkipped, "player", p, "card", card.ID))
			continue
		}
		state.AddMana(&pl.Hero, 1)
		rd.emit(events.New(events.ManaBurned, "player", p, "card", card.ID, "mana", pl.Hero.Mana))
	}
}

// runPhase scans all cells, player 0 first and line-major, and applies every
// passive rule bound to phase.
func (rd *round) runPhase(phase types.Phase) {
	rd.emit(events.New(events.PhaseStarted, "phase", events.PhaseName(phase)))
	for p := 0; p < types.Players; p++ {
		for line := 0; line < types.Lines; line++ {
			for row := 0; row < types.Rows; row++ {
				cell := rules.Cell{State: rd.s, Player: p, Line: line, Row: row,
					Unit: rd.s.Players[p].Board[line][row].Unit}
				for _, rule := range rules.Firing(rd.r.passives, phase, cell) {
					evts, err := effects.Apply(rd.s, rd.r.factory.ForPassive(rule), p, line, row)
					if err != nil {
						rd.r.logger.Debug("passive failed",
							zap.String("rule", rule.ID),
							zap.Int("player", p),
							zap.Error(err),
						)
						continue
					}
					rd.emit(evts...)
				}
			}
		}
	}
}

func (rd *round) runCombat() {
	rd.emit(events.New(events.PhaseStarted, "phase", events.PhaseName(types.PhaseCombat)))
	evts, err := effects.Apply(rd.s, rd.r.factory.Combat(), 0, 0, 0)
	if err != nil {
		rd.r.logger.Error("combat failed", zap.Error(err))
		return
	}
	rd.emit(evts...)
}

func (rd *round) checkWin() {
	rd.outcome = Outcome(rd.s)
	rd.emit(events.New(events.RoundEnded, "round", rd.s.Round, "outcome", string(rd.outcome),
		"hero0", rd.s.Players[0].Hero.Health, "hero1", rd.s.Players[1].Hero.Health))
}

// Outcome applies the win check: a hero at or below 0 health is dead.
func Outcome(s *types.GameState) types.Outcome {
	dead0 := s.Players[0].Hero.Health <= 0
	dead1 := s.Players[1].Hero.Health <= 0
	switch {
	case dead0 && dead1:
		return types.OutcomeDraw
	case dead0:
		return types.OutcomePlayer1Wins
	case dead1:
		return types.OutcomePlayer0Wins
	default:
		return types.OutcomeNone
	}
}
