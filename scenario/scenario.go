// Package scenario runs scripted matches described in YAML. A script names
// the decks, the seed, each round's moves and what the board should look
// like afterwards.
package scenario

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Fedya1234/CardBattle/engine"
	"github.com/Fedya1234/CardBattle/engine/bot"
	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

// Script is one scripted match.
type Script struct {
	Name    string                    `yaml:"name"`
	Seed    int64                     `yaml:"seed"`
	Players [types.Players]PlayerSpec `yaml:"players"`
	Rounds  []RoundSpec               `yaml:"rounds"`
	Expect  *Expect                   `yaml:"expect"`
}

// PlayerSpec seeds one side. Deck names a content deck; Save is an inline
// snapshot used when Deck is empty. Hand stacks the opening hand instead of
// dealing it. Bot players move on their own in rounds that give no move.
type PlayerSpec struct {
	Deck string            `yaml:"deck"`
	Save *types.PlayerSave `yaml:"save"`
	Hand []types.CardLevel `yaml:"hand"`
	Bot  bool              `yaml:"bot"`
}

// RoundSpec is one round. A nil move is a pass unless the player is a bot.
type RoundSpec struct {
	P0     *types.Move `yaml:"p0"`
	P1     *types.Move `yaml:"p1"`
	Expect *Expect     `yaml:"expect"`
}

// Expect lists checks against the state. Empty fields are not checked;
// Outcome "none" requires the match to still be running.
type Expect struct {
	Outcome    string `yaml:"outcome"`
	HeroHealth []int  `yaml:"hero_health"`
	Mana       []int  `yaml:"mana"`
	Units      []int  `yaml:"units"`
	Round      int    `yaml:"round"`
}

// Result is what a run produced.
type Result struct {
	Rounds   []types.RoundResult
	Outcome  types.Outcome
	Failures []string
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a script. Unknown fields are rejected.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty scenario")
		}
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return &s, nil
}

// Run plays the script against defs. Setup problems and cancellation are
// returned as errors; failed expectations are collected in the result.
func Run(ctx context.Context, defs *state.Defs, s *Script, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("scenario", s.Name))

	var saves [types.Players]types.PlayerSave
	for p, spec := range s.Players {
		save, err := spec.resolve(defs)
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", p, err)
		}
		saves[p] = save
	}

	eng, err := engine.New(defs, saves, engine.Options{Seed: s.Seed, Logger: logger})
	if err != nil {
		return nil, err
	}

	var bots [types.Players]*bot.Bot
	for p, spec := range s.Players {
		if spec.Bot {
			bots[p] = bot.New(p, defs, eng.RNG, logger)
		}
		if err := open(eng, p, spec, bots[p]); err != nil {
			return nil, fmt.Errorf("player %d opening: %w", p, err)
		}
	}

	res := &Result{}
	for i, rs := range s.Rounds {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if eng.Over() {
			res.Failures = append(res.Failures, fmt.Sprintf(
				"round %d: match already ended with %s", i+1, eng.Outcome()))
			break
		}

		eng.BeginRound()
		m0 := move(rs.P0, bots[0], eng.State)
		m1 := move(rs.P1, bots[1], eng.State)
		rr, err := eng.Resolve(m0, m1)
		if err != nil {
			return res, fmt.Errorf("round %d: %w", i+1, err)
		}
		res.Rounds = append(res.Rounds, rr)
		logger.Debug("scenario round",
			zap.Int("round", rr.Round),
			zap.Int("events", len(rr.Events)),
			zap.Float64("advantage", rr.Advantage),
		)

		if rs.Expect != nil {
			for _, f := range rs.Expect.check(eng) {
				res.Failures = append(res.Failures, fmt.Sprintf("round %d: %s", i+1, f))
			}
		}
	}

	res.Outcome = eng.Outcome()
	if s.Expect != nil {
		for _, f := range s.Expect.check(eng) {
			res.Failures = append(res.Failures, "final: "+f)
		}
	}
	return res, nil
}

func (spec PlayerSpec) resolve(defs *state.Defs) (types.PlayerSave, error) {
	if spec.Deck != "" {
		d, ok := defs.Decks[spec.Deck]
		if !ok {
			return types.PlayerSave{}, fmt.Errorf("unknown deck %q", spec.Deck)
		}
		return d.Save, nil
	}
	if spec.Save == nil {
		return types.PlayerSave{}, fmt.Errorf("needs a deck or a save")
	}
	save := *spec.Save
	save.Cards = slices.Clone(save.Cards)
	for i := range save.Cards {
		if save.Cards[i].Level <= 0 {
			save.Cards[i].Level = 1
		}
	}
	if save.Level <= 0 {
		save.Level = 1
	}
	return save, nil
}

func open(eng *engine.Engine, p int, spec PlayerSpec, b *bot.Bot) error {
	if len(spec.Hand) > 0 {
		return eng.Arrange(p, spec.Hand)
	}
	hand := eng.DealOpening(p)
	if b != nil {
		kept, discarded := b.Opening(hand)
		return eng.KeepOpening(p, kept, discarded)
	}
	return eng.KeepOpening(p, hand, nil)
}

func move(scripted *types.Move, b *bot.Bot, s *types.GameState) types.Move {
	switch {
	case scripted != nil:
		return *scripted
	case b != nil:
		return b.Move(s)
	default:
		return types.Move{}
	}
}

func (e *Expect) check(eng *engine.Engine) []string {
	var failures []string
	s := eng.State

	switch e.Outcome {
	case "":
	case "none":
		if eng.Over() {
			failures = append(failures, fmt.Sprintf("outcome = %s, want the match running", eng.Outcome()))
		}
	default:
		if got := eng.Outcome(); string(got) != e.Outcome {
			failures = append(failures, fmt.Sprintf("outcome = %q, want %q", got, e.Outcome))
		}
	}

	perPlayer := func(name string, want []int, get func(p int) int) {
		if len(want) == 0 {
			return
		}
		if len(want) != types.Players {
			failures = append(failures, fmt.Sprintf("%s needs %d values, got %d", name, types.Players, len(want)))
			return
		}
		for p := range types.Players {
			if got := get(p); got != want[p] {
				failures = append(failures, fmt.Sprintf("P%d %s = %d, want %d", p, name, got, want[p]))
			}
		}
	}
	perPlayer("hero_health", e.HeroHealth, func(p int) int { return s.Players[p].Hero.Health })
	perPlayer("mana", e.Mana, func(p int) int { return s.Players[p].Hero.Mana })
	perPlayer("units", e.Units, func(p int) int { return state.LivingUnits(s, p) })

	if e.Round > 0 && s.Round != e.Round {
		failures = append(failures, fmt.Sprintf("round = %d, want %d", s.Round, e.Round))
	}
	return failures
}
