// Package session runs an interactive match between a human player and the
// bot. It turns typed commands into the human's pending move, resolves
// rounds when the human ends the turn and narrates what happened.
package session

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Fedya1234/CardBattle/engine"
	"github.com/Fedya1234/CardBattle/engine/advantage"
	"github.com/Fedya1234/CardBattle/engine/bot"
	"github.com/Fedya1234/CardBattle/engine/events"
	"github.com/Fedya1234/CardBattle/engine/parser"
	"github.com/Fedya1234/CardBattle/engine/resolve"
	"github.com/Fedya1234/CardBattle/engine/save"
	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

// Recorder receives resolved rounds. The journal implements it.
type Recorder interface {
	RecordRound(ctx context.Context, matchID string, res types.RoundResult) error
	FinishMatch(ctx context.Context, matchID string, outcome types.Outcome) error
}

// Result is the outcome of one command.
type Result struct {
	Output []string
	Events []types.Event

	// Before is the state as it was just before a round resolved. It is nil
	// when the command did not resolve a round.
	Before *types.GameState
}

func (r *Result) add(lines ...string) {
	r.Output = append(r.Output, lines...)
}

func (r *Result) merge(o Result) {
	r.Output = append(r.Output, o.Output...)
	r.Events = append(r.Events, o.Events...)
	if o.Before != nil {
		r.Before = o.Before
	}
}

// Session is one human-versus-bot match.
type Session struct {
	Engine   *engine.Engine
	Bot      *bot.Bot
	Human    int
	MatchID  string
	Recorder Recorder

	opening bool
	pending types.Move
	history []types.Move
	logger  *zap.Logger
	title   cases.Caser
}

// New seats the human at index human; the bot plays the other side and
// draws its randomness from the engine's RNG.
func New(eng *engine.Engine, human int) *Session {
	logger := eng.Logger()
	return &Session{
		Engine: eng,
		Bot:    bot.New(state.Opponent(human), eng.Defs, eng.RNG, logger),
		Human:  human,
		logger: logger,
		title:  cases.Title(language.English),
	}
}

// Opening reports whether the human is still choosing an opening hand.
func (s *Session) Opening() bool {
	return s.opening
}

// Pending returns a copy of the human's queued move.
func (s *Session) Pending() types.Move {
	m := types.Move{Placements: slices.Clone(s.pending.Placements)}
	if s.pending.Burned != nil {
		b := *s.pending.Burned
		m.Burned = &b
	}
	return m
}

// Start deals both opening hands. The bot settles its hand at once; the
// human may redraw cards until keeping the hand.
func (s *Session) Start() Result {
	var r Result
	bp := state.Opponent(s.Human)
	kept, discarded := s.Bot.Opening(s.Engine.DealOpening(bp))
	if err := s.Engine.KeepOpening(bp, kept, discarded); err != nil {
		s.logger.Error("bot opening rejected", zap.Error(err))
	}

	s.Engine.DealOpening(s.Human)
	s.opening = true
	r.add("Your opening hand:")
	r.add(s.HandLines()...)
	r.add("Type 'redraw <card>' to swap a card, or 'keep' to begin.")
	return r
}

// Step executes one player command.
func (s *Session) Step(input string) Result {
	cmd := parser.Parse(input)
	if cmd.Verb == "" {
		return Result{}
	}

	switch cmd.Verb {
	case "hand":
		return Result{Output: s.HandLines()}
	case "board":
		return Result{Output: s.BoardLines(s.Engine.State)}
	}

	if s.Engine.Over() {
		return Result{Output: []string{"The match is over. Use /load to continue a saved game or /quit."}}
	}

	switch cmd.Verb {
	case "redraw":
		return s.redraw(cmd)
	case "keep":
		if !s.opening {
			return Result{Output: []string{"The match is already under way."}}
		}
		return s.begin()
	}

	var r Result
	if s.opening && isMoveVerb(cmd.Verb) {
		r.merge(s.begin())
	}

	switch cmd.Verb {
	case "play":
		r.merge(s.play(cmd))
	case "burn":
		r.merge(s.burn(cmd))
	case "undo":
		r.merge(s.undo())
	case "end":
		r.merge(s.end())
	default:
		r.add("I don't understand that. Type /help for commands.")
	}
	return r
}

func isMoveVerb(verb string) bool {
	switch verb {
	case "play", "burn", "undo", "end":
		return true
	}
	return false
}

func (s *Session) redraw(cmd parser.Command) Result {
	if !s.opening {
		return Result{Output: []string{"You can only redraw before the first round."}}
	}
	if cmd.Object == "" {
		return Result{Output: []string{"Redraw what?"}}
	}
	hand := s.Engine.State.Players[s.Human].Cards.Hand
	card, err := resolve.Card(s.Engine.Defs, hand, cmd.Object)
	if err != nil {
		return Result{Output: []string{err.Error()}}
	}

	rest := slices.Clone(hand)
	i := slices.Index(rest, card)
	rest = slices.Delete(rest, i, i+1)
	if err := s.Engine.KeepOpening(s.Human, rest, []types.CardLevel{card}); err != nil {
		return Result{Output: []string{err.Error()}}
	}

	var r Result
	r.add(fmt.Sprintf("%s goes to the bottom of your deck.", s.label(card)))
	r.add(s.HandLines()...)
	return r
}

// begin starts the next round and narrates the draws.
func (s *Session) begin() Result {
	s.opening = false
	var r Result
	evts := s.Engine.BeginRound()
	r.Events = evts
	for _, e := range evts {
		if line, ok := events.Describe(e); ok {
			r.add(line)
		}
	}
	r.add(s.StatusLine())
	return r
}

func (s *Session) play(cmd parser.Command) Result {
	if cmd.Object == "" {
		return Result{Output: []string{"Play what?"}}
	}
	card, err := resolve.Card(s.Engine.Defs, s.available(), cmd.Object)
	if err != nil {
		return Result{Output: []string{err.Error()}}
	}
	if !cmd.HasCell() {
		return Result{Output: []string{"Where? Use: play <card> <line> <row>."}}
	}
	if !state.InBounds(cmd.Line, cmd.Row) {
		return Result{Output: []string{fmt.Sprintf(
			"There is no cell at line %d, row %d.", cmd.Line+1, cmd.Row+1)}}
	}

	def, _ := s.Engine.Defs.Card(card.ID)
	left := s.manaLeft()
	if def.ManaCost > left {
		return Result{Output: []string{fmt.Sprintf(
			"Not enough mana: %s costs %d and you have %d left.", s.label(card), def.ManaCost, left)}}
	}
	if def.Kind == types.CardUnit && s.cellTaken(cmd.Line, cmd.Row) {
		return Result{Output: []string{fmt.Sprintf(
			"Line %d, row %d is already taken.", cmd.Line+1, cmd.Row+1)}}
	}

	s.push()
	s.pending.Placements = append(s.pending.Placements,
		types.Placement{Card: card, Line: cmd.Line, Row: cmd.Row})

	target := "your"
	if def.Kind == types.CardSpell && def.Spell == types.SpellDamage {
		target = "the enemy"
	}
	return Result{Output: []string{fmt.Sprintf("Queued %s on %s line %d, row %d. %d mana left.",
		s.label(card), target, cmd.Line+1, cmd.Row+1, left-def.ManaCost)}}
}

func (s *Session) burn(cmd parser.Command) Result {
	if cmd.Object == "" {
		return Result{Output: []string{"Burn what?"}}
	}
	if s.pending.Burned != nil {
		return Result{Output: []string{fmt.Sprintf(
			"You already burn %s this round.", s.label(*s.pending.Burned))}}
	}
	card, err := resolve.Card(s.Engine.Defs, s.available(), cmd.Object)
	if err != nil {
		return Result{Output: []string{err.Error()}}
	}

	s.push()
	s.pending.Burned = &card
	return Result{Output: []string{fmt.Sprintf("Queued %s to burn for 1 mana.", s.label(card))}}
}

func (s *Session) undo() Result {
	if len(s.history) == 0 {
		return Result{Output: []string{"Nothing to undo."}}
	}
	s.pending = s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	return Result{Output: []string{fmt.Sprintf("Undone. %d mana left.", s.manaLeft())}}
}

// end submits the human's move alongside the bot's and resolves the round.
func (s *Session) end() Result {
	var moves [types.Players]types.Move
	moves[s.Human] = s.pending
	moves[s.Bot.Player] = s.Bot.Move(s.Engine.State)

	before := state.Clone(s.Engine.State)
	res, err := s.Engine.Resolve(moves[0], moves[1])
	if err != nil {
		return Result{Output: []string{err.Error()}}
	}
	s.pending = types.Move{}
	s.history = nil

	r := Result{Events: res.Events, Before: before}
	for _, e := range res.Events {
		if line, ok := events.Describe(e); ok {
			r.add(line)
		}
	}
	r.add(advantage.Describe(res.Advantage))
	if mood := bot.Mood(s.Engine.State, s.Bot.Player); mood != bot.EmotionNone {
		r.add(fmt.Sprintf("Your opponent looks %s.", mood))
	}
	s.record(res)

	if s.Engine.Over() {
		r.add(s.verdict())
		return r
	}
	r.merge(s.begin())
	return r
}

func (s *Session) record(res types.RoundResult) {
	if s.Recorder == nil || s.MatchID == "" {
		return
	}
	ctx := context.Background()
	if err := s.Recorder.RecordRound(ctx, s.MatchID, res); err != nil {
		s.logger.Warn("journal round failed", zap.Error(err), zap.Int("round", res.Round))
	}
	if res.Outcome == types.OutcomeNone {
		return
	}
	if err := s.Recorder.FinishMatch(ctx, s.MatchID, res.Outcome); err != nil {
		s.logger.Warn("journal finish failed", zap.Error(err))
	}
}

func (s *Session) verdict() string {
	switch s.Engine.Outcome() {
	case types.OutcomeDraw:
		return "It's a draw."
	case types.OutcomePlayer0Wins:
		if s.Human == 0 {
			return "You win!"
		}
	case types.OutcomePlayer1Wins:
		if s.Human == 1 {
			return "You win!"
		}
	}
	return "You lose."
}

// Revive brings back the last unit that died on the human's (line, row).
// Coordinates are 1-based.
func (s *Session) Revive(line, row int) Result {
	evts, err := s.Engine.Revive(s.Human, line-1, row-1)
	if err != nil {
		return Result{Output: []string{err.Error()}}
	}
	r := Result{Events: evts}
	for _, e := range evts {
		if text, ok := events.Describe(e); ok {
			r.add(text)
		}
	}
	return r
}

// Save serializes the match.
func (s *Session) Save() ([]byte, error) {
	return save.Save(save.Session{
		State:       s.Engine.State,
		Outcome:     s.Engine.Outcome(),
		RNGSeed:     s.Engine.RNG.Seed(),
		RNGPosition: s.Engine.RNG.Position(),
		MatchID:     s.MatchID,
	}, s.Engine.Defs)
}

// Load replaces the match with a saved one. The pending move is dropped.
func (s *Session) Load(data []byte) (Result, error) {
	sd, err := save.Load(data)
	if err != nil {
		return Result{}, err
	}
	st := &types.GameState{}
	save.ApplySave(st, sd)

	eng := engine.Restore(s.Engine.Defs, st, sd.RNGSeed, sd.RNGPosition, s.logger)
	candidates := s.Bot.Candidates
	s.Engine = eng
	s.Bot = bot.New(s.Bot.Player, eng.Defs, eng.RNG, s.logger)
	s.Bot.Candidates = candidates
	s.MatchID = sd.MatchID
	s.pending = types.Move{}
	s.history = nil
	s.opening = st.Round == 0

	var r Result
	r.add(fmt.Sprintf("Game loaded (round %d).", st.Round))
	r.add(s.BoardLines(st)...)
	r.add(s.StatusLine())
	return r, nil
}

// push records the pending move so undo can restore it.
func (s *Session) push() {
	s.history = append(s.history, s.Pending())
}

// available returns the human's hand minus the cards already queued.
func (s *Session) available() []types.CardLevel {
	hand := slices.Clone(s.Engine.State.Players[s.Human].Cards.Hand)
	queued := make([]types.CardLevel, 0, len(s.pending.Placements)+1)
	for _, pl := range s.pending.Placements {
		queued = append(queued, pl.Card)
	}
	if s.pending.Burned != nil {
		queued = append(queued, *s.pending.Burned)
	}
	for _, c := range queued {
		if i := slices.Index(hand, c); i >= 0 {
			hand = slices.Delete(hand, i, i+1)
		}
	}
	return hand
}

func (s *Session) manaLeft() int {
	left := s.Engine.State.Players[s.Human].Hero.Mana
	for _, pl := range s.pending.Placements {
		cost, _ := s.Engine.Defs.CardManaCost(pl.Card.ID)
		left -= cost
	}
	return left
}

func (s *Session) cellTaken(line, row int) bool {
	if !state.IsEmpty(state.Place(s.Engine.State, s.Human, line, row)) {
		return true
	}
	for _, pl := range s.pending.Placements {
		def, _ := s.Engine.Defs.Card(pl.Card.ID)
		if def.Kind == types.CardUnit && pl.Line == line && pl.Row == row {
			return true
		}
	}
	return false
}

// label renders a card for the player, e.g. "Footman (lv1)".
func (s *Session) label(c types.CardLevel) string {
	return fmt.Sprintf("%s (lv%d)", s.CardName(c.ID), c.Level)
}

// CardName returns a card's display name, title-casing the id when the
// content gives none.
func (s *Session) CardName(id string) string {
	if def, ok := s.Engine.Defs.Card(id); ok && def.Name != "" {
		return def.Name
	}
	return s.title.String(strings.ReplaceAll(id, "_", " "))
}

// UnitName returns a unit's display name.
func (s *Session) UnitName(id string) string {
	if def, ok := s.Engine.Defs.Units[id]; ok && def.Name != "" {
		return def.Name
	}
	return s.title.String(strings.ReplaceAll(id, "_", " "))
}

// HandLines lists the human's hand, marking queued cards.
func (s *Session) HandLines() []string {
	hand := s.Engine.State.Players[s.Human].Cards.Hand
	if len(hand) == 0 {
		return []string{"  (your hand is empty)"}
	}
	free := s.available()
	lines := make([]string, 0, len(hand))
	for _, c := range hand {
		cost, _ := s.Engine.Defs.CardManaCost(c.ID)
		mark := ""
		if i := slices.Index(free, c); i >= 0 {
			free = slices.Delete(free, i, i+1)
		} else {
			mark = " [queued]"
		}
		lines = append(lines, fmt.Sprintf("  %s, cost %d%s", s.label(c), cost, mark))
	}
	return lines
}

// StatusLine summarizes both heroes.
func (s *Session) StatusLine() string {
	st := s.Engine.State
	me, them := st.Players[s.Human], st.Players[s.Bot.Player]
	return fmt.Sprintf("You: %d hp, %d/%d mana, %d in deck | Opponent: %d hp, %d/%d mana, %d in hand",
		me.Hero.Health, s.manaLeft(), me.Hero.MaxMana, len(me.Cards.Deck),
		them.Hero.Health, them.Hero.Mana, them.Hero.MaxMana, len(them.Cards.Hand))
}

// BoardLines renders both boards as text, the opponent on top. Front rows
// face each other across the divider.
func (s *Session) BoardLines(st *types.GameState) []string {
	const width = 16
	header := fmt.Sprintf("%-8s", "")
	for line := 0; line < types.Lines; line++ {
		header += fmt.Sprintf("%-*s", width, fmt.Sprintf("Line %d", line+1))
	}
	lines := []string{strings.TrimRight(header, " ")}

	row := func(p, r int, who string) string {
		text := fmt.Sprintf("%-8s", fmt.Sprintf("%s r%d", who, r+1))
		for line := 0; line < types.Lines; line++ {
			text += fmt.Sprintf("%-*s", width, s.cellText(st.Players[p].Board[line][r]))
		}
		return strings.TrimRight(text, " ")
	}

	for r := types.Rows - 1; r >= 0; r-- {
		lines = append(lines, row(s.Bot.Player, r, "Opp"))
	}
	lines = append(lines, strings.Repeat("-", 8+width*types.Lines))
	for r := 0; r < types.Rows; r++ {
		lines = append(lines, row(s.Human, r, "You"))
	}
	return lines
}

func (s *Session) cellText(p types.BoardPlace) string {
	u := p.Unit
	if !state.Alive(u) {
		if len(p.Dead) > 0 {
			return "x"
		}
		return "."
	}
	text := fmt.Sprintf("%s %d/%d", s.UnitName(u.ID), u.Health, u.Damage)
	if len(u.Skills) > 0 {
		text += "*"
	}
	if state.HasMark(&p, types.MarkSummoned) {
		text = "+" + text
	}
	return text
}

// CommandHelp lists the game commands Step understands.
var CommandHelp = []string{
	"  keep (k)                  Keep your opening hand",
	"  redraw <card>             Swap an opening card for another",
	"  play <card> <line> <row>  Queue a card (p, cast, summon)",
	"  burn <card> (b)           Discard a card for 1 mana",
	"  undo (u)                  Take back the last queued action",
	"  hand (h)                  Show your hand",
	"  board (l)                 Show both boards",
	"  end (e)                   End the round and fight",
	"  again (g)                 Repeat your last command",
}

// StateLines dumps the match for debugging.
func (s *Session) StateLines() []string {
	st := s.Engine.State
	lines := []string{fmt.Sprintf("Round: %d", st.Round)}
	if s.Engine.Over() {
		lines = append(lines, fmt.Sprintf("Outcome: %s", s.Engine.Outcome()))
	}
	if s.MatchID != "" {
		lines = append(lines, fmt.Sprintf("Match: %s", s.MatchID))
	}
	lines = append(lines, fmt.Sprintf("RNG: seed %d, position %d", s.Engine.RNG.Seed(), s.Engine.RNG.Position()))
	for p, pl := range st.Players {
		lines = append(lines, fmt.Sprintf("P%d %s: health %d, mana %d/%d, deck %d, hand %d, discard %d",
			p+1, pl.Hero.ID, pl.Hero.Health, pl.Hero.Mana, pl.Hero.MaxMana,
			len(pl.Cards.Deck), len(pl.Cards.Hand), len(pl.Cards.Discard)))
	}
	return lines
}

// TraceLines renders a result's raw events, one per line with sorted fields.
func TraceLines(r Result) []string {
	if len(r.Events) == 0 {
		return nil
	}
	lines := []string{fmt.Sprintf("[trace] Events: %d", len(r.Events))}
	for _, e := range r.Events {
		keys := make([]string, 0, len(e.Data))
		for k := range e.Data {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		fields := make([]string, len(keys))
		for i, k := range keys {
			fields[i] = fmt.Sprintf("%s=%v", k, e.Data[k])
		}
		lines = append(lines, fmt.Sprintf("[trace]   %s %s", e.Type, strings.Join(fields, " ")))
	}
	return lines
}
