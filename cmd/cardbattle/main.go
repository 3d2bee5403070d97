// CardBattle is a deterministic two-player card battler on mirrored 3x3 boards.
// Usage: cardbattle [--version] [--plain] [--trace] [--script <file>] [--scenario <file>] [--seed <n>] [--content <dir>] [--journal <file>] [--history]
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Fedya1234/CardBattle/cli"
	"github.com/Fedya1234/CardBattle/config"
	"github.com/Fedya1234/CardBattle/engine"
	"github.com/Fedya1234/CardBattle/engine/save"
	"github.com/Fedya1234/CardBattle/engine/session"
	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/journal"
	"github.com/Fedya1234/CardBattle/loader"
	"github.com/Fedya1234/CardBattle/scenario"
	"github.com/Fedya1234/CardBattle/tui"
	"github.com/Fedya1234/CardBattle/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: cardbattle [--version] [--plain] [--trace] [--script <file>] [--scenario <file>] " +
	"[--seed <n>] [--content <dir>] [--journal <file>] [--history]"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	plain := false
	trace := false
	history := false
	var scriptFile, scenarioFile string

	args := os.Args[1:]
	value := func(i *int, flag string) string {
		if *i+1 >= len(args) {
			fmt.Fprintf(os.Stderr, "%s requires a value\n", flag)
			os.Exit(1)
		}
		*i++
		return args[*i]
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("cardbattle %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--history":
			history = true
		case "--script":
			scriptFile = value(&i, "--script")
		case "--scenario":
			scenarioFile = value(&i, "--scenario")
		case "--content":
			cfg.ContentDir = value(&i, "--content")
		case "--journal":
			cfg.JournalPath = value(&i, "--journal")
		case "--seed":
			seed, err := strconv.ParseInt(value(&i, "--seed"), 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "--seed: %v\n", err)
				os.Exit(1)
			}
			cfg.Seed = seed
		default:
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(1)
		}
	}

	interactive := scriptFile == "" && scenarioFile == "" && !history
	useTUI := interactive && !plain && isTerminal()

	logger, err := newLogger(cfg, useTUI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger, runOptions{
		trace:    trace,
		history:  history,
		script:   scriptFile,
		scenario: scenarioFile,
		useTUI:   useTUI,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	trace    bool
	history  bool
	script   string
	scenario string
	useTUI   bool
}

func run(cfg config.Config, logger *zap.Logger, opts runOptions) error {
	ctx := context.Background()

	if opts.history {
		return printHistory(ctx, cfg.JournalPath)
	}

	defs, err := loader.Load(cfg.ContentDir, logger)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	if opts.scenario != "" {
		return runScenario(ctx, defs, opts.scenario, cfg.Seed, logger)
	}

	deckNames, saves, err := pickDecks(defs, cfg)
	if err != nil {
		return err
	}
	eng, err := engine.New(defs, saves, engine.Options{Seed: seed, Logger: logger})
	if err != nil {
		return err
	}
	sess := session.New(eng, 0)

	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer j.Close()
		id, err := j.StartMatch(ctx, journal.Match{Seed: seed, DeckP0: deckNames[0], DeckP1: deckNames[1]})
		if err != nil {
			return err
		}
		sess.MatchID = id
		sess.Recorder = j
		logger.Info("match started", zap.String("match", id), zap.Int64("seed", seed))
	}

	con := session.NewConsole(sess)
	if cfg.SaveDir != "" {
		con.SaveDir = cfg.SaveDir
	}
	con.Trace = opts.trace

	if opts.useTUI {
		return tui.Run(con, cfg.ReplayPace)
	}

	fmt.Printf("%s v%s by %s\n\n", defs.Game.Title, defs.Game.Version, defs.Game.Author)
	c := cli.New(con)

	// Script mode: read commands from the file and echo them.
	if opts.script != "" {
		f, err := os.Open(opts.script)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c.In = f
		c.EchoInput = true
	}
	c.Run()
	return nil
}

// pickDecks resolves both players' decks. A setting ending in .json is a
// player snapshot file; anything else names a content deck. Unset players
// take the content decks in name order.
func pickDecks(defs *state.Defs, cfg config.Config) ([types.Players]string, [types.Players]types.PlayerSave, error) {
	var names [types.Players]string
	var saves [types.Players]types.PlayerSave

	available := make([]string, 0, len(defs.Decks))
	for id := range defs.Decks {
		available = append(available, id)
	}
	sort.Strings(available)

	for p, want := range []string{cfg.DeckP0, cfg.DeckP1} {
		if want == "" {
			if len(available) == 0 {
				return names, saves, fmt.Errorf("player %d: no decks defined; set CARDBATTLE_DECK_P%d", p, p)
			}
			want = available[p%len(available)]
		}
		names[p] = want

		if strings.HasSuffix(want, ".json") {
			data, err := os.ReadFile(want)
			if err != nil {
				return names, saves, fmt.Errorf("player %d: %w", p, err)
			}
			ps, err := save.LoadPlayer(data)
			if err != nil {
				return names, saves, fmt.Errorf("player %d: %w", p, err)
			}
			saves[p] = ps
			continue
		}

		deck, ok := defs.Decks[want]
		if !ok {
			return names, saves, fmt.Errorf("player %d: unknown deck %q (have %s)", p, want, strings.Join(available, ", "))
		}
		saves[p] = deck.Save
	}
	return names, saves, nil
}

func runScenario(ctx context.Context, defs *state.Defs, path string, seed int64, logger *zap.Logger) error {
	script, err := scenario.Load(path)
	if err != nil {
		return err
	}
	if seed != 0 {
		script.Seed = seed
	}

	res, err := scenario.Run(ctx, defs, script, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Scenario %s (seed %d)\n", script.Name, script.Seed)
	for _, r := range res.Rounds {
		outcome := string(r.Outcome)
		if outcome == "" {
			outcome = "running"
		}
		fmt.Printf("  round %d: %d events, advantage %+.2f, %s\n", r.Round, len(r.Events), r.Advantage, outcome)
	}
	if res.Outcome != types.OutcomeNone {
		fmt.Printf("Outcome: %s\n", res.Outcome)
	}
	if res.Passed() {
		fmt.Println("PASS")
		return nil
	}
	for _, f := range res.Failures {
		fmt.Printf("  FAIL %s\n", f)
	}
	return fmt.Errorf("scenario %s: %d expectation(s) failed", script.Name, len(res.Failures))
}

func printHistory(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("--history needs a journal (--journal or CARDBATTLE_JOURNAL_PATH)")
	}
	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()

	matches, err := j.Matches(ctx, 10)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No matches recorded.")
		return nil
	}
	for _, m := range matches {
		rounds, err := j.Rounds(ctx, m.ID)
		if err != nil {
			return err
		}
		outcome := string(m.Outcome)
		if outcome == "" {
			outcome = "unfinished"
		}
		fmt.Printf("%s  %s  %s vs %s  %d rounds  %s\n",
			m.StartedAt.Format(time.DateTime), m.ID, m.DeckP0, m.DeckP1, len(rounds), outcome)
	}
	return nil
}

// newLogger builds a development logger on stderr for line-oriented modes.
// The TUI owns the terminal, so it logs to CARDBATTLE_LOG_FILE or nowhere.
func newLogger(cfg config.Config, useTUI bool) (*zap.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	if useTUI {
		if cfg.LogFile == "" {
			return zap.NewNop(), nil
		}
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(lvl)
		zc.OutputPaths = []string{cfg.LogFile}
		zc.ErrorOutputPaths = []string{cfg.LogFile}
		return zc.Build()
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	if cfg.LogFile != "" {
		zc.OutputPaths = []string{cfg.LogFile}
	}
	return zc.Build()
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
