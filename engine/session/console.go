package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Fedya1234/CardBattle/engine/advantage"
)

// Console turns raw input lines into replies. Slash commands act on the
// session itself; "again" (or "g") repeats the last game command; anything
// else is a game command for Step.
type Console struct {
	Session *Session
	SaveDir string
	Trace   bool

	// HelpFooter is appended to /help, for front-end specific keys.
	HelpFooter []string

	last string
}

// Reply is everything one input line produced. System lines come from slash
// commands and are shown before the game output.
type Reply struct {
	System []string
	Result
	Quit bool
}

// NewConsole creates a console saving under ~/.cardbattle/saves.
func NewConsole(s *Session) *Console {
	home, _ := os.UserHomeDir()
	return &Console{
		Session: s,
		SaveDir: filepath.Join(home, ".cardbattle", "saves"),
	}
}

// Handle runs one line of input. Blank input yields an empty reply.
func (c *Console) Handle(input string) Reply {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return Reply{}
	case strings.HasPrefix(input, "/"):
		return c.meta(strings.Fields(input))
	}

	if lower := strings.ToLower(input); lower == "again" || lower == "g" {
		if c.last == "" {
			return Reply{System: []string{"Nothing to repeat."}}
		}
		input = c.last
	}
	c.last = input

	r := Reply{Result: c.Session.Step(input)}
	if c.Trace {
		r.Output = append(r.Output, TraceLines(r.Result)...)
	}
	return r
}

func (c *Console) meta(args []string) Reply {
	var arg string
	if len(args) > 1 {
		arg = args[1]
	}

	switch args[0] {
	case "/quit", "/exit":
		return Reply{System: []string{"Goodbye."}, Quit: true}
	case "/save":
		return c.save(arg)
	case "/load":
		return c.load(arg)
	case "/help":
		return Reply{Result: Result{Output: c.help()}}
	case "/state":
		return Reply{
			System: c.Session.StateLines(),
			Result: Result{Output: c.Session.BoardLines(c.Session.Engine.State)},
		}
	case "/advantage":
		v := advantage.Evaluate(c.Session.Engine.State)
		return Reply{System: []string{advantage.Describe(v)}}
	case "/revive":
		return c.revive(args[1:])
	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			return Reply{System: []string{"Trace output enabled."}}
		}
		return Reply{System: []string{"Trace output disabled."}}
	}
	return Reply{System: []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", args[0])}}
}

func (c *Console) savePath(name string) (string, string) {
	if name == "" {
		name = "quicksave"
	}
	return name, filepath.Join(c.SaveDir, name+".json")
}

func (c *Console) save(arg string) Reply {
	name, path := c.savePath(arg)
	data, err := c.Session.Save()
	if err == nil {
		err = os.MkdirAll(c.SaveDir, 0o755)
	}
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		return Reply{System: []string{fmt.Sprintf("Save failed: %v", err)}}
	}
	return Reply{System: []string{fmt.Sprintf("Game saved to %s.", name)}}
}

func (c *Console) load(arg string) Reply {
	name, path := c.savePath(arg)
	data, err := os.ReadFile(path)
	if err != nil {
		return Reply{System: []string{fmt.Sprintf("Load failed: %v", err)}}
	}
	res, err := c.Session.Load(data)
	if err != nil {
		return Reply{System: []string{fmt.Sprintf("Load failed: %v", err)}}
	}
	c.last = ""
	return Reply{System: []string{fmt.Sprintf("Loaded %s.", name)}, Result: res}
}

func (c *Console) revive(args []string) Reply {
	usage := Reply{System: []string{"Usage: /revive <line> <row>"}}
	if len(args) != 2 {
		return usage
	}
	line, err := strconv.Atoi(args[0])
	if err != nil {
		return usage
	}
	row, err := strconv.Atoi(args[1])
	if err != nil {
		return usage
	}
	return Reply{Result: c.Session.Revive(line, row)}
}

func (c *Console) help() []string {
	lines := []string{
		"System:",
		"  /save [name]          Save game (default: quicksave)",
		"  /load [name]          Load game (default: quicksave)",
		"  /quit                 Exit game",
		"  /help                 Show this help",
		"  /state                Debug: dump current state",
		"  /advantage            Show who is ahead",
		"  /revive <line> <row>  Debug: revive your last fallen unit",
		"  /trace                Toggle debug trace output",
		"",
		"Game commands:",
	}
	lines = append(lines, CommandHelp...)
	if len(c.HelpFooter) > 0 {
		lines = append(append(lines, ""), c.HelpFooter...)
	}
	return lines
}
