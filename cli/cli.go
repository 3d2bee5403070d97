// Package cli runs a CardBattle match as a plain line-oriented dialogue on
// an io.Reader and io.Writer. It suits pipes, scripts and dumb terminals.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Fedya1234/CardBattle/engine/session"
)

// CLI reads commands from In and writes narration to Out.
type CLI struct {
	*session.Console

	In  io.Reader
	Out io.Writer

	// EchoInput repeats each command after the prompt so a script's
	// transcript reads like a played game.
	EchoInput bool
}

// New creates a CLI serving con on stdin and stdout.
func New(con *session.Console) *CLI {
	return &CLI{Console: con, In: os.Stdin, Out: os.Stdout}
}

// Run prints the intro and opening hand, then serves commands until /quit
// or end of input. Lines starting with '#' are script comments.
func (c *CLI) Run() {
	if intro := c.Session.Engine.Defs.Game.Intro; intro != "" {
		fmt.Fprintf(c.Out, "%s\n\n", intro)
	}
	c.write(session.Reply{Result: c.Session.Start()})

	sc := bufio.NewScanner(c.In)
	for fmt.Fprint(c.Out, "> "); sc.Scan(); fmt.Fprint(c.Out, "> ") {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if c.EchoInput {
			fmt.Fprintln(c.Out, line)
		}
		reply := c.Handle(line)
		c.write(reply)
		if reply.Quit {
			return
		}
	}
}

// write prints system lines in brackets, then the game output as is.
func (c *CLI) write(r session.Reply) {
	for _, s := range r.System {
		fmt.Fprintf(c.Out, "[%s]\n", s)
	}
	for _, line := range r.Output {
		fmt.Fprintln(c.Out, line)
	}
}
