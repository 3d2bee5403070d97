// Package parser converts command strings into Command structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strconv"
	"strings"
)

// Command is one parsed player command. Line and Row are 0-based and -1
// when the command did not name a cell.
type Command struct {
	Verb   string
	Object string
	Line   int
	Row    int
}

// HasCell reports whether the command named a board cell.
func (c Command) HasCell() bool {
	return c.Line >= 0 && c.Row >= 0
}

var verbAliases = map[string]string{
	// Play
	"p":      "play",
	"place":  "play",
	"cast":   "play",
	"summon": "play",
	"put":    "play",

	// Burn
	"b":         "burn",
	"sacrifice": "burn",
	"discard":   "burn",

	// Hand / Board
	"h":     "hand",
	"cards": "hand",
	"l":     "board",
	"look":  "board",
	"field": "board",

	// Undo
	"u":    "undo",
	"back": "undo",

	// Opening hand
	"k":        "keep",
	"mulligan": "redraw",
	"swap":     "redraw",

	// End turn
	"e":    "end",
	"done": "end",
	"pass": "end",
	"go":   "end",
}

var fillers = map[string]bool{
	"the": true, "a": true, "an": true,
	"at": true, "on": true, "to": true, "in": true,
	"line": true, "row": true,
}

// Parse converts a raw command string into a Command.
func Parse(input string) Command {
	cmd := Command{Line: -1, Row: -1}
	input = strings.TrimSpace(input)
	if input == "" {
		return cmd
	}

	words := strings.Fields(strings.ToLower(strings.ReplaceAll(input, ",", " ")))

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}
	cmd.Verb = words[0]
	rest := stripFillers(words[1:])

	if cmd.Verb == "play" {
		rest = takeCell(&cmd, rest)
	}
	cmd.Object = strings.Join(rest, " ")
	return cmd
}

// expandMultiWordVerbs handles "end turn", "show hand" and the like.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "end", "finish":
		if words[1] == "turn" || words[1] == "round" {
			return append([]string{"end"}, words[2:]...)
		}
	case "show", "view":
		if words[1] == "hand" || words[1] == "board" {
			return words[1:]
		}
	case "burn":
		if len(words) > 2 && words[1] == "for" && words[2] == "mana" {
			return append([]string{"burn"}, words[3:]...)
		}
	}

	return words
}

// stripFillers removes articles and positional words from the word list.
func stripFillers(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !fillers[w] {
			result = append(result, w)
		}
	}
	return result
}

// takeCell pulls a trailing "<line> <row>" pair (1-based) off words. Out of
// range numbers are still taken so the caller can report them.
func takeCell(cmd *Command, words []string) []string {
	n := len(words)
	if n < 2 {
		return words
	}
	line, err1 := strconv.Atoi(words[n-2])
	row, err2 := strconv.Atoi(words[n-1])
	if err1 != nil || err2 != nil {
		return words
	}
	cmd.Line, cmd.Row = line-1, row-1
	return words[:n-2]
}
