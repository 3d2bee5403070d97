package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))

	styleOwnUnit    = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	styleEnemyUnit  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	styleEmptyCell  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	styleBoardLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// lineKind selects how a narrative line is drawn.
type lineKind int

const (
	kindNarration lineKind = iota
	kindInput
	kindRound
	kindVerdict
	kindSystem
	kindError
	kindTrace
)

var kindStyles = map[lineKind]lipgloss.Style{
	kindNarration: lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
	kindInput:     lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	kindRound:     lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true),
	kindVerdict:   lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true),
	kindSystem:    lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	kindError:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	kindTrace:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
}

// errorPrefixes open the session's rejection messages.
var errorPrefixes = []string{
	"Not enough mana",
	"There is no cell",
	"you have no",
	"which ",
	"I don't understand",
	"You already burn",
	"Nothing to undo",
	"The match is over",
	"Where?",
	"Play what?",
	"Burn what?",
}

// classifyLine picks the kind of a line of game output.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "--- Round"):
		return kindRound
	case line == "You win!", line == "You lose.", line == "It's a draw.":
		return kindVerdict
	case strings.HasSuffix(line, "is already taken."):
		return kindError
	}
	for _, p := range errorPrefixes {
		if strings.HasPrefix(line, p) {
			return kindError
		}
	}
	return kindNarration
}
