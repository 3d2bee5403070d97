package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

const (
	cellWidth  = 16
	labelWidth = 7
)

// boardHeight is the number of terminal lines renderBoard produces.
const boardHeight = 2*types.Rows + 2

// renderBoard draws both boards from s, the opponent on top with its front
// row facing the human's across the divider.
func (m Model) renderBoard(s *types.GameState) string {
	human, opp := m.session.Human, m.session.Bot.Player

	header := styleBoardLabel.Width(labelWidth).Render("")
	for line := 0; line < types.Lines; line++ {
		header += styleBoardLabel.Width(cellWidth).Render(fmt.Sprintf("Line %d", line+1))
	}

	rows := []string{header}
	for r := types.Rows - 1; r >= 0; r-- {
		rows = append(rows, m.renderRow(s, opp, r, "Opp", styleEnemyUnit))
	}
	rows = append(rows, styleBoardLabel.Render(strings.Repeat("─", labelWidth+cellWidth*types.Lines)))
	for r := 0; r < types.Rows; r++ {
		rows = append(rows, m.renderRow(s, human, r, "You", styleOwnUnit))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderRow(s *types.GameState, player, row int, who string, unitStyle lipgloss.Style) string {
	cells := []string{styleBoardLabel.Width(labelWidth).Render(fmt.Sprintf("%s r%d", who, row+1))}
	for line := 0; line < types.Lines; line++ {
		cells = append(cells, m.renderCell(s.Players[player].Board[line][row], unitStyle))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m Model) renderCell(p types.BoardPlace, unitStyle lipgloss.Style) string {
	u := p.Unit
	if u == nil || u.Health <= 0 {
		mark := "·"
		if len(p.Dead) > 0 {
			mark = "✝"
		}
		return styleEmptyCell.Width(cellWidth).Render(mark)
	}
	name := m.session.UnitName(u.ID)
	if state.HasMark(&p, types.MarkSummoned) {
		name = "+" + name
	}
	stats := fmt.Sprintf(" %d/%d", u.Health, u.Damage)
	if len(u.Skills) > 0 {
		stats += "*"
	}
	if room := cellWidth - 1 - len(stats); len(name) > room {
		name = name[:room]
	}
	return unitStyle.Width(cellWidth).Render(name + stats)
}
