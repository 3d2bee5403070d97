package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing the
// round, both heroes and the human's queued move.
func (m Model) renderStatusBar() string {
	sess := m.session
	s := sess.Engine.State
	me, them := s.Players[sess.Human], s.Players[sess.Bot.Player]

	left := fmt.Sprintf(" R%d | You %d hp %d/%d mana | Opp %d hp %d/%d mana",
		s.Round, me.Hero.Health, me.Hero.Mana, me.Hero.MaxMana,
		them.Hero.Health, them.Hero.Mana, them.Hero.MaxMana)

	var right string
	pending := sess.Pending()
	switch {
	case sess.Engine.Over():
		right = fmt.Sprintf("%s ", sess.Engine.Outcome())
	case m.replay != nil:
		right = "Fighting... "
	case sess.Opening():
		right = "Opening hand "
	default:
		right = fmt.Sprintf("Hand %d | Deck %d ", len(me.Cards.Hand), len(me.Cards.Deck))
		queued := len(pending.Placements)
		if pending.Burned != nil {
			queued++
		}
		if queued > 0 {
			candidate := fmt.Sprintf("Queued %d | %s", queued, right)
			if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
				right = candidate
			}
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
