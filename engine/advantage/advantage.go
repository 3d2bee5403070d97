// Package advantage scores how far a game state favors player 0. The score is
// diagnostic only and never feeds back into resolution.
package advantage

import (
	"fmt"

	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

// Weights of each term in the score.
const (
	heroWeight  = 0.4
	unitWeight  = 0.1
	powerWeight = 0.3
	handWeight  = 0.05
	manaWeight  = 0.05

	heroScale = 20.0
)

var skillBonus = map[types.SkillID]int{
	types.SkillDoubleDamage: 3,
	types.SkillFirstHit:     2,
	types.SkillVampire:      2,
	types.SkillAntiMagic:    2,
	types.SkillArmor:        1,
}

// Evaluate returns a score in [-1, 1]; positive favors player 0. It does not
// modify s.
func Evaluate(s *types.GameState) float64 {
	p0, p1 := &s.Players[0], &s.Players[1]

	v := heroWeight * float64(p0.Hero.Health-p1.Hero.Health) / heroScale
	v += unitWeight * float64(state.LivingUnits(s, 0)-state.LivingUnits(s, 1))

	pow0, pow1 := Power(&p0.Board), Power(&p1.Board)
	if pow0+pow1 > 0 {
		v += powerWeight * float64(pow0-pow1) / float64(pow0+pow1)
	}

	v += handWeight * float64(len(p0.Cards.Hand)-len(p1.Cards.Hand))
	v += manaWeight * float64(p0.Hero.Mana-p1.Hero.Mana)

	return min(max(v, -1), 1)
}

// ForPlayer returns Evaluate from player's point of view.
func ForPlayer(s *types.GameState, player int) float64 {
	if player == 1 {
		return -Evaluate(s)
	}
	return Evaluate(s)
}

// Power sums health, damage and skill bonuses of the living units on b.
func Power(b *types.Board) int {
	total := 0
	for line := 0; line < types.Lines; line++ {
		for row := 0; row < types.Rows; row++ {
			u := b[line][row].Unit
			if !state.Alive(u) {
				continue
			}
			total += u.Health + u.Damage
			for _, sk := range u.Skills {
				total += skillBonus[sk]
			}
		}
	}
	return total
}

// Describe renders a score as a one-line summary.
func Describe(v float64) string {
	switch {
	case v > 0.5:
		return fmt.Sprintf("Player 1 has a strong advantage (%.2f)", v)
	case v > 0.2:
		return fmt.Sprintf("Player 1 has a slight advantage (%.2f)", v)
	case v < -0.5:
		return fmt.Sprintf("Player 2 has a strong advantage (%.2f)", -v)
	case v < -0.2:
		return fmt.Sprintf("Player 2 has a slight advantage (%.2f)", -v)
	default:
		return fmt.Sprintf("The game is balanced (%.2f)", v)
	}
}
