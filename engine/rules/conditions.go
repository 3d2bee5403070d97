// Package rules evaluates passive skill rules against board cells.
package rules

import (
	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

// Cell is the board position a condition is evaluated against.
type Cell struct {
	State  *types.GameState
	Player int
	Line   int
	Row    int
	Unit   *types.Unit
}

// EvalCondition evaluates a single condition against a cell.
func EvalCondition(c types.Condition, cell Cell) bool {
	switch c.Type {
	case "row_is":
		return cell.Row == toInt(c.Params["row"])

	case "line_is":
		return cell.Line == toInt(c.Params["line"])

	case "has_skill":
		skill, _ := c.Params["skill"].(string)
		return state.HasSkill(cell.Unit, types.SkillID(skill))

	case "hero_health_lt":
		value := toInt(c.Params["value"])
		return cell.State.Players[cell.Player].Hero.Health < value

	case "health_lt":
		value := toInt(c.Params["value"])
		return cell.Unit != nil && cell.Unit.Health < value

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, cell)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, cell Cell) bool {
	for _, c := range conditions {
		if !EvalCondition(c, cell) {
			return false
		}
	}
	return true
}

// toInt converts an any value to int, handling float64 from JSON/Lua.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
