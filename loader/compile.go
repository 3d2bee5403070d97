// Package loader loads Lua card content into Go structs at startup.
// The Lua VM is discarded after loading; nothing runs Lua during a match.
package loader

import (
	"fmt"

	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
	lua "github.com/yuin/gopher-lua"
)

// rawDef holds a constructor table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
}

// rawCard is a card table tagged with the constructor that produced it.
type rawCard struct {
	rawDef
	kind string
}

var phaseNames = map[string]types.Phase{
	"positive": types.PhasePositive,
	"negative": types.PhaseNegative,
	"passive":  types.PhasePassive,
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getIntDefault returns an int field, or def when the field is absent.
func getIntDefault(tbl *lua.LTable, key string, def int) int {
	if tbl.RawGetString(key) == lua.LNil {
		return def
	}
	return getInt(tbl, key)
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// stringList reads the array part of tbl as strings, skipping other values.
func stringList(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Heroes: map[string]types.HeroDef{},
		Units:  map[string]types.UnitDef{},
		Cards:  map[string]types.CardDef{},
		Decks:  map[string]types.DeckDef{},
	}

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Game = compileGame(coll.game)

	for _, raw := range coll.heroes {
		if _, dup := defs.Heroes[raw.id]; dup {
			return nil, fmt.Errorf("duplicate hero %q", raw.id)
		}
		defs.Heroes[raw.id] = compileHero(raw)
	}

	for _, raw := range coll.units {
		if _, dup := defs.Units[raw.id]; dup {
			return nil, fmt.Errorf("duplicate unit %q", raw.id)
		}
		defs.Units[raw.id] = compileUnit(raw)
	}

	for _, raw := range coll.cards {
		if _, dup := defs.Cards[raw.id]; dup {
			return nil, fmt.Errorf("duplicate card %q", raw.id)
		}
		defs.Cards[raw.id] = compileCard(raw)
	}

	for _, raw := range coll.decks {
		if _, dup := defs.Decks[raw.id]; dup {
			return nil, fmt.Errorf("duplicate deck %q", raw.id)
		}
		deck, err := compileDeck(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling deck %s: %w", raw.id, err)
		}
		defs.Decks[raw.id] = deck
	}

	seen := map[string]bool{}
	for _, raw := range coll.passives {
		if seen[raw.id] {
			return nil, fmt.Errorf("duplicate passive %q", raw.id)
		}
		seen[raw.id] = true
		rule, err := compilePassive(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling passive %s: %w", raw.id, err)
		}
		defs.Passives = append(defs.Passives, rule)
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:     getString(tbl, "title"),
		Author:    getString(tbl, "author"),
		Version:   getString(tbl, "version"),
		Intro:     getString(tbl, "intro"),
		StartMana: getInt(tbl, "start_mana"),
		MaxMana:   getInt(tbl, "max_mana"),
		HandSize:  getInt(tbl, "hand_size"),
	}
}

// compileHero accepts health as a per-level list or a single number.
func compileHero(raw rawDef) types.HeroDef {
	hero := types.HeroDef{
		ID:   raw.id,
		Name: getString(raw.table, "name"),
	}
	switch h := raw.table.RawGetString("health").(type) {
	case lua.LNumber:
		hero.HealthByLevel = []int{int(h)}
	case *lua.LTable:
		for i := 1; i <= h.MaxN(); i++ {
			if n, ok := h.RawGetInt(i).(lua.LNumber); ok {
				hero.HealthByLevel = append(hero.HealthByLevel, int(n))
			}
		}
	}
	return hero
}

func compileUnit(raw rawDef) types.UnitDef {
	unit := types.UnitDef{
		ID:   raw.id,
		Name: getString(raw.table, "name"),
	}
	levels := getTable(raw.table, "levels")
	if levels == nil {
		return unit
	}
	for i := 1; i <= levels.MaxN(); i++ {
		lvl, ok := levels.RawGetInt(i).(*lua.LTable)
		if !ok {
			continue
		}
		st := types.UnitStats{
			Health: getInt(lvl, "health"),
			Damage: getInt(lvl, "damage"),
			Skills: []types.SkillID{},
		}
		for _, s := range stringList(getTable(lvl, "skills")) {
			st.Skills = append(st.Skills, types.SkillID(s))
		}
		unit.Levels = append(unit.Levels, st)
	}
	return unit
}

func compileCard(raw rawCard) types.CardDef {
	tbl := raw.table
	card := types.CardDef{
		ID:       raw.id,
		Name:     getString(tbl, "name"),
		ManaCost: getInt(tbl, "cost"),
		Text:     getString(tbl, "text"),
	}
	if raw.kind == "unit" {
		card.Kind = types.CardUnit
		card.Unit = getString(tbl, "unit")
		return card
	}

	card.Kind = types.CardSpell
	if eff := getTable(tbl, "effect"); eff != nil {
		card.Spell = types.SpellKind(getString(eff, "type"))
		card.Amount = getInt(eff, "amount")
		card.Skill = types.SkillID(getString(eff, "skill"))
	}
	return card
}

// compileDeck reads entries written either as { "id", count, level = n }
// or as { id = "id", count = n, level = n }.
func compileDeck(raw rawDef) (types.DeckDef, error) {
	deck := types.DeckDef{
		ID: raw.id,
		Save: types.PlayerSave{
			Hero:  getString(raw.table, "hero"),
			Level: getIntDefault(raw.table, "level", 1),
		},
	}
	cards := getTable(raw.table, "cards")
	if cards == nil {
		return deck, nil
	}
	for i := 1; i <= cards.MaxN(); i++ {
		entry, ok := cards.RawGetInt(i).(*lua.LTable)
		if !ok {
			return deck, fmt.Errorf("entry %d is not a table", i)
		}
		cs := types.CardSave{
			ID:    getString(entry, "id"),
			Count: getIntDefault(entry, "count", 1),
			Level: getIntDefault(entry, "level", 1),
		}
		if s, ok := entry.RawGetInt(1).(lua.LString); ok {
			cs.ID = string(s)
		}
		if n, ok := entry.RawGetInt(2).(lua.LNumber); ok {
			cs.Count = int(n)
		}
		deck.Save.Cards = append(deck.Save.Cards, cs)
	}
	return deck, nil
}

func compilePassive(raw rawDef) (types.PassiveRule, error) {
	tbl := raw.table
	rule := types.PassiveRule{
		ID:    raw.id,
		Skill: types.SkillID(getString(tbl, "skill")),
	}

	phase := getString(tbl, "phase")
	if phase == "" {
		phase = "passive"
	}
	p, ok := phaseNames[phase]
	if !ok {
		return rule, fmt.Errorf("unknown phase %q", phase)
	}
	rule.Phase = p

	if conds := getTable(tbl, "conditions"); conds != nil {
		rule.Conditions = compileConditions(conds)
	}
	if eff := getTable(tbl, "effect"); eff != nil {
		rule.Effect = getString(eff, "type")
		rule.Amount = getInt(eff, "amount")
	}
	return rule, nil
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	for i := 1; i <= tbl.MaxN(); i++ {
		if condTbl, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			conditions = append(conditions, compileCondition(condTbl))
		}
	}
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")

	if condType == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			return types.Condition{Type: "not", Inner: &inner}
		}
	}

	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
			params[string(ks)] = toGoValue(v)
		}
	})
	return types.Condition{Type: condType, Params: params}
}
