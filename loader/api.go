package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

// curried registers a constructor used as Name "id" { ... }.
func curried(L *lua.LState, name string, add func(id string, tbl *lua.LTable)) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			add(id, L.CheckTable(1))
			return 0
		}))
		return 1
	}))
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", start_mana = 2, ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.game = tbl
		return 0
	}))

	// Hero "id" { name = "...", health = { 20, 25 } }
	curried(L, "Hero", func(id string, tbl *lua.LTable) {
		coll.heroes = append(coll.heroes, rawDef{id: id, table: tbl})
	})

	// Unit "id" { name = "...", levels = { { health = 2, damage = 1, skills = { "armor" } } } }
	curried(L, "Unit", func(id string, tbl *lua.LTable) {
		coll.units = append(coll.units, rawDef{id: id, table: tbl})
	})

	// UnitCard "id" { unit = "footman", cost = 1 }
	curried(L, "UnitCard", func(id string, tbl *lua.LTable) {
		coll.cards = append(coll.cards, rawCard{rawDef: rawDef{id: id, table: tbl}, kind: "unit"})
	})

	// Spell "id" { cost = 3, effect = Damage(6) }
	curried(L, "Spell", func(id string, tbl *lua.LTable) {
		coll.cards = append(coll.cards, rawCard{rawDef: rawDef{id: id, table: tbl}, kind: "spell"})
	})

	// Deck "id" { hero = "knight", level = 1, cards = { { "footman_card", 4 }, ... } }
	curried(L, "Deck", func(id string, tbl *lua.LTable) {
		coll.decks = append(coll.decks, rawDef{id: id, table: tbl})
	})

	// Passive "id" { skill = "armor", phase = "negative", conditions = { ... }, effect = Damage(1) }
	curried(L, "Passive", func(id string, tbl *lua.LTable) {
		coll.passives = append(coll.passives, rawDef{id: id, table: tbl})
	})
}

func registerConditionHelpers(L *lua.LState) {
	// RowIs(0). Rows count from 0 at the front.
	L.SetGlobal("RowIs", L.NewFunction(func(L *lua.LState) int {
		row := L.CheckNumber(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("row_is"))
		tbl.RawSetString("row", row)
		L.Push(tbl)
		return 1
	}))

	// LineIs(1)
	L.SetGlobal("LineIs", L.NewFunction(func(L *lua.LState) int {
		line := L.CheckNumber(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("line_is"))
		tbl.RawSetString("line", line)
		L.Push(tbl)
		return 1
	}))

	// HasSkill("vampire")
	L.SetGlobal("HasSkill", L.NewFunction(func(L *lua.LState) int {
		skill := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("has_skill"))
		tbl.RawSetString("skill", lua.LString(skill))
		L.Push(tbl)
		return 1
	}))

	// HealthLt(3)
	L.SetGlobal("HealthLt", L.NewFunction(func(L *lua.LState) int {
		value := L.CheckNumber(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("health_lt"))
		tbl.RawSetString("value", value)
		L.Push(tbl)
		return 1
	}))

	// HeroHealthLt(10)
	L.SetGlobal("HeroHealthLt", L.NewFunction(func(L *lua.LState) int {
		value := L.CheckNumber(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("hero_health_lt"))
		tbl.RawSetString("value", value)
		L.Push(tbl)
		return 1
	}))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", inner)
		L.Push(tbl)
		return 1
	}))
}

func registerEffectHelpers(L *lua.LState) {
	// Damage(n). Spells may omit n to deal twice their mana cost.
	L.SetGlobal("Damage", L.NewFunction(func(L *lua.LState) int {
		amount := L.OptNumber(1, 0)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("damage"))
		tbl.RawSetString("amount", amount)
		L.Push(tbl)
		return 1
	}))

	// Heal(n)
	L.SetGlobal("Heal", L.NewFunction(func(L *lua.LState) int {
		amount := L.OptNumber(1, 1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("heal"))
		tbl.RawSetString("amount", amount)
		L.Push(tbl)
		return 1
	}))

	// GrantSkill("vampire")
	L.SetGlobal("GrantSkill", L.NewFunction(func(L *lua.LState) int {
		skill := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("grant_skill"))
		tbl.RawSetString("skill", lua.LString(skill))
		L.Push(tbl)
		return 1
	}))
}
