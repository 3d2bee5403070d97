package loader

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/Fedya1234/CardBattle/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoad_MinimalGame(t *testing.T) {
	defs, err := Load("testdata/minimal", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if defs.Game.Title != "Minimal" {
		t.Errorf("title = %q, want %q", defs.Game.Title, "Minimal")
	}
	if len(defs.Heroes) != 1 || len(defs.Units) != 1 || len(defs.Cards) != 1 {
		t.Errorf("counts: heroes=%d units=%d cards=%d", len(defs.Heroes), len(defs.Units), len(defs.Cards))
	}
	hero := defs.Heroes["hero"]
	if len(hero.HealthByLevel) != 1 || hero.HealthByLevel[0] != 10 {
		t.Errorf("hero health = %v, want [10]", hero.HealthByLevel)
	}
	if len(defs.Passives) != 0 {
		t.Errorf("expected no passives, got %d", len(defs.Passives))
	}
}

func TestLoad_FullGame(t *testing.T) {
	defs, err := Load("testdata/full", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	g := defs.Game
	if g.Author != "Tester" || g.Version != "2.0" || g.Intro != "Fight!" {
		t.Errorf("game metadata = %+v", g)
	}
	if g.StartMana != 3 || g.MaxMana != 6 || g.HandSize != 5 {
		t.Errorf("game tuning = %+v", g)
	}

	// Hero levels.
	if got := defs.Heroes["knight"].HealthByLevel; len(got) != 2 || got[1] != 25 {
		t.Errorf("knight health = %v", got)
	}

	// Unit levels and skills.
	footman := defs.Units["footman"]
	if len(footman.Levels) != 2 {
		t.Fatalf("footman levels = %d, want 2", len(footman.Levels))
	}
	if footman.Levels[0].Skills == nil || len(footman.Levels[0].Skills) != 0 {
		t.Errorf("level 1 skills = %v, want empty non-nil", footman.Levels[0].Skills)
	}
	if lvl2 := footman.Levels[1]; lvl2.Health != 4 || lvl2.Damage != 2 || lvl2.Skills[0] != types.SkillArmor {
		t.Errorf("level 2 = %+v", lvl2)
	}

	// Cards.
	fc := defs.Cards["footman_card"]
	if fc.Kind != types.CardUnit || fc.Unit != "footman" || fc.ManaCost != 1 || fc.Text != "Holds the line." {
		t.Errorf("footman_card = %+v", fc)
	}
	fb := defs.Cards["fireball"]
	if fb.Kind != types.CardSpell || fb.Spell != types.SpellDamage || fb.Amount != 0 {
		t.Errorf("fireball = %+v", fb)
	}
	if z := defs.Cards["zap"]; z.Amount != 2 {
		t.Errorf("zap amount = %d, want 2", z.Amount)
	}
	if mend := defs.Cards["mend"]; mend.Spell != types.SpellHeal || mend.Amount != 4 {
		t.Errorf("mend = %+v", mend)
	}
	if bl := defs.Cards["bloodlust"]; bl.Spell != types.SpellGrantSkill || bl.Skill != types.SkillVampire {
		t.Errorf("bloodlust = %+v", bl)
	}

	// Deck entries in both notations.
	deck, ok := defs.Decks["starter"]
	if !ok {
		t.Fatal("starter deck not found")
	}
	if deck.Save.Hero != "knight" || deck.Save.Level != 2 {
		t.Errorf("deck hero = %q lv%d", deck.Save.Hero, deck.Save.Level)
	}
	want := []types.CardSave{
		{ID: "footman_card", Level: 1, Count: 4},
		{ID: "cleric_card", Level: 1, Count: 2},
		{ID: "footman_card", Level: 2, Count: 1},
		{ID: "fireball", Level: 1, Count: 1},
	}
	if len(deck.Save.Cards) != len(want) {
		t.Fatalf("deck entries = %v", deck.Save.Cards)
	}
	for i := range want {
		if deck.Save.Cards[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, deck.Save.Cards[i], want[i])
		}
	}
}

func TestLoad_Passives(t *testing.T) {
	defs, err := Load("testdata/full", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(defs.Passives) != 2 {
		t.Fatalf("passives = %d, want 2", len(defs.Passives))
	}

	thorns := defs.Passives[0]
	if thorns.ID != "thorns" || thorns.Phase != types.PhaseNegative || thorns.Effect != "damage" || thorns.Amount != 1 {
		t.Errorf("thorns = %+v", thorns)
	}
	if len(thorns.Conditions) != 2 {
		t.Fatalf("thorns conditions = %d, want 2", len(thorns.Conditions))
	}
	if c := thorns.Conditions[0]; c.Type != "row_is" || c.Params["row"] != 0 {
		t.Errorf("first condition = %+v", c)
	}
	if c := thorns.Conditions[1]; c.Type != "not" || c.Inner == nil || c.Inner.Type != "line_is" || c.Inner.Params["line"] != 1 {
		t.Errorf("second condition = %+v", c)
	}

	// Phase defaults to passive.
	heal := defs.Passives[1]
	if heal.Phase != types.PhasePassive || heal.Effect != "heal" || heal.Amount != 2 {
		t.Errorf("end_turn_heal = %+v", heal)
	}
	if c := heal.Conditions[2]; c.Type != "has_skill" || c.Params["skill"] != "anti_magic" {
		t.Errorf("has_skill condition = %+v", c)
	}
}

func TestLoad_InvalidRefs_Fails(t *testing.T) {
	_, err := Load("testdata/invalid_refs", nil)
	if err == nil {
		t.Fatal("expected error for invalid references")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	assertContains(t, ve.Errors, "undefined unit")
	assertContains(t, ve.Errors, "unknown skill")
	assertContains(t, ve.Errors, "grants unknown skill")
	assertContains(t, ve.Errors, "undefined hero")
	assertContains(t, ve.Errors, "undefined card")
}

func TestLoad_DuplicateIDs_Fails(t *testing.T) {
	_, err := Load("testdata/duplicate_ids", nil)
	if err == nil {
		t.Fatal("expected error for duplicate ids")
	}
	if !strings.Contains(err.Error(), `duplicate unit "footman"`) {
		t.Errorf("error = %q, expected duplicate unit", err.Error())
	}
}

func TestLoad_BadLuaSyntax_Fails(t *testing.T) {
	_, err := Load("testdata/bad_lua", nil)
	if err == nil {
		t.Fatal("expected error for bad Lua syntax")
	}
	if !strings.Contains(err.Error(), "executing game.lua") {
		t.Errorf("error = %q, expected file name", err.Error())
	}
}

func TestLoad_NoGameDef_Fails(t *testing.T) {
	_, err := Load("testdata/no_game", nil)
	if err == nil {
		t.Fatal("expected error for missing Game{} definition")
	}
	if !strings.Contains(err.Error(), "no Game{} definition") {
		t.Errorf("error = %q, expected 'no Game{} definition'", err.Error())
	}
}

func TestLoad_MissingDir_Fails(t *testing.T) {
	if _, err := Load("testdata/does_not_exist", nil); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestLoad_EmptyDir_Fails(t *testing.T) {
	_, err := Load(t.TempDir(), nil)
	if err == nil || !strings.Contains(err.Error(), "no .lua files") {
		t.Fatalf("err = %v, expected 'no .lua files'", err)
	}
}

func TestLoad_WarningsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	if _, err := Load("testdata/minimal", zap.New(core)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	entries := logs.FilterMessage("content warning").All()
	if len(entries) == 0 {
		t.Fatal("expected a warning for content without decks")
	}
	if detail := entries[0].ContextMap()["detail"]; !strings.Contains(detail.(string), "no decks") {
		t.Errorf("detail = %v", detail)
	}
}

func TestLoad_SandboxEnforced(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	for _, code := range []string{
		`os.execute("echo pwned")`,
		`io.open("/etc/passwd")`,
		`dofile("x.lua")`,
		`math.randomseed(1)`,
	} {
		if err := L.DoString(code); err == nil {
			t.Errorf("expected sandbox to block %s", code)
		}
	}
}

func TestLoad_ShippedContent(t *testing.T) {
	defs, err := Load("../content", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(defs.Decks) < 2 {
		t.Errorf("expected at least two decks, got %d", len(defs.Decks))
	}
	for id, deck := range defs.Decks {
		if _, ok := defs.Heroes[deck.Save.Hero]; !ok {
			t.Errorf("deck %q hero %q missing", id, deck.Save.Hero)
		}
	}
}

func TestContentFiles_Ordering(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"units.lua", "game.lua", "cards.lua", "heroes.lua", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "extra.lua"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := contentFiles(dir)
	if err != nil {
		t.Fatalf("contentFiles: %v", err)
	}
	want := []string{"game.lua", "cards.lua", "heroes.lua", "units.lua"}
	if !slices.Equal(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func assertContains(t *testing.T, msgs []string, substr string) {
	t.Helper()
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return
		}
	}
	t.Errorf("expected a message containing %q, got %v", substr, msgs)
}
