package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fedya1234/CardBattle/config"
	"github.com/Fedya1234/CardBattle/engine/save"
	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

func deckDefs() *state.Defs {
	return &state.Defs{
		Decks: map[string]types.DeckDef{
			"vanguard":   {ID: "vanguard", Save: types.PlayerSave{Hero: "knight", Level: 1}},
			"blood_pact": {ID: "blood_pact", Save: types.PlayerSave{Hero: "warlock", Level: 1}},
		},
	}
}

func TestPickDecks_Defaults(t *testing.T) {
	names, saves, err := pickDecks(deckDefs(), config.Config{})
	if err != nil {
		t.Fatalf("pickDecks: %v", err)
	}
	if names != [types.Players]string{"blood_pact", "vanguard"} {
		t.Errorf("names = %v", names)
	}
	if saves[0].Hero != "warlock" || saves[1].Hero != "knight" {
		t.Errorf("heroes = %s, %s", saves[0].Hero, saves[1].Hero)
	}
}

func TestPickDecks_SnapshotFile(t *testing.T) {
	data, err := save.SavePlayer(types.PlayerSave{
		Hero:  "lich",
		Level: 2,
		Cards: []types.CardSave{{ID: "bat_card", Level: 1, Count: 8}},
	})
	if err != nil {
		t.Fatalf("SavePlayer: %v", err)
	}
	path := filepath.Join(t.TempDir(), "lich.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	_, saves, err := pickDecks(deckDefs(), config.Config{DeckP0: "vanguard", DeckP1: path})
	if err != nil {
		t.Fatalf("pickDecks: %v", err)
	}
	if saves[0].Hero != "knight" || saves[1].Hero != "lich" || saves[1].Level != 2 {
		t.Errorf("saves = %+v", saves)
	}
}

func TestPickDecks_Errors(t *testing.T) {
	tests := []struct {
		name string
		defs *state.Defs
		cfg  config.Config
		want string
	}{
		{"unknown deck", deckDefs(), config.Config{DeckP0: "dragons"}, `unknown deck "dragons"`},
		{"missing file", deckDefs(), config.Config{DeckP1: "nope.json"}, "player 1"},
		{"no decks", &state.Defs{}, config.Config{}, "no decks defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := pickDecks(tt.defs, tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}
