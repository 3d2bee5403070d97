// Package save implements JSON serialization of match sessions and of the
// player snapshots a match is seeded from.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/Fedya1234/CardBattle/engine/rulerr"
	"github.com/Fedya1234/CardBattle/engine/state"
	"github.com/Fedya1234/CardBattle/types"
)

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version     string                      `json:"version"`
	Game        string                      `json:"game"`
	Round       int                         `json:"round"`
	Players     [types.Players]types.Player `json:"players"`
	Outcome     types.Outcome               `json:"outcome,omitempty"`
	RNGSeed     int64                       `json:"rng_seed"`
	RNGPosition int64                       `json:"rng_position"`
	MatchID     string                      `json:"match_id,omitempty"`
}

// Session is what Save needs from a running match.
type Session struct {
	State       *types.GameState
	Outcome     types.Outcome
	RNGSeed     int64
	RNGPosition int64
	MatchID     string
}

// Save serializes a session to JSON bytes.
func Save(sess Session, defs *state.Defs) ([]byte, error) {
	data := SaveData{
		Version:     defs.Game.Version,
		Game:        defs.Game.Title,
		Round:       sess.State.Round,
		Players:     sess.State.Players,
		Outcome:     sess.Outcome,
		RNGSeed:     sess.RNGSeed,
		RNGPosition: sess.RNGPosition,
		MatchID:     sess.MatchID,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Round < 0 {
		return nil, rulerr.Validation("negative round %d", sd.Round)
	}
	// Ensure slices are never nil after load.
	for p := range sd.Players {
		normalizePlayer(&sd.Players[p])
	}
	return &sd, nil
}

func normalizePlayer(pl *types.Player) {
	if pl.Cards.Deck == nil {
		pl.Cards.Deck = []types.CardLevel{}
	}
	if pl.Cards.Hand == nil {
		pl.Cards.Hand = []types.CardLevel{}
	}
	if pl.Cards.Discard == nil {
		pl.Cards.Discard = []types.CardLevel{}
	}
	for line := range pl.Board {
		for row := range pl.Board[line] {
			place := &pl.Board[line][row]
			if place.Dead == nil {
				place.Dead = []*types.Unit{}
			}
			if place.Marks == nil {
				place.Marks = []string{}
			}
			normalizeUnit(place.Unit)
			for _, u := range place.Dead {
				normalizeUnit(u)
			}
		}
	}
}

func normalizeUnit(u *types.Unit) {
	if u == nil {
		return
	}
	if u.Skills == nil {
		u.Skills = []types.SkillID{}
	}
	if u.Base.Skills == nil {
		u.Base.Skills = []types.SkillID{}
	}
}

// ApplySave applies loaded save data onto a state.
func ApplySave(s *types.GameState, sd *SaveData) {
	s.Players = sd.Players
	s.Round = sd.Round
}

// SavePlayer serializes a player snapshot.
func SavePlayer(ps types.PlayerSave) ([]byte, error) {
	return json.MarshalIndent(ps, "", "  ")
}

// LoadPlayer deserializes and checks a player snapshot.
func LoadPlayer(data []byte) (types.PlayerSave, error) {
	var ps types.PlayerSave
	if err := json.Unmarshal(data, &ps); err != nil {
		return types.PlayerSave{}, fmt.Errorf("decode player save: %w", err)
	}
	if ps.Hero == "" {
		return types.PlayerSave{}, rulerr.Validation("player save has no hero")
	}
	if ps.Level <= 0 {
		ps.Level = 1
	}
	if ps.Cards == nil {
		ps.Cards = []types.CardSave{}
	}
	for i, c := range ps.Cards {
		if c.ID == "" || c.Count <= 0 {
			return types.PlayerSave{}, rulerr.Validation("card entry %d is invalid: %+v", i, c)
		}
		if c.Level <= 0 {
			ps.Cards[i].Level = 1
		}
	}
	return ps, nil
}
