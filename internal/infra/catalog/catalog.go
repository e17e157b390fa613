// Package catalog provides the built-in starter game catalog. It is the
// candidate pool used when a user has not uploaded a library of their own,
// and is seeded so every mood, archetype pairing and session length has at
// least one game to match.
package catalog

import (
	"strings"

	"github.com/gamepilot/gamepilot/internal/domain"
)

// Catalog is the built-in list of starter games.
var Catalog = []domain.CandidateGame{
	{
		ID:                 "starter-hollow-vale",
		Title:              "Hollow Vale",
		Genres:             []string{"RPG", "Adventure"},
		MoodTags:           []string{"story", "exploratory", "focused"},
		PlaystyleTags:      []string{"exploration", "completionist"},
		Difficulty:         domain.DifficultyNormal,
		SessionSuitability: domain.SessionLong,
		Popularity:         88,
	},
	{
		ID:                 "starter-ember-pit",
		Title:              "Ember Pit",
		Genres:             []string{"Action", "Roguelike"},
		MoodTags:           []string{"energetic", "competitive", "focused"},
		PlaystyleTags:      []string{"achiever", "hardcore"},
		Difficulty:         domain.DifficultyBrutal,
		SessionSuitability: domain.SessionShort,
		Popularity:         81,
	},
	{
		ID:                 "starter-meadow-row",
		Title:              "Meadow Row",
		Genres:             []string{"Simulation", "Farming"},
		MoodTags:           []string{"relaxed", "cozy", "chill"},
		PlaystyleTags:      []string{"casual", "progression", "creative"},
		Difficulty:         domain.DifficultyRelaxed,
		SessionSuitability: domain.SessionFlexible,
		Popularity:         92,
	},
	{
		ID:                 "starter-crownfall",
		Title:              "Crownfall",
		Genres:             []string{"Strategy"},
		MoodTags:           []string{"focused", "competitive"},
		PlaystyleTags:      []string{"strategic", "tactical"},
		Difficulty:         domain.DifficultyHard,
		SessionSuitability: domain.SessionLong,
		Popularity:         74,
	},
	{
		ID:                 "starter-party-orbit",
		Title:              "Party Orbit",
		Genres:             []string{"Party"},
		MoodTags:           []string{"social", "energetic"},
		PlaystyleTags:      []string{"social", "casual", "multiplayer"},
		Difficulty:         domain.DifficultyRelaxed,
		SessionSuitability: domain.SessionShort,
		Popularity:         79,
	},
	{
		ID:                 "starter-arena-nine",
		Title:              "Arena Nine",
		Genres:             []string{"Shooter"},
		MoodTags:           []string{"competitive", "energetic"},
		PlaystyleTags:      []string{"competitive", "pvp", "multiplayer"},
		Difficulty:         domain.DifficultyHard,
		SessionSuitability: domain.SessionMedium,
		Popularity:         90,
	},
	{
		ID:                 "starter-blockwright",
		Title:              "Blockwright",
		Genres:             []string{"Sandbox"},
		MoodTags:           []string{"creative", "chill"},
		PlaystyleTags:      []string{"creative", "sandbox", "coop"},
		Difficulty:         domain.DifficultyRelaxed,
		SessionSuitability: domain.SessionFlexible,
		Popularity:         95,
	},
	{
		ID:                 "starter-tidewatch",
		Title:              "Tidewatch Co-op",
		Genres:             []string{"Survival"},
		MoodTags:           []string{"social", "exploratory"},
		PlaystyleTags:      []string{"coop", "exploration", "open-world"},
		Difficulty:         domain.DifficultyNormal,
		SessionSuitability: domain.SessionMedium,
		Popularity:         70,
	},
	{
		ID:                 "starter-pixel-arcade",
		Title:              "Pixel Arcade Classics",
		Genres:             []string{"Arcade"},
		MoodTags:           []string{"nostalgic", "chill"},
		PlaystyleTags:      []string{"casual"},
		Difficulty:         domain.DifficultyNormal,
		SessionSuitability: domain.SessionShort,
		Popularity:         63,
	},
	{
		ID:                 "starter-quiet-lantern",
		Title:              "Quiet Lantern",
		Genres:             []string{"Puzzle", "Adventure"},
		MoodTags:           []string{"story", "relaxed", "cozy"},
		PlaystyleTags:      []string{"puzzle", "immersive"},
		Difficulty:         domain.DifficultyNormal,
		SessionSuitability: domain.SessionMedium,
		Popularity:         68,
	},
}

// Games returns a copy of the catalog safe for callers to modify.
func Games() []domain.CandidateGame {
	out := make([]domain.CandidateGame, len(Catalog))
	copy(out, Catalog)
	return out
}

// Lookup finds a game by id or case-insensitive title.
// Returns nil if not found.
func Lookup(key string) *domain.CandidateGame {
	for i := range Catalog {
		if Catalog[i].ID == key || strings.EqualFold(Catalog[i].Title, key) {
			return &Catalog[i]
		}
	}
	return nil
}
