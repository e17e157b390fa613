package catalog

import (
	"testing"

	"github.com/gamepilot/gamepilot/internal/domain"
)

func TestCatalog_EntriesAreComplete(t *testing.T) {
	seen := map[string]bool{}
	for _, g := range Catalog {
		if g.ID == "" || g.Title == "" {
			t.Errorf("entry missing id or title: %+v", g)
		}
		if seen[g.ID] {
			t.Errorf("duplicate id %q", g.ID)
		}
		seen[g.ID] = true
		if !g.Difficulty.Valid() {
			t.Errorf("%s: invalid difficulty %q", g.ID, g.Difficulty)
		}
		if len(g.Genres) == 0 || len(g.MoodTags) == 0 {
			t.Errorf("%s: genres and mood tags are required", g.ID)
		}
	}
}

func TestCatalog_CoversMoodVocabulary(t *testing.T) {
	tags := map[string]bool{}
	for _, g := range Catalog {
		for _, tag := range g.MoodTags {
			tags[tag] = true
		}
	}
	for _, m := range domain.MoodVocabulary {
		if !tags[string(m)] {
			t.Errorf("no starter game tagged %q", m)
		}
	}
}

func TestLookup(t *testing.T) {
	if g := Lookup("starter-crownfall"); g == nil || g.Title != "Crownfall" {
		t.Errorf("Lookup by id = %+v", g)
	}
	if g := Lookup("meadow row"); g == nil || g.ID != "starter-meadow-row" {
		t.Errorf("Lookup by title = %+v", g)
	}
	if g := Lookup("missing"); g != nil {
		t.Errorf("Lookup(missing) = %+v, want nil", g)
	}
}

func TestGames_ReturnsCopy(t *testing.T) {
	games := Games()
	games[0].Title = "changed"
	if Catalog[0].Title == "changed" {
		t.Error("Games() must not alias Catalog")
	}
}
