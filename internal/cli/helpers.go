package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gamepilot/gamepilot/internal/app/persona"
	"github.com/gamepilot/gamepilot/internal/domain"
	"github.com/gamepilot/gamepilot/internal/infra/catalog"
)

// readJSONFile decodes the JSON document at path into v. "-" reads stdin.
func readJSONFile(path string, v any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// loadGames reads a library file, or returns the starter catalog when path
// is empty.
func loadGames(path string) ([]domain.CandidateGame, error) {
	if path == "" {
		return catalog.Games(), nil
	}
	var games []domain.CandidateGame
	if err := readJSONFile(path, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// moodFromFlags builds a mood reading from --mood/--intensity. An empty id
// means no mood.
func moodFromFlags(id string, intensity int) *domain.MoodState {
	if id == "" {
		return nil
	}
	m := persona.CreateMoodState(domain.MoodID(id), intensity, time.Now())
	return &m
}
