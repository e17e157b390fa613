package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamepilot/gamepilot/internal/app/persona"
	"github.com/gamepilot/gamepilot/internal/app/recommend"
	"github.com/gamepilot/gamepilot/internal/domain"
)

func init() {
	recommendCmd.Flags().StringVar(&recSignals, "signals", "", "Player signals JSON file (- for stdin)")
	recommendCmd.Flags().StringVar(&recLibrary, "library", "", "Candidate games JSON file (default: starter catalog)")
	recommendCmd.Flags().StringVar(&recMood, "mood", "", "Current mood id (e.g. cozy)")
	recommendCmd.Flags().IntVar(&recIntensity, "intensity", 5, "Mood intensity 1-10")
	recommendCmd.Flags().IntVar(&recRefresh, "refresh", 0, "Pick the n-th best game instead of the best")
	recommendCmd.Flags().BoolVar(&recJSON, "json", false, "Print the full recommendation as JSON")
	_ = recommendCmd.MarkFlagRequired("signals")
	rootCmd.AddCommand(recommendCmd)
}

var (
	recSignals   string
	recLibrary   string
	recMood      string
	recIntensity int
	recRefresh   int
	recJSON      bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend the next game for a player",
	RunE:  runRecommend,
}

func runRecommend(cmd *cobra.Command, args []string) error {
	var in domain.SignalsInput
	if err := readJSONFile(recSignals, &in); err != nil {
		return err
	}
	signals, err := persona.ValidateSignals(&in)
	if err != nil {
		return err
	}
	games, err := loadGames(recLibrary)
	if err != nil {
		return err
	}

	snap, err := persona.BuildPersonaSnapshot(persona.SnapshotInput{
		Signals:   &in,
		MoodEntry: moodFromFlags(recMood, recIntensity),
	})
	if err != nil {
		return err
	}

	rec, err := recommend.NewScorer().Recommend(&snap, games, &signals, recRefresh)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if recJSON {
		return printJSON(out, rec)
	}
	fmt.Fprintf(out, "Persona:  %s\n", snap.Narrative.Summary)
	fmt.Fprintf(out, "Play:     %s (%s)\n", rec.Game.Title, rec.Game.ID)
	fmt.Fprintf(out, "Score:    %d\n", rec.Score)
	fmt.Fprintf(out, "Why:      %s\n", rec.Explanation)
	return nil
}
