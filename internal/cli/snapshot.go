package cli

import (
	"github.com/spf13/cobra"

	"github.com/gamepilot/gamepilot/internal/app/persona"
	"github.com/gamepilot/gamepilot/internal/domain"
)

func init() {
	snapshotCmd.Flags().StringVar(&snapshotSignals, "signals", "", "Player signals JSON file (- for stdin)")
	snapshotCmd.Flags().StringVar(&snapshotMood, "mood", "", "Current mood id (e.g. cozy)")
	snapshotCmd.Flags().IntVar(&snapshotIntensity, "intensity", 5, "Mood intensity 1-10")
	_ = snapshotCmd.MarkFlagRequired("signals")
	rootCmd.AddCommand(snapshotCmd)
}

var (
	snapshotSignals   string
	snapshotMood      string
	snapshotIntensity int
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Build a persona snapshot from a signals file",
	RunE:  runSnapshot,
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	var in domain.SignalsInput
	if err := readJSONFile(snapshotSignals, &in); err != nil {
		return err
	}

	snap, err := persona.BuildPersonaSnapshot(persona.SnapshotInput{
		Signals:   &in,
		MoodEntry: moodFromFlags(snapshotMood, snapshotIntensity),
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), snap)
}
