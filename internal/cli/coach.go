package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gamepilot/gamepilot/internal/app/recommend"
	"github.com/gamepilot/gamepilot/internal/domain"
)

func init() {
	coachCmd.Flags().StringVar(&coachProfile, "profile", "", "Emotional profile JSON file (- for stdin)")
	coachCmd.Flags().StringVar(&coachLibrary, "library", "", "Candidate games JSON file (default: starter catalog)")
	coachCmd.Flags().BoolVar(&coachJSON, "json", false, "Print the full result as JSON")
	_ = coachCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(coachCmd)
}

var (
	coachProfile string
	coachLibrary string
	coachJSON    bool
)

var coachCmd = &cobra.Command{
	Use:   "coach",
	Short: "Pick a game for how you feel right now",
	RunE:  runCoach,
}

func runCoach(cmd *cobra.Command, args []string) error {
	var profile domain.EmotionalProfile
	if err := readJSONFile(coachProfile, &profile); err != nil {
		return err
	}
	games, err := loadGames(coachLibrary)
	if err != nil {
		return err
	}

	res, err := recommend.NewCoach().Recommend(profile, games)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if coachJSON {
		return printJSON(out, res)
	}

	fmt.Fprintf(out, "Play: %s\n%s\n\n", res.Primary.Game.Title, res.Explanation)
	if len(res.Alternatives) == 0 {
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALTERNATIVE\tSCORE")
	for _, alt := range res.Alternatives {
		fmt.Fprintf(w, "%s\t%d\n", alt.Game.Title, alt.Score)
	}
	return w.Flush()
}
