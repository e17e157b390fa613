package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gamepilot/gamepilot/internal/daemon"
	"github.com/gamepilot/gamepilot/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the data directory, last daemon start and known users",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	home := daemon.Home()
	db, err := sqlite.Open(home)
	if err != nil {
		return err
	}
	defer db.Close()

	started, err := db.GetMeta("last_started_at")
	if err != nil {
		return err
	}
	if started == "" {
		started = "never"
	} else if ts, err := time.Parse(time.RFC3339, started); err == nil {
		started = ts.Local().Format("2006-01-02 15:04")
	}

	users, err := db.ListUsers()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Home:          %s\n", home)
	fmt.Fprintf(out, "Last started:  %s\n", started)
	fmt.Fprintf(out, "Users:         %d\n", len(users))
	if len(users) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tLAST MOOD\tLOGGED")
	for _, id := range users {
		moods, err := db.RecentMoodEvents(id, 1)
		if err != nil {
			return err
		}
		if len(moods) == 0 {
			fmt.Fprintf(w, "%s\t-\t-\n", id)
			continue
		}
		ev := moods[0]
		fmt.Fprintf(w, "%s\t%s (%d)\t%s\n", id, ev.MoodID, ev.Intensity, ev.Timestamp.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
