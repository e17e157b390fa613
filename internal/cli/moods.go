package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gamepilot/gamepilot/internal/daemon"
	"github.com/gamepilot/gamepilot/internal/infra/sqlite"
)

func init() {
	moodsCmd.Flags().StringVar(&moodsUser, "user", "", "User id")
	moodsCmd.Flags().IntVar(&moodsLimit, "limit", 20, "Show at most this many entries (0 for all)")
	_ = moodsCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(moodsCmd)
}

var (
	moodsUser  string
	moodsLimit int
)

var moodsCmd = &cobra.Command{
	Use:   "moods",
	Short: "List a user's stored mood history",
	RunE:  runMoods,
}

func runMoods(cmd *cobra.Command, args []string) error {
	db, err := sqlite.Open(daemon.Home())
	if err != nil {
		return err
	}
	defer db.Close()

	events, err := db.RecentMoodEvents(moodsUser, moodsLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintf(out, "No moods logged for %s yet.\n", moodsUser)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tMOOD\tINTENSITY\tTAGS\tSESSION")
	for _, ev := range events {
		session := ""
		if sc := ev.SessionContext; sc != nil {
			session = sc.SessionID
			if sc.IsPreSession {
				session += " (pre)"
			} else if sc.IsPostSession {
				session += " (post)"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			ev.Timestamp.Local().Format("2006-01-02 15:04"),
			ev.MoodID,
			ev.Intensity,
			strings.Join(ev.MoodTags, ","),
			session,
		)
	}
	return w.Flush()
}
