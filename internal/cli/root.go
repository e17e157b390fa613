// Package cli implements the GamePilot command-line interface using Cobra.
// serve runs the HTTP daemon; snapshot, recommend and coach run the engine
// offline against JSON files; moods reads the stored history.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gamepilot",
	Short: "GamePilot: persona-driven game recommendations",
	Long: `GamePilot turns play telemetry and self-reported moods into a player
persona, and uses it to pick the next game from a library.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// version is recorded by Execute for commands that report it.
var version = "dev"

// Execute runs the root command. Called from main.go.
func Execute(v string) {
	version = v
	rootCmd.Version = v

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
