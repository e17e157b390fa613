// Package main is the single-binary entrypoint for GamePilot.
package main

import "github.com/gamepilot/gamepilot/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
