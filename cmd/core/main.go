package main

import (
	"os"

	"github.com/modforge/core/cli"
	"github.com/modforge/core/cmd"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"modforge",
		"Entity file editor core for game mods",
	)

	// Add subcommands
	rootCmd.AddCommand(cmd.NewGetCmd())
	rootCmd.AddCommand(cmd.NewSetCmd())
	rootCmd.AddCommand(cmd.NewFmtCmd())
	rootCmd.AddCommand(cmd.NewWatchCmd())
	rootCmd.AddCommand(cmd.NewRecentCmd())
	rootCmd.AddCommand(cmd.NewConfigCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
