package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "cuesheet",
	Short: "Cuesheet fires cues on a virtual timeline that can be played, " +
		"paused, and scrubbed.",
	Long: `Cuesheet fires cues on a virtual timeline that can be played, ` +
		`paused, and scrubbed. The play subcommand drives a demo beat ` +
		`timeline from the terminal, optionally with the monitoring server ` +
		`and fire-history recording enabled.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
