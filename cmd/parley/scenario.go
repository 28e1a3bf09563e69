package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parleybot/parley/internal/cli"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario [files...]",
	Short: "Replay scripted conversations against the bot",
	Long: `Runs each scenario file against the bot definition and reports
pass/fail per scenario. Scenarios assert on recognized intents and reached
checkpoints, so they survive prompt rewording.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")

		if err := cli.RunScenarios(configPath, args, debug); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
	scenarioCmd.Flags().Bool("debug", false, "Enable per-turn debug logging to stderr")
}
