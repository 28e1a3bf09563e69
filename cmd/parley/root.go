package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Parley is a dialog orchestration engine for goal-directed chatbots",
	Long:  `Parley drives multi-turn conversations toward structured information collection and fulfillment, defined by a single YAML bot definition.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "bot.yaml", "Path to the bot definition")
}
