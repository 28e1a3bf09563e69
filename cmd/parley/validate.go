package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parleybot/parley"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the bot definition for consistency",
	Long:  `Loads the bot definition and reports unknown entity handlers, invalid actions, empty prompts and bad recognizer patterns without starting a conversation.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		if len(args) > 0 {
			configPath = args[0]
		}

		if _, err := parley.Load(configPath); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Bot definition is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
