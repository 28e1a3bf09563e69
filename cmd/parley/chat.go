package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parleybot/parley/internal/cli"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot interactively",
	Long: `Starts an interactive conversation on stdin/stdout.

With --session the conversation state persists across invocations (pair it
with --redis to share state between machines); --fresh discards a previous
session with the same ID first.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		debug, _ := cmd.Flags().GetBool("debug")
		redisURL, _ := cmd.Flags().GetString("redis")

		err := cli.RunChat(cli.ChatOptions{
			ConfigPath: configPath,
			SessionID:  sessionID,
			Fresh:      fresh,
			Debug:      debug,
			RedisURL:   redisURL,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("session", "s", "", "Session ID to continue (empty for a throwaway session)")
	chatCmd.Flags().Bool("fresh", false, "Discard the named session before starting")
	chatCmd.Flags().Bool("debug", false, "Enable debug logging to stderr")
	chatCmd.Flags().String("redis", "", "Redis URL for session persistence (e.g. redis://localhost:6379/0)")
}
