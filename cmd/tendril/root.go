package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tendril",
	Short: "Tendril is a dialogue-tree runtime for games",
	Long:  `Tendril plays branching dialogue scripts: a typewriter line presenter, script commands, option branches and save slots, consumable from a terminal, over HTTP/WebSocket, or by AI agents over MCP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the script repository")
	rootCmd.PersistentFlags().String("config", "", "Path to a tendril config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Write debug logs to stderr")
}
