package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/tendril/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [dir]",
	Short: "Play the dialogue script in a terminal",
	Long:  `Starts the terminal player over the script repository. Interactive by default; --watch reloads on script changes, --json speaks NDJSON for embedding, --autopilot plays unattended.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd, args)
		watchMode, _ := cmd.Flags().GetBool("watch")
		jsonMode := opts.JSON

		if watchMode && jsonMode {
			return fmt.Errorf("--watch and --json cannot be used together")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if watchMode {
			return cli.RunWatch(ctx, opts)
		}
		return cli.RunSession(ctx, opts)
	},
}

func runOptions(cmd *cobra.Command, args []string) cli.RunOptions {
	repoPath, _ := cmd.Flags().GetString("dir")
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		repoPath = args[0]
	}
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	script, _ := cmd.Flags().GetString("script")
	entry, _ := cmd.Flags().GetString("entry")
	slot, _ := cmd.Flags().GetString("slot")
	commands, _ := cmd.Flags().GetString("commands")
	headless, _ := cmd.Flags().GetBool("headless")
	jsonMode, _ := cmd.Flags().GetBool("json")
	autopilot, _ := cmd.Flags().GetBool("autopilot")

	return cli.RunOptions{
		RepoPath:   repoPath,
		ConfigPath: configPath,
		Script:     script,
		Entry:      entry,
		Slot:       slot,
		Commands:   commands,
		Headless:   headless,
		JSON:       jsonMode,
		AutoPilot:  autopilot,
		Debug:      debug,
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("script", "", "Script document to play when the repository holds several")
	runCmd.Flags().String("entry", "", "Node to start from (default: the script's declared entry)")
	runCmd.Flags().String("slot", "", "Save slot to restore on start and autosave to")
	runCmd.Flags().String("commands", "", "Command bridge config mapping script commands to programs (default: <dir>/commands.yaml)")
	runCmd.Flags().Bool("headless", false, "Plain line IO, no banner or raw keys")
	runCmd.Flags().Bool("json", false, "NDJSON input/output for embedding in another process")
	runCmd.Flags().Bool("autopilot", false, "Play unattended, confirming the highlighted option")
	runCmd.Flags().BoolP("watch", "w", false, "Development mode with hot-reload")

	// Bare `tendril` plays the current directory.
	rootCmd.RunE = runCmd.RunE
}
