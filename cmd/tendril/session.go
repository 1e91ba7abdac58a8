package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tendril/internal/cli"
	"github.com/aretw0/tendril/internal/config"
	"github.com/aretw0/tendril/pkg/dialogue"
	"github.com/aretw0/tendril/pkg/ports"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage save slots",
	Long:  `List, inspect, and remove save slots in the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List all save slots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store ports.StateStore) error {
			slots, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing slots: %w", err)
			}
			if len(slots) == 0 {
				fmt.Println("No save slots found.")
				return nil
			}
			fmt.Println("Save slots:")
			for _, s := range slots {
				fmt.Println("- " + s)
			}
			return nil
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:     "inspect <slot>",
	Aliases: []string{"show"},
	Short:   "Inspect the state saved in a slot",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store ports.StateStore) error {
			payload, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error loading slot %q: %w", args[0], err)
			}
			state, err := dialogue.ParsePersistedState(payload)
			if err != nil {
				return fmt.Errorf("slot %q does not hold a valid state: %w", args[0], err)
			}
			pretty, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(pretty))
			return nil
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:     "rm <slot>...",
	Aliases: []string{"delete"},
	Short:   "Remove one or more save slots",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store ports.StateStore) error {
			hasError := false
			for _, slot := range args {
				if err := store.Delete(cmd.Context(), slot); err != nil {
					fmt.Printf("Error removing %q: %v\n", slot, err)
					hasError = true
					continue
				}
				fmt.Printf("Removed slot %q\n", slot)
			}
			if hasError {
				os.Exit(1)
			}
			return nil
		})
	},
}

func withStore(cmd *cobra.Command, fn func(ports.StateStore) error) error {
	projectDir, _ := cmd.Flags().GetString("dir")
	if projectDir == "" {
		projectDir = "."
	}
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	store, closeStore, err := cli.OpenStore(cfg.Store, projectDir)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()
	return fn(store)
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}
