package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/internal/cli"
	"github.com/aretw0/tendril/internal/config"
	"github.com/aretw0/tendril/internal/presentation/graph"
	"github.com/aretw0/tendril/pkg/dialogue"
)

var graphCmd = &cobra.Command{
	Use:   "graph [dir]",
	Short: "Export the script graph visualization",
	Long: `Inspects the script and outputs a Mermaid diagram (graph TD) of the
branch structure. With --slot, the nodes visited in that save render shaded.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			repoPath = args[0]
		}
		script, _ := cmd.Flags().GetString("script")
		slot, _ := cmd.Flags().GetString("slot")

		engine, err := tendril.New(repoPath, tendril.WithScript(script))
		if err != nil {
			return fmt.Errorf("error initializing tendril: %w", err)
		}

		var overlay *graph.Overlay
		if slot != "" {
			state, err := loadSlotState(cmd, repoPath, slot)
			if err != nil {
				return err
			}
			overlay = &graph.Overlay{}
			for title := range state.Visited {
				overlay.Visited = append(overlay.Visited, title)
			}
		}

		output, err := graph.GenerateMermaid(engine.Script(), engine.Entry(), overlay)
		if err != nil {
			return err
		}
		fmt.Print(output)
		return nil
	},
}

func loadSlotState(cmd *cobra.Command, baseDir, slot string) (dialogue.PersistedState, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return dialogue.PersistedState{}, err
	}
	store, closeStore, err := cli.OpenStore(cfg.Store, baseDir)
	if err != nil {
		return dialogue.PersistedState{}, err
	}
	defer func() { _ = closeStore() }()

	payload, err := store.Load(cmd.Context(), slot)
	if err != nil {
		return dialogue.PersistedState{}, fmt.Errorf("error loading slot %q: %w", slot, err)
	}
	return dialogue.ParsePersistedState(payload)
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("script", "", "Script document to graph when the repository holds several")
	graphCmd.Flags().String("slot", "", "Save slot whose visited nodes overlay the graph")
}
