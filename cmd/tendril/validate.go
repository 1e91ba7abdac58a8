package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tendril"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check the script for consistency",
	Long:  `Crawls the script from its entry node and reports broken branch targets and unreachable nodes.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			repoPath = args[0]
		}
		script, _ := cmd.Flags().GetString("script")
		entry, _ := cmd.Flags().GetString("entry")

		engine, err := tendril.New(repoPath,
			tendril.WithScript(script),
			tendril.WithEntry(entry),
		)
		if err != nil {
			return fmt.Errorf("error initializing tendril: %w", err)
		}

		report, err := engine.Validate()
		if err != nil {
			return err
		}

		fmt.Printf("Checked %d nodes from entry %q.\n", report.Nodes, report.Entry)
		for _, title := range report.Unreachable {
			fmt.Printf("Warning: node %q is unreachable from the entry\n", title)
		}
		if err := report.Err(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Println("Script is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().String("script", "", "Script document to validate when the repository holds several")
	validateCmd.Flags().String("entry", "", "Node to crawl from (default: the script's declared entry)")
}
