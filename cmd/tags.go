/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// tagsCmd lists the stored tags with how many bookmarks use them
var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List stored tags by number of linked bookmarks",
	Args:  cobra.NoArgs,
	RunE:  runTags,
}

func init() {
	tagsCmd.Flags().Int("min", 0, "Hide tags linked to fewer bookmarks")
	rootCmd.AddCommand(tagsCmd)
}

func runTags(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	minCount, err := cmd.Flags().GetInt("min")
	if err != nil {
		return fmt.Errorf("failed to read --min: %w", err)
	}

	database, err := openExistingDB(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	counts, err := database.TagCounts()
	if err != nil {
		return err
	}

	for _, tc := range counts {
		if tc.Count < minCount {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%6d  %s\n", tc.Count, tc.Name)
	}
	return nil
}
