/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"fmt"
	"log"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentultra/deliciousbackup/internal/core/checkpoint"
)

// statusCmd reports what the last runs left behind
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the checkpoint and what the database holds",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntP("recent", "n", 5, "Number of most recent bookmarks to list")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	recent, err := cmd.Flags().GetInt("recent")
	if err != nil {
		return fmt.Errorf("failed to read --recent: %w", err)
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

	cpPath, err := checkpointPath(cfg)
	if err != nil {
		return err
	}
	last, ok, err := checkpoint.NewFileStore(cpPath).Read()
	if err != nil {
		return fmt.Errorf("failed to read checkpoint: %w", explainCheckpoint(err, cpPath))
	}
	lastRun := "never"
	if ok {
		lastRun = last.Local().Format(time.RFC1123)
	}

	bookmarks, err := database.CountBookmarks()
	if err != nil {
		return err
	}
	tags, err := database.CountTags()
	if err != nil {
		return err
	}
	links, err := database.CountLinks()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Database:\t%s\n", database.Path())
	fmt.Fprintf(w, "Checkpoint:\t%s (%s)\n", lastRun, cpPath)
	fmt.Fprintf(w, "Bookmarks:\t%d\n", bookmarks)
	fmt.Fprintf(w, "Tags:\t%d\n", tags)
	fmt.Fprintf(w, "Links:\t%d\n", links)
	if err := w.Flush(); err != nil {
		return err
	}

	if recent <= 0 || bookmarks == 0 {
		return nil
	}

	latest, err := database.ListBookmarks(recent)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\nMost recent:")
	for _, b := range latest {
		names, err := database.BookmarkTags(b.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s %v\n", b.Created.Format(time.DateOnly), b.Href, names)
	}

	return nil
}
