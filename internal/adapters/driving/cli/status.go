package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report drift between the directory and the index",
	Long: `Compares the document directory against the record of the last
indexed run and reports what a sync would do, without changing
anything.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if synchroniser == nil {
		return errors.New("synchroniser not configured")
	}

	drift, err := synchroniser.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}

	if drift.IndexExists {
		cmd.Printf("Index: present\n")
	} else {
		cmd.Printf("Index: missing\n")
	}
	cmd.Printf("Directory: %d eligible file(s)\n", drift.CurrentFiles)
	cmd.Printf("Recorded:  %d file(s)\n", drift.RecordedFiles)

	for _, name := range drift.Added {
		cmd.Printf("  + %s\n", name)
	}
	for _, name := range drift.Removed {
		cmd.Printf("  - %s\n", name)
	}

	if drift.NeedsRebuild {
		cmd.Println("Next sync will rebuild the index.")
	} else {
		cmd.Println("Index is up to date.")
	}

	return nil
}
