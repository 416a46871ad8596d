package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/syndexlabs/syndex-cli/internal/core/ports/driving"
)

var syncForce bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise the vector index with the document directory",
	Long: `Scans the document directory and compares it against the record of
the last indexed run. When the directory has changed, or no index
exists yet, every document is re-extracted, chunked, embedded and
written to the vector store. Otherwise the run is a no-op.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&syncForce, "force", "f", false, "rebuild even when the index is up to date")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if synchroniser == nil {
		return errors.New("synchroniser not configured")
	}

	report, err := synchroniser.Run(cmd.Context(), driving.SyncOptions{Force: syncForce})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report *driving.SyncReport) {
	if !report.Rebuilt {
		cmd.Println("Index is up to date.")
		return
	}

	cmd.Printf("Index rebuilt: %d files, %d pages, %d chunks in %s.\n",
		report.Files-report.FailedFiles,
		report.Pages,
		report.Chunks,
		report.Duration.Round(time.Millisecond),
	)
	if report.FailedFiles > 0 {
		cmd.Printf("Warning: %d file(s) could not be processed; see the log.\n",
			report.FailedFiles)
	}
	if report.SkippedEntries > 0 {
		cmd.Printf("Skipped %d unsupported directory entries.\n", report.SkippedEntries)
	}
}
