package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driving"
)

// defaultDebounce coalesces bursts of filesystem events (editors and
// copies touch a file several times) into one sync pass.
const defaultDebounce = 2 * time.Second

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep syncing as the document directory changes",
	Long: `Runs an initial sync, then watches the document directory and
re-syncs after each burst of changes. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", defaultDebounce, "quiet period before re-syncing after a change")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if synchroniser == nil {
		return errors.New("synchroniser not configured")
	}
	if corpusSource == nil {
		return errors.New("corpus source not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := synchroniser.Run(ctx, driving.SyncOptions{})
	if err != nil {
		return fmt.Errorf("initial sync failed: %w", err)
	}
	printReport(cmd, report)

	events, err := corpusSource.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	cmd.Println("Watching for changes. Press Ctrl-C to stop.")

	return watchLoop(ctx, cmd, events)
}

// watchLoop debounces events and runs one sync pass per quiet period.
// Sync passes run serially; events arriving during a pass trigger
// another only after the pass finishes.
func watchLoop(ctx context.Context, cmd *cobra.Command, events <-chan domain.CorpusEvent) error {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			cmd.Println("Stopping.")
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			cmd.Printf("Change detected: %s (%s)\n", event.Name, event.Op)
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(watchDebounce)
			}

		case <-fire:
			timer = nil
			fire = nil
			report, err := synchroniser.Run(ctx, driving.SyncOptions{})
			if err != nil {
				// Keep watching; the next change retries.
				cmd.Printf("Sync failed: %v\n", err)
				continue
			}
			printReport(cmd, report)
		}
	}
}
