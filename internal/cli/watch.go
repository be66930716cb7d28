package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/attool/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Transcribe media files as they appear in a directory",
	Long: `Watch a directory and run every new or changed audio or video file through
the same pipeline as 'attool run' once it has stopped changing.

Runs until interrupted.

Examples:
  attool watch inbox/
  attool watch inbox/ -f srt --settle 10s`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addProcessingFlags(watchCmd)
	watchCmd.Flags().
		Duration("settle", watch.DefaultSettle, "How long a file must be unchanged before processing")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx := cmd.Context()

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("input not found: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	settle, _ := cmd.Flags().GetDuration("settle")
	if settle <= 0 {
		return fmt.Errorf("settle must be positive, got %s", settle)
	}

	scheduler, err := newScheduler(ctx, cmd, settings)
	if err != nil {
		return err
	}

	watcher, err := watch.New(dir, scheduler.Process, logger, watch.WithSettle(settle))
	if err != nil {
		return err
	}
	defer watcher.Close()

	logger.Debugw("Watch settings",
		"settle", settle.Round(time.Millisecond),
		"provider", settings.Provider,
		"format", settings.Format,
	)
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
