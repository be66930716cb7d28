package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mgpai22/attool/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run [input]",
	Short: "Transcribe a file or every media file in a directory",
	Long: `Transcribe an audio or video file, or every audio and video file directly
inside a directory, and render the transcript next to the input.

Videos have their audio extracted into the work directory first. The
transcript record is kept as <work-dir>/<name>.json so it can be rendered
again later with 'attool render'.

Plain text output can be limited to a window in minutes with --start and
--end; subtitle formats always include every segment.

Examples:
  attool run lecture.mp4
  attool run recordings/ --start 5 --end 20
  attool run podcast.mp3 -f srt -p openai
  attool run --config settings.ini`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addProcessingFlags(runCmd)
	runCmd.Flags().Bool("wait", false, "Wait for Enter before exiting")
	runCmd.Flags().Bool("no-progress", false, "Disable the progress bar")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	input := settings.Input
	if len(args) == 1 {
		input = args[0]
	}
	if input == "" {
		return errors.New("no input: pass a file or directory, or set input in --config")
	}

	wait, _ := cmd.Flags().GetBool("wait")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	var options []pipeline.Option
	var bar *progressbar.ProgressBar
	if !noProgress {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("transcribing"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		options = append(options, pipeline.WithObserver(progressObserver(bar)))
	}

	scheduler, err := newScheduler(ctx, cmd, settings, options...)
	if err != nil {
		return err
	}

	logger.Infow("Starting run",
		"input", input,
		"provider", settings.Provider,
		"format", settings.Format,
		"start", settings.StartMinutes,
		"end", settings.EndMinutes,
		"work_dir", settings.WorkDir,
	)

	runErr := scheduler.Run(ctx, input)
	if bar != nil {
		_ = bar.Finish()
	}

	if runErr != nil {
		logger.Errorw("Run finished with errors", "error", runErr)
	} else {
		abs, _ := filepath.Abs(input)
		fmt.Printf("Finished: %s\n", abs)
	}

	if wait {
		fmt.Print("Press Enter to exit...")
		_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
	}
	return runErr
}

func progressObserver(bar *progressbar.ProgressBar) pipeline.Observer {
	return func(res pipeline.Result) {
		bar.Describe(fmt.Sprintf("%s %s", res.State, filepath.Base(res.Path)))
		_ = bar.Add(1)
	}
}
