package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mgpai22/attool/internal/config"
	"github.com/mgpai22/attool/internal/logging"
)

var (
	verbose    bool
	logFile    string
	configPath string
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "attool",
	Short: "Turn audio and video into time-stamped transcripts",
	Long: `attool transcribes audio and video files and renders the transcript
as plain text (optionally limited to a time window) or as SRT/VTT subtitles.

Inputs may be a single file or a directory; every audio and video file in a
directory is processed in turn.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.NewLoggerWithFile(verbose, logFile)
		if err != nil {
			return err
		}
		config.LoadEnv(logger, config.EnvFiles()...)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command; Ctrl-C cancels the running command's
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&logFile, "log-file", filepath.Join("log", "attool.log"), "Also write JSON logs to this file (empty to disable)")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Settings file (.ini with a [SETTINGS] section, or .yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output folder")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Language code of the audio (e.g., en, es, ja)")
}
