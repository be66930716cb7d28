package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/attool/internal/media"
	"github.com/mgpai22/attool/internal/video"
)

var extractCmd = &cobra.Command{
	Use:   "extract [video_file]",
	Short: "Extract audio from a video file",
	Long: `Extract the audio track from a video file into <output>/<name>.<codec>.

Examples:
  attool extract video.mp4
  attool extract video.mp4 -o work --codec mp3
  attool extract video.mp4 --ss 60 --to 120`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().
		String("codec", "aac", "Output audio codec (aac, mp3, wav or any ffmpeg encoder)")
	extractCmd.Flags().
		Float64("ss", 0, "Start offset in seconds")
	extractCmd.Flags().
		Float64("to", 0, "End position in seconds (0 for end of file)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	if !media.DefaultClassifier().IsVideo(videoPath) {
		return fmt.Errorf("%s: %w: not a video file", videoPath, media.ErrUnsupportedFormat)
	}

	codec, _ := cmd.Flags().GetString("codec")
	start, _ := cmd.Flags().GetFloat64("ss")
	end, _ := cmd.Flags().GetFloat64("to")
	outputDir, _ := cmd.Flags().GetString("output")

	if start < 0 || end < 0 {
		return fmt.Errorf("--ss and --to must not be negative")
	}
	if end > 0 && end <= start {
		return fmt.Errorf("--to (%v) must be after --ss (%v)", end, start)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(videoPath)
	}

	logger.Infow("Extracting audio",
		"video", videoPath,
		"output_dir", outputDir,
		"codec", codec,
		"start", start,
		"end", end,
	)

	outputPath, err := video.NewExtractor().ExtractAudio(cmd.Context(), videoPath, outputDir, video.ExtractOptions{
		Codec: codec,
		Start: start,
		End:   end,
	})
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Audio extracted successfully: %s\n", absOutput)

	return nil
}
