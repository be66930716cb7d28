package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/attool/internal/media"
	"github.com/mgpai22/attool/internal/render"
	"github.com/mgpai22/attool/internal/transcript"
)

var renderCmd = &cobra.Command{
	Use:   "render [transcript.json]",
	Short: "Render a saved transcript as text or subtitles",
	Long: `Render a transcript record written by 'attool run' without transcribing
again.

Examples:
  attool render work/lecture.json
  attool render work/lecture.json --start 10 --end 15
  attool render work/lecture.json -f vtt -o subs/`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().String("start", "", "Window start in minutes for text output (default 0)")
	renderCmd.Flags().String("end", "", "Window end in minutes for text output (default: end of file)")
	renderCmd.Flags().StringP("format", "f", "txt", "Output format (txt, srt, vtt)")
	renderCmd.Flags().Bool("no-overwrite", false, "Keep an existing output file")
}

func runRender(cmd *cobra.Command, args []string) error {
	path := args[0]
	if media.DefaultClassifier().Classify(path) != media.Transcript {
		return fmt.Errorf("%s: %w: expected a %s transcript", path, media.ErrUnsupportedFormat, media.TranscriptExtension)
	}

	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	formatStr, _ := cmd.Flags().GetString("format")
	noOverwrite, _ := cmd.Flags().GetBool("no-overwrite")
	outputDir, _ := cmd.Flags().GetString("output")

	window, err := render.ParseWindow(start, end)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	renderer, err := render.NewRenderer(format, window)
	if err != nil {
		return err
	}

	t, err := transcript.Load(path)
	if err != nil {
		return err
	}
	if t.Len() == 0 {
		logger.Warnw("Transcript has no segments", "path", path)
	}

	if outputDir == "" {
		outputDir = filepath.Dir(path)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outputPath := filepath.Join(outputDir, base+format.Extension())

	written, err := render.WriteText(outputPath, renderer.Render(t), !noOverwrite)
	if err != nil {
		return err
	}
	if !written {
		logger.Infow("Output exists, not overwriting", "path", outputPath)
		return nil
	}

	logger.Infow("Rendered transcript",
		"input", path,
		"output", outputPath,
		"format", format,
		"segments", t.Len(),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Rendered: %s\n", outputPath)
	return nil
}
