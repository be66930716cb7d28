package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/attool/internal/ffmpeg"
)

var ErrExtractionFailed = errors.New("audio extraction failed")

// Extractor pulls the audio track out of a video file.
type Extractor interface {
	// ExtractAudio writes <outputDir>/<base>.<codec> and returns its path.
	ExtractAudio(
		ctx context.Context,
		inputPath, outputDir string,
		opts ExtractOptions,
	) (string, error)
}

// holds options for audio extraction
type ExtractOptions struct {
	Codec string  // Output codec and extension (aac, mp3, wav, flac)
	Start float64 // Seconds; 0 means from the beginning
	End   float64 // Seconds; 0 or less means to the end
}

func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{Codec: "aac"}
}

// default implementation using ffmpeg
type FFmpegExtractor struct {
	// resolves the ffmpeg binary; defaults to the shared lookup
	binary func() (string, error)
	run    func(ctx context.Context, ffmpegPath, input, output string, kwargs ffmpeg.KwArgs) error
}

func NewExtractor() *FFmpegExtractor {
	return &FFmpegExtractor{
		binary: ffmpegbin.FFmpegPath,
		run:    runFFmpeg,
	}
}

// OutputPath is where ExtractAudio writes for the given input.
func OutputPath(inputPath, outputDir, codec string) string {
	if codec == "" {
		codec = DefaultExtractOptions().Codec
	}
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(outputDir, base+"."+codec)
}

func (e *FFmpegExtractor) ExtractAudio(
	ctx context.Context,
	inputPath, outputDir string,
	opts ExtractOptions,
) (string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("%w: video file not found: %s", ErrExtractionFailed, inputPath)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("%w: failed to create output directory: %v", ErrExtractionFailed, err)
	}

	ffmpegPath, err := e.binary()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	outputPath := OutputPath(inputPath, outputDir, opts.Codec)
	if err := e.run(ctx, ffmpegPath, inputPath, outputPath, extractArgs(opts)); err != nil {
		return "", fmt.Errorf("%w: ffmpeg: %v", ErrExtractionFailed, err)
	}

	return outputPath, nil
}

func extractArgs(opts ExtractOptions) ffmpeg.KwArgs {
	kwargs := ffmpeg.KwArgs{
		"vn": "", // No video
	}

	switch opts.Codec {
	case "", "aac":
		kwargs["c:a"] = "aac"
	case "mp3":
		kwargs["c:a"] = "libmp3lame"
	case "wav":
		kwargs["c:a"] = "pcm_s16le"
	default:
		kwargs["c:a"] = opts.Codec
	}

	if opts.Start > 0 {
		kwargs["ss"] = opts.Start
	}
	if opts.End > 0 && opts.End > opts.Start {
		kwargs["to"] = opts.End
	}

	return kwargs
}

func runFFmpeg(ctx context.Context, ffmpegPath, input, output string, kwargs ffmpeg.KwArgs) error {
	args := ffmpeg.Input(input).
		Output(output, kwargs).
		OverWriteOutput().
		GetArgs()

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, lastLine(string(out)))
	}
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return s[i+1:]
	}
	return s
}
