package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/sync/errgroup"

	ffmpegbin "github.com/mgpai22/attool/internal/ffmpeg"
)

// DefaultChunkConcurrency bounds parallel ffmpeg runs when splitting.
const DefaultChunkConcurrency = 10

// audio chunk info
type ChunkInfo struct {
	Path      string
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
}

// settings for audio compression
type CompressionOptions struct {
	Format     string // Output format (mp3, aac)
	SampleRate int    // Sample rate in Hz
	Channels   int    // Number of channels (1=mono, 2=stereo)
	Bitrate    string // Bitrate (e.g., "64k", "128k")
}

// defaults for speech upload: small mono mp3
func DefaultCompressionOptions() CompressionOptions {
	return CompressionOptions{
		Format:     "mp3",
		SampleRate: 16000,
		Channels:   1,
		Bitrate:    "64k",
	}
}

// GetDuration asks ffprobe for the container duration.
func GetDuration(ctx context.Context, filePath string) (time.Duration, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return 0, fmt.Errorf("file not found: %s", filePath)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbeDuration(out.Bytes())
}

// ffprobe reports format.duration as a decimal string
func parseProbeDuration(probe []byte) (time.Duration, error) {
	if !gjson.ValidBytes(probe) {
		return 0, fmt.Errorf("failed to parse ffprobe output")
	}
	value := gjson.GetBytes(probe, "format.duration")
	if !value.Exists() {
		return 0, fmt.Errorf("ffprobe output has no duration")
	}

	seconds := value.Float()
	if seconds <= 0 {
		return 0, fmt.Errorf("invalid duration: %q", value.String())
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// CompressAudio re-encodes inputPath into a small speech-friendly file.
func CompressAudio(
	ctx context.Context,
	inputPath, outputPath string,
	opts CompressionOptions,
) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	if err := runFFmpeg(ctx, ffmpegPath, inputPath, outputPath, compressionArgs(opts)); err != nil {
		return fmt.Errorf("compression failed: %w", err)
	}
	return nil
}

func compressionArgs(opts CompressionOptions) ffmpeg.KwArgs {
	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ar": opts.SampleRate,
		"ac": opts.Channels,
	}

	switch opts.Format {
	case "aac":
		kwargs["acodec"] = "aac"
	default:
		kwargs["acodec"] = "libmp3lame"
	}
	if opts.Bitrate != "" {
		kwargs["b:a"] = opts.Bitrate
	}
	return kwargs
}

// planChunks lays out back-to-back windows covering total; the last one
// may be shorter.
func planChunks(audioPath, outputDir string, total, chunk time.Duration) []ChunkInfo {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	ext := filepath.Ext(audioPath)

	var chunks []ChunkInfo
	for i := 0; ; i++ {
		start := time.Duration(i) * chunk
		if start >= total {
			break
		}
		end := min(start+chunk, total)
		chunks = append(chunks, ChunkInfo{
			Path:      filepath.Join(outputDir, fmt.Sprintf("%s_chunk_%03d%s", base, i, ext)),
			Index:     i,
			StartTime: start,
			EndTime:   end,
		})
	}
	return chunks
}

// ChunkAudio splits audioPath into chunkDuration pieces using stream copy.
// Chunks come back in index order. concurrency <= 0 uses
// DefaultChunkConcurrency.
func ChunkAudio(
	ctx context.Context,
	audioPath string,
	chunkDuration time.Duration,
	outputDir string,
	concurrency int,
) ([]ChunkInfo, error) {
	if chunkDuration <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive, got %v", chunkDuration)
	}
	if concurrency <= 0 {
		concurrency = DefaultChunkConcurrency
	}

	totalDuration, err := GetDuration(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio duration: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	chunks := planChunks(audioPath, outputDir, totalDuration, chunkDuration)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, chunk := range chunks {
		g.Go(func() error {
			kwargs := ffmpeg.KwArgs{
				"ss": chunk.StartTime.Seconds(),
				"t":  (chunk.EndTime - chunk.StartTime).Seconds(),
				"c":  "copy",
			}
			if err := runFFmpeg(gctx, ffmpegPath, audioPath, chunk.Path, kwargs); err != nil {
				return fmt.Errorf("failed to create chunk %d: %w", chunk.Index, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		_ = CleanupChunks(chunks)
		return nil, err
	}
	return chunks, nil
}

// removes all chunk files
func CleanupChunks(chunks []ChunkInfo) error {
	var lastErr error
	for _, chunk := range chunks {
		if err := os.Remove(chunk.Path); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}

func runFFmpeg(ctx context.Context, ffmpegPath, input, output string, kwargs ffmpeg.KwArgs) error {
	args := ffmpeg.Input(input).
		Output(output, kwargs).
		OverWriteOutput().
		GetArgs()

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
