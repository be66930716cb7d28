package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/attool/internal/audio"
	"github.com/mgpai22/attool/internal/transcript"
)

// Chunked compresses a file, splits it and transcribes the pieces in
// parallel with the wrapped transcriber. Segment times are shifted by each
// chunk's offset and merged in chunk order.
type Chunked struct {
	inner       Transcriber
	chunk       time.Duration
	concurrency int

	compress func(ctx context.Context, in, out string) error
	split    func(ctx context.Context, in string, chunk time.Duration, dir string) ([]audio.ChunkInfo, error)
}

func NewChunked(inner Transcriber, chunk time.Duration, concurrency int) *Chunked {
	if concurrency <= 0 {
		concurrency = DefaultChunkWorkers
	}
	return &Chunked{
		inner:       inner,
		chunk:       chunk,
		concurrency: concurrency,
		compress: func(ctx context.Context, in, out string) error {
			return audio.CompressAudio(ctx, in, out, audio.DefaultCompressionOptions())
		},
		split: func(ctx context.Context, in string, chunk time.Duration, dir string) ([]audio.ChunkInfo, error) {
			return audio.ChunkAudio(ctx, in, chunk, dir, 0)
		},
	}
}

func (c *Chunked) Transcribe(ctx context.Context, audioPath string) (*transcript.Transcript, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, failed("audio file not found: %s", audioPath)
	}

	tempDir, err := os.MkdirTemp("", "attool-chunks-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	compressed := filepath.Join(tempDir, "audio.mp3")
	if err := c.compress(ctx, audioPath, compressed); err != nil {
		return nil, failed("failed to compress audio: %v", err)
	}

	chunks, err := c.split(ctx, compressed, c.chunk, filepath.Join(tempDir, "chunks"))
	if err != nil {
		return nil, failed("failed to split audio: %v", err)
	}

	return c.transcribeChunks(ctx, chunks)
}

func (c *Chunked) transcribeChunks(ctx context.Context, chunks []audio.ChunkInfo) (*transcript.Transcript, error) {
	results := make([]*transcript.Transcript, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			t, err := c.inner.Transcribe(gctx, chunk.Path)
			if err != nil {
				return fmt.Errorf("chunk %d failed: %w", chunk.Index, err)
			}
			results[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrTranscriptionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	var (
		merged   []transcript.Segment
		language string
	)
	for i, t := range results {
		offset := chunks[i].StartTime.Seconds()
		for _, seg := range t.All() {
			seg.Start += offset
			seg.End += offset
			merged = append(merged, seg)
		}
		if language == "" {
			language = t.Language()
		}
	}

	return transcript.New(merged, transcript.WithLanguage(language)), nil
}
