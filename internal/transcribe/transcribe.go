package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mgpai22/attool/internal/logging"
	"github.com/mgpai22/attool/internal/transcript"
)

var ErrTranscriptionFailed = errors.New("transcription failed")

// Transcriber turns an audio file into a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*transcript.Transcript, error)
}

// transcription service provider
type Provider string

const (
	ProviderWhisper Provider = "whisper"
	ProviderOpenAI  Provider = "openai"
	ProviderGemini  Provider = "gemini"
)

func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProviderWhisper, nil
	case ProviderWhisper, ProviderOpenAI, ProviderGemini:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported provider %q: use whisper, openai, or gemini", s)
	}
}

// transcription options
type Options struct {
	Language           string // Source language of audio
	TranscriptLanguage string // Output language for transcript (default: "native")
	Model              string
	Prompt             string

	// local whisper only
	WhisperBinary string

	// Split audio into chunks of this length and transcribe them in
	// parallel. Zero leaves the provider default.
	ChunkDuration time.Duration
	Concurrency   int

	// nil discards adapter logs
	Logger *logging.Logger
}

func (o Options) log() *logging.Logger {
	if o.Logger == nil {
		return logging.NewNop()
	}
	return o.Logger
}

const (
	DefaultWhisperModel  = "medium"
	DefaultOpenAIModel   = "whisper-1"
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultGeminiChunk   = time.Minute
	DefaultChunkWorkers  = 3
	defaultWhisperBinary = "whisper"
)

// Factory creates a transcriber for provider. Remote providers need an
// API key; gemini is always chunked, openai only when ChunkDuration is set.
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderWhisper, "":
		return NewWhisperTranscriber(opts), nil
	case ProviderOpenAI:
		t, err := NewOpenAITranscriber(ctx, apiKey, opts)
		if err != nil {
			return nil, err
		}
		if opts.ChunkDuration > 0 {
			return NewChunked(t, opts.ChunkDuration, opts.Concurrency), nil
		}
		return t, nil
	case ProviderGemini:
		t, err := NewGeminiTranscriber(ctx, apiKey, opts)
		if err != nil {
			return nil, err
		}
		chunk := opts.ChunkDuration
		if chunk <= 0 {
			chunk = DefaultGeminiChunk
		}
		return NewChunked(t, chunk, opts.Concurrency), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func failed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTranscriptionFailed, fmt.Sprintf(format, args...))
}
