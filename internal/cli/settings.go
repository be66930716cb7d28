package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/attool/internal/config"
	"github.com/mgpai22/attool/internal/pipeline"
	"github.com/mgpai22/attool/internal/render"
	"github.com/mgpai22/attool/internal/transcribe"
	"github.com/mgpai22/attool/internal/video"
)

// addProcessingFlags registers the flags shared by run and watch.
func addProcessingFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "Window start in minutes for text output (default 0)")
	cmd.Flags().String("end", "", "Window end in minutes for text output (default: end of file)")
	cmd.Flags().StringP("format", "f", "txt", "Output format (txt, srt, vtt)")
	cmd.Flags().String("work-dir", "", "Scratch directory for extracted audio and transcripts (default ./work)")
	cmd.Flags().StringP("provider", "p", "whisper", "Transcription provider (whisper, openai, gemini)")
	cmd.Flags().String("model", "", "Transcription model (provider default when empty)")
	cmd.Flags().StringP("api-key", "k", "", "API key (or set OPENAI_API_KEY/GEMINI_API_KEY)")
	cmd.Flags().String("codec", "", "Audio codec for video extraction (default aac)")
	cmd.Flags().Bool("no-overwrite", false, "Keep existing output files")
	cmd.Flags().String("transcript-language", "native", "Output language for the transcript ('native' or 'english' for openai/whisper)")
	cmd.Flags().Int("chunk-duration", 0, "Split audio into chunks of this many minutes (gemini default 1)")
	cmd.Flags().Int("concurrency", transcribe.DefaultChunkWorkers, "Parallel chunk transcriptions")
	cmd.Flags().String("whisper-bin", "", "Path to the local whisper executable")
}

// loadSettings reads --config (or defaults) and applies any flag the user
// set explicitly on top.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	settings := config.Default()
	if configPath != "" {
		var err error
		if settings, err = config.Load(configPath); err != nil {
			return nil, err
		}
		logger.Debugw("Loaded settings", "path", configPath)
	}

	overrides := map[string]*string{
		"start":    &settings.Start,
		"end":      &settings.End,
		"format":   &settings.Format,
		"work-dir": &settings.WorkDir,
		"provider": &settings.Provider,
		"model":    &settings.Model,
		"codec":    &settings.Codec,
		"output":   &settings.Output,
		"language": &settings.Language,
	}
	for name, field := range overrides {
		flag := cmd.Flags().Lookup(name)
		if flag != nil && flag.Changed {
			*field = flag.Value.String()
		}
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func pipelineOptions(cmd *cobra.Command, settings *config.Settings) pipeline.Options {
	noOverwrite, _ := cmd.Flags().GetBool("no-overwrite")
	window := settings.Window()
	return pipeline.Options{
		Start:        window.Start,
		End:          window.End,
		OutputFolder: settings.Output,
		WorkDir:      settings.WorkDir,
		Format:       render.Format(settings.Format),
		Overwrite:    !noOverwrite,
		AudioCodec:   settings.Codec,
	}
}

func newTranscriber(ctx context.Context, cmd *cobra.Command, settings *config.Settings) (transcribe.Transcriber, error) {
	apiKey, _ := cmd.Flags().GetString("api-key")
	transcriptLang, _ := cmd.Flags().GetString("transcript-language")
	chunkMinutes, _ := cmd.Flags().GetInt("chunk-duration")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	whisperBin, _ := cmd.Flags().GetString("whisper-bin")

	provider := transcribe.Provider(settings.Provider)
	if provider == transcribe.ProviderOpenAI && !isValidOpenAITranscriptLanguage(transcriptLang) {
		return nil, fmt.Errorf("openai can only output the native language or english, got %q", transcriptLang)
	}
	if settings.Model != "" && !isValidTranscriptionModel(provider, settings.Model) {
		logger.Warnw("Unrecognised model for provider", "provider", provider, "model", settings.Model)
	}

	apiKey = config.APIKey(string(provider), apiKey)
	if provider != transcribe.ProviderWhisper && apiKey == "" {
		return nil, fmt.Errorf("API key is required for %s: use --api-key or set %s", provider, apiKeyEnv(string(provider)))
	}

	return transcribe.Factory(ctx, provider, apiKey, transcribe.Options{
		Language:           settings.Language,
		TranscriptLanguage: transcriptLang,
		Model:              settings.Model,
		WhisperBinary:      whisperBin,
		ChunkDuration:      time.Duration(chunkMinutes) * time.Minute,
		Concurrency:        concurrency,
		Logger:             logger,
	})
}

// newScheduler wires the extractor, transcriber and options from flags and
// settings.
func newScheduler(ctx context.Context, cmd *cobra.Command, settings *config.Settings, options ...pipeline.Option) (*pipeline.Scheduler, error) {
	transcriber, err := newTranscriber(ctx, cmd, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}
	return pipeline.New(logger, video.NewExtractor(), transcriber, pipelineOptions(cmd, settings), options...)
}

func apiKeyEnv(provider string) string {
	switch provider {
	case "openai":
		return config.EnvOpenAIKey
	case "gemini":
		return config.EnvGeminiKey
	case "anthropic":
		return config.EnvAnthropicKey
	default:
		return "API_KEY"
	}
}
