package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/attool/internal/config"
	"github.com/mgpai22/attool/internal/media"
	"github.com/mgpai22/attool/internal/render"
	"github.com/mgpai22/attool/internal/transcript"
	"github.com/mgpai22/attool/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate [transcript.json]",
	Short: "Translate a saved transcript to another language using AI",
	Long: `Translate the segment texts of a transcript record, keeping every
timestamp. The result is written as <name>.<target>.json next to the input
and can be rendered with --format or later with 'attool render'.

Examples:
  attool translate work/lecture.json --target-language japanese
  attool translate work/lecture.json -t es -f srt
  attool translate work/lecture.json -t de --provider anthropic`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	translateCmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	translateCmd.Flags().
		String("provider", "gemini", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		Int("concurrency", 3, "Number of parallel translation workers")
	translateCmd.Flags().
		Int("batch-size", translate.DefaultBatchSize, "Number of segments per API request")
	translateCmd.Flags().
		StringP("format", "f", "", "Also render the translation (txt, srt, vtt)")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := cmd.Context()

	targetLang, _ := cmd.Flags().GetString("target-language")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	modelOverride, _ := cmd.Flags().GetBool("model-override")
	providerStr, _ := cmd.Flags().GetString("provider")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	formatStr, _ := cmd.Flags().GetString("format")
	outputDir, _ := cmd.Flags().GetString("output")
	inputLang, _ := cmd.Flags().GetString("language")

	if media.DefaultClassifier().Classify(path) != media.Transcript {
		return fmt.Errorf("%s: %w: expected a %s transcript", path, media.ErrUnsupportedFormat, media.TranscriptExtension)
	}

	targetLang = strings.TrimSpace(targetLang)
	if targetLang == "" {
		return fmt.Errorf("target language is required")
	}
	if inputLang != "" && strings.EqualFold(strings.TrimSpace(inputLang), targetLang) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	provider := translate.Provider(providerStr)
	if model != "" && !modelOverride && !isValidTranslationModel(provider, model) {
		return fmt.Errorf(
			"unsupported %s model %q (use --model-override to bypass)",
			provider,
			model,
		)
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	apiKey = config.APIKey(string(provider), apiKey)
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			apiKeyEnv(string(provider)),
		)
	}

	var format render.Format
	if formatStr != "" {
		var err error
		if format, err = render.ParseFormat(formatStr); err != nil {
			return err
		}
	}

	t, err := transcript.Load(path)
	if err != nil {
		return err
	}
	if t.Len() == 0 {
		return fmt.Errorf("transcript contains no segments")
	}
	if inputLang == "" {
		inputLang = t.Language()
	}

	if outputDir == "" {
		outputDir = filepath.Dir(path)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outputBase := filepath.Join(outputDir, base+"."+targetLang)

	logger.Infow("Starting transcript translation",
		"input", path,
		"output", outputBase+media.TranscriptExtension,
		"segments", t.Len(),
		"target_language", targetLang,
		"input_language", inputLang,
		"provider", provider,
		"model", model,
	)

	translator, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		BatchSize:      batchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	started := time.Now()
	translated, err := translate.TranslateTranscript(ctx, translator, t, targetLang, concurrency)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	logger.Infow("Translation complete", "elapsed", time.Since(started).Round(time.Millisecond))

	if err := transcript.Write(outputBase+media.TranscriptExtension, translated); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Translated transcript: %s\n", outputBase+media.TranscriptExtension)

	if format == "" {
		return nil
	}
	renderer, err := render.NewRenderer(format, render.DefaultWindow())
	if err != nil {
		return err
	}
	outputPath := outputBase + format.Extension()
	if _, err := render.WriteText(outputPath, renderer.Render(translated), true); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rendered: %s\n", outputPath)
	return nil
}
