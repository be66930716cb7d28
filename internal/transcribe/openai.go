package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"

	"github.com/mgpai22/attool/internal/audio"
	"github.com/mgpai22/attool/internal/logging"
	"github.com/mgpai22/attool/internal/transcript"
)

// implements Transcriber using the OpenAI Audio API
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
	logger  *logging.Logger

	// probes the audio length when the response carries no timing
	duration func(ctx context.Context, path string) (time.Duration, error)
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	model := opts.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAITranscriber{
		client:   openai.NewClient(option.WithAPIKey(apiKey)),
		model:    model,
		options:  opts,
		logger:   opts.log().Named("openai"),
		duration: audio.GetDuration,
	}, nil
}

func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
) (*transcript.Transcript, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, failed("failed to open audio file: %v", err)
	}
	defer func() { _ = file.Close() }()

	var raw, text, language string
	if t.shouldUseTranslation() {
		params := openai.AudioTranslationNewParams{
			File:           file,
			Model:          openai.AudioModel(t.model),
			ResponseFormat: openai.AudioTranslationNewParamsResponseFormatVerboseJSON,
		}
		if t.options.Prompt != "" {
			params.Prompt = openai.String(t.options.Prompt)
		}

		resp, err := t.client.Audio.Translations.New(ctx, params)
		if err != nil {
			return nil, failed("openai translation: %v", err)
		}
		raw, text, language = resp.RawJSON(), resp.Text, "en"
	} else {
		params := openai.AudioTranscriptionNewParams{
			File:                   file,
			Model:                  openai.AudioModel(t.model),
			ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
			TimestampGranularities: []string{"segment"},
		}
		if t.options.Language != "" {
			params.Language = openai.String(t.options.Language)
		}
		if t.options.Prompt != "" {
			params.Prompt = openai.String(t.options.Prompt)
		}

		resp, err := t.client.Audio.Transcriptions.New(ctx, params)
		if err != nil {
			return nil, failed("openai transcription: %v", err)
		}
		raw, text, language = resp.RawJSON(), resp.Text, t.options.Language
	}

	segments, err := t.responseSegments(ctx, audioPath, raw, text)
	if err != nil {
		return nil, err
	}

	return transcript.New(segments,
		transcript.WithLanguage(language),
		transcript.WithText(strings.TrimSpace(text)),
	), nil
}

func (t *OpenAITranscriber) shouldUseTranslation() bool {
	return isEnglish(t.options.TranscriptLanguage)
}

// responseSegments turns a verbose_json body into segments. A body without
// usable segments degrades to one segment holding the whole text and
// spanning the audio; with no text either, the file fails.
func (t *OpenAITranscriber) responseSegments(
	ctx context.Context,
	audioPath, raw, text string,
) ([]transcript.Segment, error) {
	segments, err := parseVerboseJSON(raw)
	if err == nil && len(segments) > 0 {
		return segments, nil
	}

	if err != nil {
		t.logger.Warnw("Unusable verbose_json response, keeping text without timing",
			"path", audioPath,
			"error", err,
		)
		if text = strings.TrimSpace(text); text == "" {
			return nil, failed("parsing verbose_json: %v", err)
		}
		segments = []transcript.Segment{{Text: text}}
	}

	if len(segments) == 1 && segments[0].End <= 0 {
		d, derr := t.duration(ctx, audioPath)
		if derr != nil {
			t.logger.Debugw("Could not probe audio duration", "path", audioPath, "error", derr)
		} else {
			segments[0].End = d.Seconds()
		}
	}
	return segments, nil
}

// parseVerboseJSON keeps non-empty segments. A response with only text
// becomes one segment spanning the reported duration (zero when absent).
func parseVerboseJSON(raw string) ([]transcript.Segment, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty response")
	}
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("response is not valid JSON: %s", truncateString(raw, 100))
	}

	resp := gjson.Parse(raw)
	var segments []transcript.Segment
	for _, seg := range resp.Get("segments").Array() {
		text := strings.TrimSpace(seg.Get("text").String())
		if text == "" {
			continue
		}
		segments = append(segments, transcript.Segment{
			Start: seg.Get("start").Float(),
			End:   seg.Get("end").Float(),
			Text:  text,
		})
	}
	if len(segments) > 0 {
		return segments, nil
	}

	text := strings.TrimSpace(resp.Get("text").String())
	if text == "" {
		return nil, fmt.Errorf("no segments or text in response")
	}
	return []transcript.Segment{{
		End:  resp.Get("duration").Float(),
		Text: text,
	}}, nil
}
