package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	"github.com/mgpai22/attool/internal/logging"
	"github.com/mgpai22/attool/internal/transcript"
)

// implements Transcriber using Google Gemini; one request per file, so
// long recordings go through Chunked
type GeminiTranscriber struct {
	client  *genai.Client
	model   string
	options Options
	logger  *logging.Logger

	// deletes an uploaded file
	remove func(ctx context.Context, name string) error
}

// segment from Gemini's JSON response
type transcriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func NewGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiTranscriber{
		client:  client,
		model:   model,
		options: opts,
		logger:  opts.log().Named("gemini"),
		remove: func(ctx context.Context, name string) error {
			_, err := client.Files.Delete(ctx, name, nil)
			return err
		},
	}, nil
}

func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioPath string) (*transcript.Transcript, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, failed("audio file not found: %s", audioPath)
	}

	uploadedFile, err := t.client.Files.UploadFromPath(ctx, audioPath, nil)
	if err != nil {
		return nil, failed("failed to upload audio file: %v", err)
	}
	defer t.cleanup(ctx, uploadedFile.Name)

	parts := []*genai.Part{
		genai.NewPartFromText(t.buildTranscriptionPrompt()),
		genai.NewPartFromURI(uploadedFile.URI, uploadedFile.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, failed("gemini: %v", err)
	}

	segments, err := parseTranscriptionResponse(result)
	if err != nil {
		return nil, failed("failed to parse transcription: %v", err)
	}

	return transcript.New(segments, transcript.WithLanguage(t.options.Language)), nil
}

// cleanup deletes an upload even when ctx is already cancelled; failure
// only leaves the file to expire on the server.
func (t *GeminiTranscriber) cleanup(ctx context.Context, name string) {
	if err := t.remove(context.WithoutCancel(ctx), name); err != nil {
		t.logger.Debugw("Failed to delete uploaded audio", "file", name, "error", err)
	}
}

// creates the prompt for transcription
func (t *GeminiTranscriber) buildTranscriptionPrompt() string {
	var sb strings.Builder

	sb.WriteString("Generate a detailed transcript of this audio. ")
	sb.WriteString("For each sentence or phrase, provide the start timestamp, end timestamp, and the exact text spoken. ")
	sb.WriteString("Format your response as a JSON array with objects containing 'start', 'end', and 'text' fields, ")
	sb.WriteString("where 'start' and 'end' are timestamps in seconds (as numbers). ")

	if t.options.Language != "" {
		fmt.Fprintf(&sb, "The audio is in %s. ", t.options.Language)
	}
	if t.options.TranscriptLanguage != "" && t.options.TranscriptLanguage != "native" {
		fmt.Fprintf(&sb, "Output the transcript in %s. ", t.options.TranscriptLanguage)
	}
	if t.options.Prompt != "" {
		sb.WriteString(t.options.Prompt)
		sb.WriteString(" ")
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")
	return sb.String()
}

func parseTranscriptionResponse(result *genai.GenerateContentResponse) ([]transcript.Segment, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	return parseTranscriptionText(result.Text())
}

// parseTranscriptionText pulls segments out of the model's reply text.
func parseTranscriptionText(responseText string) ([]transcript.Segment, error) {
	if strings.TrimSpace(responseText) == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	raw, err := extractTranscriptSegments(cleanJSONResponse(responseText))
	if err != nil {
		return nil, err
	}

	segments := make([]transcript.Segment, len(raw))
	for i, ts := range raw {
		segments[i] = transcript.Segment{
			Start: ts.Start,
			End:   ts.End,
			Text:  strings.TrimSpace(ts.Text),
		}
	}
	return segments, nil
}

var jsonFence = regexp.MustCompile("```(?:json)?\\s*")

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = jsonFence.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// keys models tend to wrap the segment array in, tried before any other key
var wrapperKeys = []string{"segments", "transcript", "data"}

// extractTranscriptSegments finds the first JSON value in s that holds a
// usable segment array. Models add preambles, trailing chatter and wrapper
// objects, so every '[' or '{' is tried as a candidate start.
func extractTranscriptSegments(s string) ([]transcriptSegment, error) {
	for i := 0; i < len(s); i++ {
		if s[i] != '[' && s[i] != '{' {
			continue
		}

		dec := json.NewDecoder(strings.NewReader(s[i:]))
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			continue
		}

		if segments, ok := segmentsFromValue(gjson.ParseBytes(value)); ok {
			return segments, nil
		}
		// the whole value was not a transcript; resume after it
		i += int(dec.InputOffset()) - 1
	}

	return nil, fmt.Errorf("no transcript segments found in response (response: %s)", truncateString(s, 200))
}

func segmentsFromValue(v gjson.Result) ([]transcriptSegment, bool) {
	switch {
	case v.IsArray():
		var segments []transcriptSegment
		if err := json.Unmarshal([]byte(v.Raw), &segments); err != nil {
			return nil, false
		}
		return segments, validateSegments(segments)

	case v.IsObject():
		for _, key := range wrapperKeys {
			if child := v.Get(key); child.Exists() {
				if segments, ok := segmentsFromValue(child); ok {
					return segments, true
				}
			}
		}

		var (
			found []transcriptSegment
			ok    bool
		)
		v.ForEach(func(key, child gjson.Result) bool {
			found, ok = segmentsFromValue(child)
			return !ok
		})
		return found, ok
	}
	return nil, false
}

// at least one segment must carry text
func validateSegments(segments []transcriptSegment) bool {
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) != "" {
			return true
		}
	}
	return false
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
