package transcribe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mgpai22/attool/internal/logging"
	"github.com/mgpai22/attool/internal/transcript"
)

func TestParseVerboseJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []transcript.Segment
		wantErr bool
	}{
		{
			name: "blank segments dropped and text trimmed",
			raw: `{"text": "Hi. Bye.", "segments": [
				{"start": 0, "end": 0.4, "text": " "},
				{"start": 0.4, "end": 1.5, "text": " Hi. "},
				{"start": 62, "end": 63.25, "text": "Bye."}
			]}`,
			want: []transcript.Segment{
				{Start: 0.4, End: 1.5, Text: "Hi."},
				{Start: 62, End: 63.25, Text: "Bye."},
			},
		},
		{
			name: "text only spans the reported duration",
			raw:  `{"text": "no timing here", "duration": 7.5}`,
			want: []transcript.Segment{{Start: 0, End: 7.5, Text: "no timing here"}},
		},
		{
			name: "null segments without duration",
			raw:  `{"text": "short", "segments": null}`,
			want: []transcript.Segment{{Start: 0, End: 0, Text: "short"}},
		},
		{
			name: "all segments blank falls back to text",
			raw:  `{"text": "whole text", "duration": 3, "segments": [{"start": 0, "end": 3, "text": ""}]}`,
			want: []transcript.Segment{{Start: 0, End: 3, Text: "whole text"}},
		},
		{
			name:    "nothing usable",
			raw:     `{"text": "  ", "segments": []}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     "upstream timeout",
			wantErr: true,
		},
		{
			name:    "empty body",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVerboseJSON(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("segments mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func newTestOpenAI(probed time.Duration, probeErr error) (*OpenAITranscriber, *observer.ObservedLogs, *int) {
	core, logs := observer.New(zapcore.DebugLevel)
	calls := new(int)
	return &OpenAITranscriber{
		logger: logging.New(core),
		duration: func(context.Context, string) (time.Duration, error) {
			*calls++
			return probed, probeErr
		},
	}, logs, calls
}

func TestResponseSegmentsUnparsableBodyIsLogged(t *testing.T) {
	tr, logs, _ := newTestOpenAI(42*time.Second, nil)

	got, err := tr.responseSegments(context.Background(), "talk.mp3", "not json", " hello there ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []transcript.Segment{{Start: 0, End: 42, Text: "hello there"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	fields := warnings[0].ContextMap()
	if fields["path"] != "talk.mp3" || fields["error"] == nil {
		t.Errorf("warning fields = %v", fields)
	}
}

func TestResponseSegmentsWithoutTextFails(t *testing.T) {
	tr, logs, _ := newTestOpenAI(time.Second, nil)

	_, err := tr.responseSegments(context.Background(), "talk.mp3", "not json", "")
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Fatalf("expected ErrTranscriptionFailed, got %v", err)
	}
	if logs.FilterLevelExact(zapcore.WarnLevel).Len() != 1 {
		t.Error("parse failure should be logged before failing")
	}
}

func TestResponseSegmentsProbesMissingDuration(t *testing.T) {
	tr, _, calls := newTestOpenAI(9500*time.Millisecond, nil)

	got, err := tr.responseSegments(context.Background(), "talk.mp3", `{"text": "untimed"}`, "untimed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *calls != 1 || got[0].End != 9.5 {
		t.Errorf("probe calls = %d, end = %v; want 1 call and end 9.5", *calls, got[0].End)
	}
}

func TestResponseSegmentsProbeFailureKeepsText(t *testing.T) {
	tr, logs, _ := newTestOpenAI(0, errors.New("ffprobe missing"))

	got, err := tr.responseSegments(context.Background(), "talk.mp3", `{"text": "untimed"}`, "untimed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].End != 0 || got[0].Text != "untimed" {
		t.Errorf("got %+v", got)
	}
	if logs.FilterMessage("Could not probe audio duration").Len() != 1 {
		t.Error("probe failure should be logged")
	}
}

func TestResponseSegmentsTimedBodySkipsProbe(t *testing.T) {
	tr, logs, calls := newTestOpenAI(time.Minute, nil)

	raw := `{"segments": [{"start": 1, "end": 2, "text": "timed"}]}`
	got, err := tr.responseSegments(context.Background(), "talk.mp3", raw, "timed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *calls != 0 {
		t.Errorf("duration probed %d times for a timed response", *calls)
	}
	if got[0].End != 2 || logs.Len() != 0 {
		t.Errorf("got %+v with %d log entries", got, logs.Len())
	}
}

func TestShouldUseTranslation(t *testing.T) {
	tests := map[string]bool{
		"English": true,
		" en ":    true,
		"native":  false,
		"":        false,
		"german":  false,
	}
	for lang, want := range tests {
		tr := &OpenAITranscriber{options: Options{TranscriptLanguage: lang}}
		if got := tr.shouldUseTranslation(); got != want {
			t.Errorf("shouldUseTranslation(%q) = %v, want %v", lang, got, want)
		}
	}
}

func TestNewOpenAITranscriberDefaults(t *testing.T) {
	tr, err := NewOpenAITranscriber(context.Background(), "sk-test", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.model != DefaultOpenAIModel || tr.logger == nil || tr.duration == nil {
		t.Errorf("unexpected defaults: model=%q logger=%v", tr.model, tr.logger)
	}
}
