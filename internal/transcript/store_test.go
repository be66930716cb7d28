package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestLoadWhisperRecord(t *testing.T) {
	path := writeFile(t, "clip.json", `{
		"text": " hello world",
		"language": "en",
		"segments": [
			{"id": 0, "seek": 0, "start": 10, "end": 12.5, "text": "hello", "tokens": [1, 2]},
			{"id": 1, "seek": 0, "start": 200.25, "end": 203, "text": "world"}
		]
	}`)

	tr, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	want := []Segment{
		{Start: 10, End: 12.5, Text: "hello"},
		{Start: 200.25, End: 203, Text: "world"},
	}
	if diff := cmp.Diff(want, tr.Segments()); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
	if tr.Language() != "en" {
		t.Errorf("language = %q, want %q", tr.Language(), "en")
	}
	if tr.Text() != "hello world" {
		t.Errorf("text = %q, want %q", tr.Text(), "hello world")
	}
}

func TestLoadCoercesNumericTypes(t *testing.T) {
	path := writeFile(t, "mixed.json", `{"segments": [
		{"start": "3", "end": " 4.75 ", "text": "string times"},
		{"start": 1700000000, "end": 1700000002, "text": "epoch-like ints"}
	]}`)

	tr, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	want := []Segment{
		{Start: 3, End: 4.75, Text: "string times"},
		{Start: 1700000000, End: 1700000002, Text: "epoch-like ints"},
	}
	if diff := cmp.Diff(want, tr.Segments()); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingSegmentsIsEmpty(t *testing.T) {
	for name, content := range map[string]string{
		"no segments key":   `{"text": "only text"}`,
		"segments not list": `{"segments": {"start": 1}}`,
		"top-level array":   `[1, 2, 3]`,
	} {
		t.Run(name, func(t *testing.T) {
			tr, err := Load(writeFile(t, "record.json", content))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tr.Len() != 0 {
				t.Errorf("expected empty transcript, got %d segments", tr.Len())
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"invalid json", `{"segments": [`, ErrMalformedData},
		{"non numeric start", `{"segments": [{"start": "abc", "end": 1, "text": "x"}]}`, ErrMalformedData},
		{"missing end", `{"segments": [{"start": 1, "text": "x"}]}`, ErrMalformedData},
		{"boolean start", `{"segments": [{"start": true, "end": 1, "text": "x"}]}`, ErrMalformedData},
		{"numeric text", `{"segments": [{"start": 0, "end": 1, "text": 42}]}`, ErrMalformedData},
		{"segment not object", `{"segments": ["hello"]}`, ErrMalformedData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.json", tt.content))
			if !errors.Is(err, tt.want) {
				t.Errorf("Load error = %v, want %v", err, tt.want)
			}
		})
	}

	t.Run("not found", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Load error = %v, want %v", err, ErrNotFound)
		}
	})
}

func TestWriteLoadRoundTrip(t *testing.T) {
	original := New([]Segment{
		{Start: 0, End: 1.2345, Text: "première ligne <b>"},
		{Start: 61.999, End: 59, Text: ""},
		{Start: 3725.4, End: 3727.01, Text: "日本語"},
	}, WithLanguage("fr"))

	path := filepath.Join(t.TempDir(), "nested", "out.json")
	if err := Write(path, original); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read record: %v", err)
	}
	if !strings.Contains(string(raw), "première ligne <b>") {
		t.Errorf("record should not escape non-ASCII or HTML: %s", raw)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if diff := cmp.Diff(original.Segments(), loaded.Segments()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if loaded.Language() != "fr" {
		t.Errorf("language = %q, want %q", loaded.Language(), "fr")
	}
}

func TestWriteEmptyTranscriptHasSegmentList(t *testing.T) {
	data, err := Marshal(New(nil))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if !strings.Contains(string(data), `"segments": []`) {
		t.Errorf("expected empty segment list, got %s", data)
	}
}
