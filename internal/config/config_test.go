package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/mgpai22/attool/internal/logging"
	"github.com/mgpai22/attool/internal/render"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadINI(t *testing.T) {
	path := writeFile(t, "setting.ini", `[SETTINGS]
input = /data/lectures
start = 1.5
end =
output = ./out
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := &Settings{
		Input:        "/data/lectures",
		Start:        "1.5",
		Output:       "./out",
		WorkDir:      "work",
		Format:       "txt",
		Provider:     "whisper",
		Codec:        "aac",
		StartMinutes: 1.5,
		EndMinutes:   math.Inf(1),
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "attool.yaml", `
input: clip.mp4
start: 0
end: "4"
format: srt
provider: gemini
model: gemini-2.5-pro
language: ja
work_dir: /tmp/attool
codec: mp3
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := &Settings{
		Input:        "clip.mp4",
		Start:        "0",
		End:          "4",
		Format:       "srt",
		Provider:     "gemini",
		Model:        "gemini-2.5-pro",
		Language:     "ja",
		WorkDir:      "/tmp/attool",
		Codec:        "mp3",
		StartMinutes: 0,
		EndMinutes:   4,
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
	if s.Window() != (render.Window{Start: 0, End: 4}) {
		t.Errorf("Window() = %+v", s.Window())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{"missing section", "a.ini", "[OTHER]\ninput = x\n"},
		{"bad start", "b.ini", "[SETTINGS]\nstart = soon\n"},
		{"bad format", "c.yaml", "format: docx\n"},
		{"bad provider", "d.yaml", "provider: deepgram\n"},
		{"bad yaml", "e.yaml", "input: [unclosed\n"},
		{"unknown extension", "f.toml", "input = 'x'\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.file, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Load(writeFile(t, "g.ini", "[SETTINGS]\nend = NaN\n")); !errors.Is(err, render.ErrInvalidArgument) {
		t.Errorf("bad end should wrap ErrInvalidArgument, got %v", err)
	}
}

func TestDefault(t *testing.T) {
	s := Default()
	if s.StartMinutes != 0 || !math.IsInf(s.EndMinutes, 1) {
		t.Errorf("unexpected window: %v..%v", s.StartMinutes, s.EndMinutes)
	}
	if diff := cmp.Diff(
		Settings{WorkDir: "work", Format: "txt", Provider: "whisper", Codec: "aac"},
		*s,
		cmpopts.IgnoreFields(Settings{}, "StartMinutes", "EndMinutes"),
	); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvGeminiKey, "")
	os.Unsetenv(EnvGeminiKey)

	dir := t.TempDir()
	present := filepath.Join(dir, ".env")
	if err := os.WriteFile(present, []byte("GEMINI_API_KEY=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}

	loaded := LoadEnv(logging.NewNop(), present, filepath.Join(dir, "missing.env"))
	if diff := cmp.Diff([]string{present}, loaded); diff != "" {
		t.Errorf("loaded files (-want +got):\n%s", diff)
	}
	if got := APIKey("gemini", ""); got != "from-file" {
		t.Errorf("APIKey(gemini) = %q, want from-file", got)
	}
	if got := APIKey("gemini", "explicit"); got != "explicit" {
		t.Errorf("explicit key should win, got %q", got)
	}
	if got := APIKey("whisper", ""); got != "" {
		t.Errorf("whisper needs no key, got %q", got)
	}
}
