package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestPlanChunks(t *testing.T) {
	got := planChunks("/in/talk.mp3", "/tmp/chunks", 25*time.Minute, 10*time.Minute)
	want := []ChunkInfo{
		{Path: filepath.Join("/tmp/chunks", "talk_chunk_000.mp3"), Index: 0, StartTime: 0, EndTime: 10 * time.Minute},
		{Path: filepath.Join("/tmp/chunks", "talk_chunk_001.mp3"), Index: 1, StartTime: 10 * time.Minute, EndTime: 20 * time.Minute},
		{Path: filepath.Join("/tmp/chunks", "talk_chunk_002.mp3"), Index: 2, StartTime: 20 * time.Minute, EndTime: 25 * time.Minute},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("planChunks mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanChunksExactMultiple(t *testing.T) {
	got := planChunks("a.mp3", "out", 20*time.Minute, 10*time.Minute)
	if len(got) != 2 {
		t.Fatalf("got %d chunks, want 2", len(got))
	}
	if got[1].EndTime != 20*time.Minute {
		t.Errorf("last chunk ends at %v", got[1].EndTime)
	}
}

func TestParseProbeDuration(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"decimal string", `{"format":{"duration":"12.500000"}}`, 12500 * time.Millisecond, false},
		{"number", `{"format":{"duration":3}}`, 3 * time.Second, false},
		{"missing", `{"format":{}}`, 0, true},
		{"garbage", `not json`, 0, true},
		{"zero", `{"format":{"duration":"0"}}`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbeDuration([]byte(tt.in))
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompressionArgs(t *testing.T) {
	got := compressionArgs(DefaultCompressionOptions())
	if got["acodec"] != "libmp3lame" || got["b:a"] != "64k" || got["ac"] != 1 {
		t.Errorf("unexpected args: %v", got)
	}
	if compressionArgs(CompressionOptions{Format: "aac"})["acodec"] != "aac" {
		t.Error("aac format should use the aac encoder")
	}
}

func TestCleanupChunks(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "a_chunk_000.mp3")
	if err := os.WriteFile(present, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	chunks := []ChunkInfo{{Path: present}, {Path: filepath.Join(dir, "gone.mp3")}}

	if err := CleanupChunks(chunks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(present); !os.IsNotExist(err) {
		t.Error("chunk file should be removed")
	}
}
