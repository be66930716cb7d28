package ffmpeg

import (
	"errors"
	"testing"
)

func TestResolvePrefersEnvironment(t *testing.T) {
	env := map[string]string{
		EnvFFmpegPath:  "/opt/ffmpeg",
		EnvFFprobePath: "/opt/ffprobe",
	}
	lookPath := func(string) (string, error) {
		t.Fatal("PATH lookup should not run when both overrides are set")
		return "", nil
	}

	paths, err := resolve(func(k string) string { return env[k] }, lookPath, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paths.FFmpeg != "/opt/ffmpeg" || paths.FFprobe != "/opt/ffprobe" {
		t.Errorf("unexpected paths: %+v", paths)
	}
}

func TestResolveMixesEnvironmentAndPath(t *testing.T) {
	env := map[string]string{EnvFFmpegPath: "/custom/ffmpeg"}
	lookPath := func(name string) (string, error) {
		return "/usr/bin/" + name, nil
	}

	paths, err := resolve(func(k string) string { return env[k] }, lookPath, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paths.FFmpeg != "/custom/ffmpeg" || paths.FFprobe != "/usr/bin/ffprobe" {
		t.Errorf("unexpected paths: %+v", paths)
	}
}

func TestResolveFallsBackToDownload(t *testing.T) {
	lookPath := func(string) (string, error) { return "", errors.New("not found") }
	downloaded := false
	download := func() (BinaryPaths, error) {
		downloaded = true
		return BinaryPaths{FFmpeg: "/cache/ffmpeg", FFprobe: "/cache/ffprobe"}, nil
	}

	paths, err := resolve(func(string) string { return "" }, lookPath, download)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !downloaded || paths.FFmpeg != "/cache/ffmpeg" {
		t.Errorf("expected download fallback, got %+v", paths)
	}
}

func TestAssetForPlatform(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
		wantErr      bool
	}{
		{"linux", "amd64", "ffmpeg-6.1-linux-64.zip", false},
		{"linux", "arm64", "ffmpeg-6.1-linux-arm-64.zip", false},
		{"darwin", "amd64", "ffmpeg-6.1-macos-64.zip", false},
		{"windows", "amd64", "ffmpeg-6.1-win-64.zip", false},
		{"plan9", "386", "", true},
	}

	for _, tt := range tests {
		got, err := assetForPlatform(tt.goos, tt.goarch)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s/%s: expected error", tt.goos, tt.goarch)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%s/%s = %q, %v; want %q", tt.goos, tt.goarch, got, err, tt.want)
		}
	}
}
