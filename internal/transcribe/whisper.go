package transcribe

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mgpai22/attool/internal/transcript"
)

// WhisperTranscriber runs the local openai-whisper CLI and reads back its
// JSON output.
type WhisperTranscriber struct {
	binary  string
	model   string
	options Options

	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewWhisperTranscriber(opts Options) *WhisperTranscriber {
	binary := opts.WhisperBinary
	if binary == "" {
		binary = defaultWhisperBinary
	}
	model := opts.Model
	if model == "" {
		model = DefaultWhisperModel
	}
	return &WhisperTranscriber{
		binary:  binary,
		model:   model,
		options: opts,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (*transcript.Transcript, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, failed("audio file not found: %s", audioPath)
	}

	outDir, err := os.MkdirTemp("", "attool-whisper-*")
	if err != nil {
		return nil, failed("failed to create temp directory: %v", err)
	}
	defer func() { _ = os.RemoveAll(outDir) }()

	if out, err := t.run(ctx, t.binary, t.args(audioPath, outDir)...); err != nil {
		return nil, failed("%s: %v: %s", t.binary, err, strings.TrimSpace(string(out)))
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	result, err := transcript.Load(filepath.Join(outDir, base+".json"))
	if err != nil {
		return nil, failed("reading whisper output: %v", err)
	}
	return result, nil
}

func (t *WhisperTranscriber) args(audioPath, outDir string) []string {
	args := []string{
		audioPath,
		"--model", t.model,
		"--output_format", "json",
		"--output_dir", outDir,
		"--verbose", "False",
	}
	if t.options.Language != "" {
		args = append(args, "--language", t.options.Language)
	}
	if t.shouldTranslate() {
		args = append(args, "--task", "translate")
	}
	if t.options.Prompt != "" {
		args = append(args, "--initial_prompt", t.options.Prompt)
	}
	return args
}

// whisper can only translate into English
func (t *WhisperTranscriber) shouldTranslate() bool {
	return isEnglish(t.options.TranscriptLanguage)
}

func isEnglish(lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	return lang == "english" || lang == "en"
}
