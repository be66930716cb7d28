package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"github.com/mgpai22/attool/internal/logging"
	"github.com/mgpai22/attool/internal/media"
	"github.com/mgpai22/attool/internal/render"
	"github.com/mgpai22/attool/internal/transcribe"
	"github.com/mgpai22/attool/internal/transcript"
	"github.com/mgpai22/attool/internal/video"
)

const DefaultWorkDir = "work"

// Options apply uniformly to every file of a run.
type Options struct {
	Start        float64 // minutes
	End          float64 // minutes, +Inf for no upper bound
	OutputFolder string  // empty means next to the input
	WorkDir      string
	Format       render.Format
	Overwrite    bool
	AudioCodec   string
}

func DefaultOptions() Options {
	return Options{
		Start:      0,
		End:        math.Inf(1),
		WorkDir:    DefaultWorkDir,
		Format:     render.FormatText,
		Overwrite:  true,
		AudioCodec: video.DefaultExtractOptions().Codec,
	}
}

type Option func(*Scheduler)

func WithClassifier(c *media.Classifier) Option {
	return func(s *Scheduler) {
		s.classifier = c
	}
}

// WithObserver registers a callback for terminal states.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		s.observer = o
	}
}

// Scheduler routes inputs through extraction, transcription and
// rendering. Files are handled one at a time; the work directory is shared
// scratch space.
type Scheduler struct {
	logger      *logging.Logger
	classifier  *media.Classifier
	extractor   video.Extractor
	transcriber transcribe.Transcriber
	renderer    render.Renderer
	opts        Options
	observer    Observer
}

func New(
	logger *logging.Logger,
	extractor video.Extractor,
	transcriber transcribe.Transcriber,
	opts Options,
	options ...Option,
) (*Scheduler, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.WorkDir == "" {
		opts.WorkDir = DefaultWorkDir
	}
	if opts.Format == "" {
		opts.Format = render.FormatText
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = video.DefaultExtractOptions().Codec
	}

	renderer, err := render.NewRenderer(opts.Format, render.Window{Start: opts.Start, End: opts.End})
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		logger:      logger.Named("pipeline"),
		classifier:  media.DefaultClassifier(),
		extractor:   extractor,
		transcriber: transcriber,
		renderer:    renderer,
		opts:        opts,
	}
	for _, o := range options {
		o(s)
	}
	return s, nil
}

// Run processes a directory's immediate entries or a single file. In
// directory mode a failing file is logged and the run moves on; the
// combined error of all failures is returned at the end.
func (s *Scheduler) Run(ctx context.Context, input string) error {
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("input not found: %w", err)
	}

	outputDir, err := s.outputFolder(input, info.IsDir())
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return s.process(ctx, input, outputDir).Err
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", input, err)
	}

	s.logger.Infow("Processing directory",
		"input", input,
		"entries", len(entries),
		"output", outputDir,
	)

	var errs error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}

		path := filepath.Join(input, entry.Name())
		if entry.IsDir() {
			s.logger.Debugw("Not descending into subdirectory", "path", path)
			s.finish(Result{Path: path, State: Skipped, Reason: ReasonSubdirectory})
			continue
		}

		switch kind := s.classifier.Classify(path); kind {
		case media.Video, media.Audio:
			if res := s.process(ctx, path, outputDir); res.Err != nil {
				errs = multierr.Append(errs, res.Err)
			}
		case media.Transcript:
			s.finish(Result{Path: path, Kind: kind, State: Skipped, Reason: ReasonTranscript})
		default:
			s.finish(Result{Path: path, Kind: kind, State: Skipped, Reason: ReasonUnsupported})
		}
	}

	return errs
}

// Process routes one file, with the output folder resolved from the file
// itself.
func (s *Scheduler) Process(ctx context.Context, path string) error {
	outputDir, err := s.outputFolder(path, false)
	if err != nil {
		return err
	}
	return s.process(ctx, path, outputDir).Err
}

func (s *Scheduler) process(ctx context.Context, path, outputDir string) Result {
	s.transition(path, Discovered)

	kind := s.classifier.Classify(path)
	s.transition(path, Classified, "kind", kind.String())

	res := Result{Path: path, Kind: kind}

	var err error
	switch kind {
	case media.Video:
		res.Output, err = s.processVideo(ctx, path, outputDir)
	case media.Audio:
		res.Output, err = s.processAudio(ctx, path, outputDir)
	case media.Transcript:
		res.Output, err = s.processTranscript(path, outputDir)
	default:
		res.State, res.Reason = Skipped, ReasonUnsupported
		s.finish(res)
		return res
	}

	if err != nil {
		res.State, res.Err, res.Output = Failed, fmt.Errorf("%s: %w", path, err), ""
	} else {
		res.State = Done
	}
	s.finish(res)
	return res
}

func (s *Scheduler) processVideo(ctx context.Context, path, outputDir string) (string, error) {
	s.transition(path, Extracting)

	audioPath, err := s.extractor.ExtractAudio(ctx, path, s.opts.WorkDir, video.ExtractOptions{
		Codec: s.opts.AudioCodec,
	})
	if err != nil {
		return "", err
	}
	s.logger.Debugw("Extracted audio", "input", path, "audio", audioPath)

	return s.processAudio(ctx, audioPath, outputDir)
}

func (s *Scheduler) processAudio(ctx context.Context, path, outputDir string) (string, error) {
	s.transition(path, Transcribing)

	result, err := s.transcriber.Transcribe(ctx, path)
	if err != nil {
		return "", err
	}

	recordPath := filepath.Join(s.opts.WorkDir, baseName(path)+media.TranscriptExtension)
	if err := transcript.Write(recordPath, result); err != nil {
		return "", err
	}
	s.logger.Debugw("Saved transcript", "path", recordPath, "segments", result.Len())

	return s.processTranscript(recordPath, outputDir)
}

func (s *Scheduler) processTranscript(path, outputDir string) (string, error) {
	s.transition(path, Rendering)

	t, err := transcript.Load(path)
	if err != nil {
		return "", err
	}
	if t.Len() == 0 {
		s.logger.Warnw("Transcript has no segments", "path", path)
	}
	for _, i := range t.Inverted() {
		seg := t.Segment(i)
		s.logger.Warnw("Segment ends before it starts",
			"path", path,
			"index", i,
			"start", seg.Start,
			"end", seg.End,
		)
	}

	outPath := filepath.Join(outputDir, baseName(path)+s.renderer.Format().Extension())
	written, err := render.WriteText(outPath, s.renderer.Render(t), s.opts.Overwrite)
	if err != nil {
		return "", err
	}
	if !written {
		s.logger.Infow("Output exists, not overwriting", "path", outPath)
	}
	return outPath, nil
}

// outputFolder is the configured folder (absolute, created on demand) or
// else the input directory itself or the directory holding the input file.
func (s *Scheduler) outputFolder(input string, isDir bool) (string, error) {
	if s.opts.OutputFolder != "" {
		dir, err := filepath.Abs(s.opts.OutputFolder)
		if err != nil {
			return "", fmt.Errorf("%w: resolving output folder: %v", render.ErrIO, err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("%w: failed to create output folder: %v", render.ErrIO, err)
		}
		return dir, nil
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return "", fmt.Errorf("%w: resolving input path: %v", render.ErrIO, err)
	}
	if isDir {
		return abs, nil
	}
	return filepath.Dir(abs), nil
}

func (s *Scheduler) transition(path string, state State, kv ...any) {
	s.logger.Debugw("State change", append([]any{"path", path, "state", state.String()}, kv...)...)
}

func (s *Scheduler) finish(res Result) {
	switch res.State {
	case Done:
		s.logger.Infow("Processed file", "path", res.Path, "output", res.Output)
	case Skipped:
		s.logger.Infow("Skipped file",
			"path", res.Path,
			"kind", res.Kind.String(),
			"reason", res.Reason,
		)
	case Failed:
		s.logger.Errorw("Failed to process file", "path", res.Path, "error", res.Err)
	}
	if s.observer != nil {
		s.observer(res)
	}
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
