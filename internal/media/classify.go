package media

import (
	"errors"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Kind is the processing route chosen for a path.
type Kind int

const (
	Unsupported Kind = iota
	Video
	Audio
	Transcript
)

func (k Kind) String() string {
	switch k {
	case Video:
		return "video"
	case Audio:
		return "audio"
	case Transcript:
		return "transcript"
	default:
		return "unsupported"
	}
}

// extension of persisted transcript records
const TranscriptExtension = ".json"

var (
	DefaultVideoExtensions = []string{
		".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv",
		".webm", ".m4v", ".mpeg", ".mpg", ".3gp", ".ts",
	}
	DefaultAudioExtensions = []string{
		".mp3", ".wav", ".aac", ".flac", ".ogg",
		".m4a", ".wma", ".aiff", ".opus",
	}
)

// Classifier decides a route from the file name alone; content is never
// inspected.
type Classifier struct {
	video map[string]bool
	audio map[string]bool
}

// NewClassifier builds a classifier from extension lists. Entries may
// omit the leading dot and are matched case-insensitively; empty lists
// fall back to the defaults.
func NewClassifier(videoExts, audioExts []string) *Classifier {
	if len(videoExts) == 0 {
		videoExts = DefaultVideoExtensions
	}
	if len(audioExts) == 0 {
		audioExts = DefaultAudioExtensions
	}
	return &Classifier{
		video: extensionSet(videoExts),
		audio: extensionSet(audioExts),
	}
}

func DefaultClassifier() *Classifier {
	return NewClassifier(nil, nil)
}

func (c *Classifier) Classify(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == "":
		return Unsupported
	case c.video[ext]:
		return Video
	case c.audio[ext]:
		return Audio
	case ext == TranscriptExtension:
		return Transcript
	default:
		return Unsupported
	}
}

// checks if the file is a video based on extension
func (c *Classifier) IsVideo(path string) bool {
	return c.Classify(path) == Video
}

// checks if the file is either audio or video
func (c *Classifier) IsMedia(path string) bool {
	kind := c.Classify(path)
	return kind == Video || kind == Audio
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}
