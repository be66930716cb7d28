package render

import (
	"fmt"
	"strings"

	"github.com/mgpai22/attool/internal/transcript"
)

// output format of a rendered transcript
type Format string

const (
	FormatText Format = "txt"
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "txt", "text":
		return FormatText, nil
	case "srt":
		return FormatSRT, nil
	case "vtt":
		return FormatVTT, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q: use txt, srt, or vtt", ErrInvalidArgument, s)
	}
}

// file extension for a format
func (f Format) Extension() string {
	switch f {
	case FormatSRT:
		return ".srt"
	case FormatVTT:
		return ".vtt"
	default:
		return ".txt"
	}
}

// Renderer turns a transcript into the text of one output file.
type Renderer interface {
	Render(t *transcript.Transcript) string
	Format() Format
}

// time-filtered plain text
type TextRenderer struct {
	Window Window
}

// SubRip subtitles
type SRTRenderer struct{}

// WebVTT subtitles
type VTTRenderer struct{}

// NewRenderer picks a renderer for format. The window only applies to
// plain text; subtitles always carry every segment.
func NewRenderer(format Format, window Window) (Renderer, error) {
	switch format {
	case FormatText:
		return &TextRenderer{Window: window}, nil
	case FormatSRT:
		return &SRTRenderer{}, nil
	case FormatVTT:
		return &VTTRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported format: %s", ErrInvalidArgument, format)
	}
}

func (r *TextRenderer) Render(t *transcript.Transcript) string { return Text(t, r.Window) }
func (r *TextRenderer) Format() Format                         { return FormatText }

func (r *SRTRenderer) Render(t *transcript.Transcript) string { return SRT(t) }
func (r *SRTRenderer) Format() Format                         { return FormatSRT }

func (r *VTTRenderer) Render(t *transcript.Transcript) string { return VTT(t) }
func (r *VTTRenderer) Format() Format                         { return FormatVTT }
