package transcript

import (
	"iter"
	"strings"
)

// Segment is one transcribed utterance, times in seconds.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Transcript is an ordered, immutable list of segments. Order is the order
// the segments were produced or persisted in; it is never re-sorted.
type Transcript struct {
	segments []Segment
	language string
	text     string
}

type Option func(*Transcript)

func WithLanguage(language string) Option {
	return func(t *Transcript) {
		t.language = language
	}
}

// full transcript text as reported by the engine
func WithText(text string) Option {
	return func(t *Transcript) {
		t.text = text
	}
}

// New copies segments so later changes to the caller's slice are not seen.
func New(segments []Segment, opts ...Option) *Transcript {
	t := &Transcript{
		segments: append([]Segment(nil), segments...),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transcript) Len() int {
	if t == nil {
		return 0
	}
	return len(t.segments)
}

func (t *Transcript) Segment(i int) Segment {
	return t.segments[i]
}

// Segments returns a copy of the segment list.
func (t *Transcript) Segments() []Segment {
	if t == nil {
		return nil
	}
	return append([]Segment(nil), t.segments...)
}

// All iterates segments in transcript order.
func (t *Transcript) All() iter.Seq2[int, Segment] {
	return func(yield func(int, Segment) bool) {
		if t == nil {
			return
		}
		for i, seg := range t.segments {
			if !yield(i, seg) {
				return
			}
		}
	}
}

func (t *Transcript) Language() string {
	if t == nil {
		return ""
	}
	return t.language
}

// Text returns the engine supplied full text, or the segment texts joined
// by spaces when none was recorded.
func (t *Transcript) Text() string {
	if t == nil {
		return ""
	}
	if t.text != "" {
		return t.text
	}
	parts := make([]string, 0, len(t.segments))
	for _, seg := range t.segments {
		if s := strings.TrimSpace(seg.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Inverted lists the indexes of segments whose end does not come after
// their start. Such segments are kept; callers only warn about them.
func (t *Transcript) Inverted() []int {
	var idx []int
	for i, seg := range t.All() {
		if seg.Duration() <= 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

// WithSegmentTexts returns a new transcript with the same timings and
// metadata and the texts replaced. texts must have one entry per segment.
func (t *Transcript) WithSegmentTexts(texts []string, opts ...Option) *Transcript {
	segments := t.Segments()
	for i := range segments {
		if i < len(texts) {
			segments[i].Text = texts[i]
		}
	}
	out := New(segments, WithLanguage(t.language))
	for _, opt := range opts {
		opt(out)
	}
	return out
}
