package render

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mgpai22/attool/internal/transcript"
)

var ErrInvalidArgument = errors.New("invalid argument")

// tolerance applied to both window bounds, in minutes
const windowPad = 0.25

// Window is a time range in minutes.
type Window struct {
	Start float64
	End   float64
}

// whole transcript
func DefaultWindow() Window {
	return Window{Start: 0, End: math.Inf(1)}
}

// bounds in seconds, exclusive on both sides
func (w Window) bounds() (float64, float64) {
	return (w.Start - windowPad) * 60, (w.End + windowPad) * 60
}

// Contains reports whether a segment starting at startSeconds falls in the
// padded window. The start is truncated to whole seconds first.
func (w Window) Contains(startSeconds float64) bool {
	lo, hi := w.bounds()
	s := math.Trunc(startSeconds)
	return lo < s && s < hi
}

func (w Window) String() string {
	return fmt.Sprintf("[%g, %g] min", w.Start, w.End)
}

// ParseMinutes coerces a user supplied bound. Blank input yields def.
func ParseMinutes(s string, def float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %q is not a number of minutes", ErrInvalidArgument, s)
	}
	return v, nil
}

// ParseWindow builds a Window from character data, defaulting to
// DefaultWindow bounds for blank values.
func ParseWindow(start, end string) (Window, error) {
	w := DefaultWindow()

	var err error
	if w.Start, err = ParseMinutes(start, w.Start); err != nil {
		return Window{}, fmt.Errorf("start: %w", err)
	}
	if w.End, err = ParseMinutes(end, w.End); err != nil {
		return Window{}, fmt.Errorf("end: %w", err)
	}
	return w, nil
}

// Text joins the text of every segment inside w with newlines, in
// transcript order.
func Text(t *transcript.Transcript, w Window) string {
	lines := make([]string, 0, t.Len())
	for _, seg := range t.All() {
		if w.Contains(seg.Start) {
			lines = append(lines, seg.Text)
		}
	}
	return strings.Join(lines, "\n")
}

// TextFromStrings is Text with bounds given as character data.
func TextFromStrings(t *transcript.Transcript, start, end string) (string, error) {
	w, err := ParseWindow(start, end)
	if err != nil {
		return "", err
	}
	return Text(t, w), nil
}
