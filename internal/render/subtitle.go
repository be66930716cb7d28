package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/mgpai22/attool/internal/transcript"
)

// SRT renders every segment as a SubRip block. Blocks end with a newline
// and are separated by one more, leaving a blank line between them.
func SRT(t *transcript.Transcript) string {
	return cues(t, FormatSRTTime)
}

// WebVTT variant of SRT
func VTT(t *transcript.Transcript) string {
	return "WEBVTT\n\n" + cues(t, FormatVTTTime)
}

func cues(t *transcript.Transcript, format func(float64) string) string {
	var sb strings.Builder
	for i, seg := range t.All() {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n",
			i+1,
			format(seg.Start),
			format(seg.End),
			seg.Text,
		)
	}
	return sb.String()
}

// FormatSRTTime formats seconds as HH:MM:SS,mmm. Components are truncated,
// never rounded.
func FormatSRTTime(seconds float64) string {
	h, m, s, ms := splitSeconds(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func FormatVTTTime(seconds float64) string {
	h, m, s, ms := splitSeconds(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// milliseconds epsilon absorbs binary float artefacts such as
// 59.999*1000 = 59998.99999999999
const msEpsilon = 1e-4

func splitSeconds(seconds float64) (h, m, s, ms int64) {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Floor(seconds*1000 + msEpsilon))

	h = total / 3_600_000
	total %= 3_600_000
	m = total / 60_000
	total %= 60_000
	s = total / 1000
	ms = total % 1000
	return h, m, s, ms
}
