package pipeline

import "github.com/mgpai22/attool/internal/media"

// State is where a file is in its processing lifecycle.
type State int

const (
	Discovered State = iota
	Classified
	Extracting
	Transcribing
	Rendering
	Done
	Skipped
	Failed
)

func (s State) String() string {
	switch s {
	case Discovered:
		return "discovered"
	case Classified:
		return "classified"
	case Extracting:
		return "extracting"
	case Transcribing:
		return "transcribing"
	case Rendering:
		return "rendering"
	case Done:
		return "done"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the terminal outcome for one file.
type Result struct {
	Path   string
	Kind   media.Kind
	State  State
	Output string // rendered file; empty unless Done
	Err    error  // set when Failed
	Reason string // set when Skipped
}

// skip reasons
const (
	ReasonUnsupported  = "unsupported file format"
	ReasonSubdirectory = "subdirectory"
	ReasonTranscript   = "transcript in directory mode"
)

// Observer receives each file's Result once it reaches a terminal state.
type Observer func(Result)
