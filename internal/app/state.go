package app

// State tracks where a recording session is in its life.
type State int32

const (
	// StateIdle means no session is active.
	StateIdle State = iota
	// StateRecording means the input stream is open and accumulating samples.
	StateRecording
	// StateDraining means the stream is torn down and the buffer is being
	// converted to the canonical format.
	StateDraining
	// StateTranscribing means a backend call is in flight.
	StateTranscribing
)

func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StateDraining:
		return "draining"
	case StateTranscribing:
		return "transcribing"
	default:
		return "idle"
	}
}
