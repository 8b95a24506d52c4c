package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"ytfetch/internal/model"
)

// State is a step of the download session state machine.
type State string

const (
	StateIdle            State = "Idle"
	StateValidatingURL   State = "ValidatingURL"
	StateFetchingInfo    State = "FetchingInfo"
	StateSelectingFormat State = "SelectingFormat"
	StateDownloading     State = "Downloading"
	StateConverting      State = "Converting"
	StateCompleted       State = "Completed"
	StateError           State = "Error"
)

// MaxAttempts is the retry ceiling for network-bound operations, counted
// across the whole session.
const MaxAttempts = 3

// transitions lists every legal edge. Error -> FetchingInfo and
// Error -> Downloading are retries.
var transitions = map[State][]State{
	StateIdle:            {StateValidatingURL},
	StateValidatingURL:   {StateIdle, StateFetchingInfo},
	StateFetchingInfo:    {StateSelectingFormat, StateError},
	StateSelectingFormat: {StateDownloading},
	StateDownloading:     {StateCompleted, StateConverting, StateError},
	StateConverting:      {StateCompleted, StateError},
	StateError:           {StateFetchingInfo, StateDownloading},
}

// Transition records one state change.
type Transition struct {
	From State
	To   State
	At   time.Time
}

// Session is one request lifecycle. It is owned by the Service that created
// it and mutated only through its transitions.
type Session struct {
	ID      string
	Request model.DownloadRequest
	Info    *model.VideoInfo
	Options model.ExtractionOptions

	State          State
	AttemptCount   int
	LastError      error
	OutputFilePath string // set iff State == StateCompleted
	Bytes          int64
	Warnings       []string
	History        []Transition

	frozen bool // request is immutable once downloading begins
}

func newSession(req model.DownloadRequest) *Session {
	return &Session{
		ID:      uuid.NewString(),
		Request: req,
		State:   StateIdle,
	}
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s *Session) transition(to State) error {
	if !CanTransition(s.State, to) {
		return fmt.Errorf("illegal transition %s -> %s", s.State, to)
	}
	s.History = append(s.History, Transition{From: s.State, To: to, At: time.Now()})
	s.State = to
	if to == StateDownloading {
		s.frozen = true
	}
	if to != StateCompleted {
		s.OutputFilePath = ""
	}
	return nil
}

// Visited returns every state the session has been in, in order, starting
// with Idle.
func (s *Session) Visited() []State {
	out := []State{StateIdle}
	for _, t := range s.History {
		out = append(out, t.To)
	}
	return out
}

// Done reports whether the session reached a terminal state.
func (s *Session) Done() bool {
	return s.State == StateCompleted || s.State == StateError
}

func (s *Session) warn(msg string) {
	s.Warnings = append(s.Warnings, msg)
}
