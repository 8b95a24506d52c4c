package progress

import "time"

// Stage identifies a high-level step in the session.
type Stage string

const (
	StageValidating  Stage = "validating"
	StageMetadata    Stage = "metadata"
	StageDownloading Stage = "downloading"
	StageConverting  Stage = "converting"
	StageRetrying    Stage = "retrying"
	StageCompleted   Stage = "completed"
	StageError       Stage = "error"
)

// LogLevel indicates how a log line should be rendered.
type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelWarn
)

// Update conveys progress or stage changes for a session.
// Percent is 0..100 when known; set to a negative value (e.g., -1) to mean unknown.
type Update struct {
	JobID   string
	Stage   Stage
	Percent float64 // 0..100, or <0 if unknown

	ETA     *time.Duration // optional
	Bytes   *int64         // optional cumulative bytes
	Total   *int64         // optional expected bytes
	Speed   *string        // optional, e.g., "2.5 MB/s" or "1.2x"
	Message string         // short human-friendly status line
}

// Final reports whether the update closes out a stage (100% or terminal).
// Final updates are never coalesced away.
func (u Update) Final() bool {
	return u.Percent >= 100 || u.Stage == StageCompleted || u.Stage == StageError
}

// Log is a line associated with a session, e.g. a non-fatal warning.
type Log struct {
	JobID string
	Level LogLevel
	Line  string
}

// Result is emitted once per session when it completes or fails.
type Result struct {
	JobID      string
	OutputPath string
	Bytes      int64
	Warnings   []string
	Err        error // nil on success
}

// Reporter is implemented by UI or any observer interested in progress events.
type Reporter interface {
	Update(u Update)
	Log(l Log)
	Result(r Result)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Update(Update) {}
func (Nop) Log(Log)       {}
func (Nop) Result(Result) {}
