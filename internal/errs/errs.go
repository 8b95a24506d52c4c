// Package errs defines the failure taxonomy shared by the fetcher, the
// download engines, the converter and the CLI.
package errs

import (
	"context"
	"errors"
	"fmt"

	"ytfetch/internal/util/format"
)

var (
	// ErrInvalidURL indicates the input is not an accepted YouTube video URL.
	ErrInvalidURL = errors.New("invalid YouTube URL")
	// ErrUnavailable indicates the video is private, deleted or region-locked.
	ErrUnavailable = errors.New("video unavailable")
	// ErrNetwork indicates a transient network failure.
	ErrNetwork = errors.New("network failure")
	// ErrAuthRequired indicates the video needs cookies from a signed-in session.
	ErrAuthRequired = errors.New("authentication required")
	// ErrDiskFull indicates the output volume ran out of space.
	ErrDiskFull = errors.New("disk full")
	// ErrCancelled indicates the user interrupted the session.
	ErrCancelled = errors.New("cancelled")
	// ErrToolMissing indicates an external binary could not be found.
	ErrToolMissing = errors.New("tool missing")
	// ErrTranscode indicates the conversion tool failed.
	ErrTranscode = errors.New("transcode failed")
)

// Kind classifies an Error. Each kind maps to one sentinel above.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidURL
	KindUnavailable
	KindNetwork
	KindAuthRequired
	KindDiskFull
	KindCancelled
	KindToolMissing
	KindTranscode
)

var sentinels = map[Kind]error{
	KindInvalidURL:   ErrInvalidURL,
	KindUnavailable:  ErrUnavailable,
	KindNetwork:      ErrNetwork,
	KindAuthRequired: ErrAuthRequired,
	KindDiskFull:     ErrDiskFull,
	KindCancelled:    ErrCancelled,
	KindToolMissing:  ErrToolMissing,
	KindTranscode:    ErrTranscode,
}

// Stage names the pipeline step that produced an error.
type Stage string

const (
	StageValidate Stage = "validate"
	StageFetch    Stage = "fetch"
	StageDownload Stage = "download"
	StageConvert  Stage = "convert"
)

// Category groups kinds for human-readable reporting.
type Category string

const (
	CategoryInput    Category = "input"
	CategoryNetwork  Category = "network"
	CategoryContent  Category = "content"
	CategoryResource Category = "local resource"
)

// Error is a classified failure.
type Error struct {
	Kind   Kind
	Stage  Stage
	Reason string // preserved for display, e.g. "Private video"
	Tool   string // for KindToolMissing

	// Required and Available are byte counts for KindDiskFull; zero if unknown.
	Required  uint64
	Available uint64

	Err error // underlying cause
}

// New returns an *Error of the given kind.
func New(kind Kind, stage Stage, cause error) *Error {
	return &Error{Kind: kind, Stage: stage, Err: cause}
}

// Unavailable returns a KindUnavailable error with a display reason.
func Unavailable(stage Stage, reason string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Stage: stage, Reason: reason, Err: cause}
}

// DiskFull returns a KindDiskFull error with the space figures, if known.
func DiskFull(stage Stage, required, available uint64, cause error) *Error {
	return &Error{Kind: KindDiskFull, Stage: stage, Required: required, Available: available, Err: cause}
}

// ToolMissing returns a KindToolMissing error for the named binary.
func ToolMissing(stage Stage, tool string, cause error) *Error {
	return &Error{Kind: KindToolMissing, Stage: stage, Tool: tool, Err: cause}
}

func (e *Error) Error() string {
	msg := e.message()
	if e.Stage != "" {
		msg = string(e.Stage) + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) message() string {
	switch e.Kind {
	case KindUnavailable, KindNetwork, KindAuthRequired:
		if e.Reason != "" {
			return fmt.Sprintf("%s (%s)", sentinels[e.Kind], e.Reason)
		}
	case KindDiskFull:
		if e.Required > 0 {
			return fmt.Sprintf("disk full (required %s, available %s)",
				format.HumanizeBytes(int64(e.Required)), format.HumanizeBytes(int64(e.Available)))
		}
	case KindToolMissing:
		if e.Tool != "" {
			return e.Tool + " not found"
		}
	case KindUnknown:
		return "unexpected failure"
	}
	return sentinels[e.Kind].Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// Category reports whether the failure came from the input, the network,
// the content itself or the local machine.
func (e *Error) Category() Category {
	switch e.Kind {
	case KindInvalidURL, KindCancelled:
		return CategoryInput
	case KindNetwork:
		return CategoryNetwork
	case KindUnavailable, KindAuthRequired:
		return CategoryContent
	default:
		return CategoryResource
	}
}

// KindOf returns the Kind of err, or KindUnknown when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	return KindUnknown
}

// Retryable reports whether err is network-class and may be retried.
func Retryable(err error) bool {
	return KindOf(err) == KindNetwork
}

// Describe renders err for the terminal, prefixed with its cause category.
func Describe(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return fmt.Sprintf("%s error: %s", e.Category(), e.Error())
	}
	return err.Error()
}
