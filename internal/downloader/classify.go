package downloader

import (
	"context"
	"errors"
	"net"
	"os/exec"
	"strings"
	"syscall"

	"ytfetch/internal/errs"
)

// RateLimitHint is attached to HTTP 429 failures.
const RateLimitHint = "rate limited by YouTube; wait a while or pass --browser/--cookies"

type stderrRule struct {
	needles []string
	build   func(stage errs.Stage, line string, cause error) *errs.Error
}

func unavailable(reason string) func(errs.Stage, string, error) *errs.Error {
	return func(stage errs.Stage, _ string, cause error) *errs.Error {
		return errs.Unavailable(stage, reason, cause)
	}
}

func kind(k errs.Kind, reason string) func(errs.Stage, string, error) *errs.Error {
	return func(stage errs.Stage, _ string, cause error) *errs.Error {
		return &errs.Error{Kind: k, Stage: stage, Reason: reason, Err: cause}
	}
}

// Order matters: the first rule with a matching needle wins.
var stderrRules = []stderrRule{
	{[]string{"private video"}, unavailable("Private video")},
	{[]string{"sign in to confirm your age", "age-restricted", "inappropriate for some users"},
		kind(errs.KindAuthRequired, "age-restricted; pass --browser or --cookies")},
	{[]string{"sign in to confirm you", "login required", "members-only", "join this channel"},
		kind(errs.KindAuthRequired, "sign-in required; pass --browser or --cookies")},
	{[]string{"http error 429", "too many requests"}, kind(errs.KindNetwork, RateLimitHint)},
	{[]string{"available in your country", "blocked it in your country", "geo restrict"},
		unavailable("region-locked")},
	{[]string{"removed by the uploader", "account associated with this video has been terminated", "has been removed"},
		unavailable("removed")},
	{[]string{"requested format is not available"}, unavailable("requested format not available")},
	{[]string{"video unavailable", "this video is unavailable", "is not a valid url", "incomplete youtube id"},
		unavailable("")},
	{[]string{"no space left on device"}, func(stage errs.Stage, _ string, cause error) *errs.Error {
		return errs.DiskFull(stage, 0, 0, cause)
	}},
	{[]string{"ffmpeg not found", "ffmpeg is not installed", "ffprobe and ffmpeg not found"},
		func(stage errs.Stage, _ string, cause error) *errs.Error {
			return errs.ToolMissing(stage, "ffmpeg", cause)
		}},
	{[]string{
		"unable to download", "connection reset", "connection refused", "timed out", "timeout",
		"temporary failure in name resolution", "network is unreachable", "name or service not known",
		"http error 5", "http error 403", "remote end closed", "read operation timed out",
		"incompleteread", "ssl", "getaddrinfo failed", "unable to connect",
	}, kind(errs.KindNetwork, "")},
}

// classifyFailure maps a yt-dlp failure to an *errs.Error using its stderr.
func classifyFailure(ctx context.Context, stage errs.Stage, stderr string, cause error) *errs.Error {
	if ctx.Err() != nil {
		return errs.New(errs.KindCancelled, stage, ctx.Err())
	}
	if errors.Is(cause, exec.ErrNotFound) {
		return errs.ToolMissing(stage, "yt-dlp", cause)
	}
	if errors.Is(cause, syscall.ENOSPC) {
		return errs.DiskFull(stage, 0, 0, cause)
	}
	if e := classifyStderr(stage, stderr, cause); e != nil {
		return e
	}
	var netErr net.Error
	if errors.As(cause, &netErr) {
		return errs.New(errs.KindNetwork, stage, cause)
	}
	return errs.New(errs.KindUnknown, stage, withStderr(cause, stderr))
}

func classifyStderr(stage errs.Stage, stderr string, cause error) *errs.Error {
	for _, line := range errorLines(stderr) {
		low := strings.ToLower(line)
		for _, r := range stderrRules {
			for _, n := range r.needles {
				if strings.Contains(low, n) {
					return r.build(stage, line, withStderr(cause, line))
				}
			}
		}
	}
	return nil
}

// errorLines returns the ERROR lines of stderr, or every non-empty line when
// there are none.
func errorLines(stderr string) []string {
	var errLines, all []string
	for _, l := range strings.Split(stderr, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		all = append(all, l)
		if strings.HasPrefix(l, "ERROR:") {
			errLines = append(errLines, l)
		}
	}
	if len(errLines) > 0 {
		return errLines
	}
	return all
}

type stderrError struct {
	cause error
	line  string
}

func (e *stderrError) Error() string {
	if e.cause == nil {
		return e.line
	}
	return e.cause.Error() + ": " + e.line
}

func (e *stderrError) Unwrap() error { return e.cause }

func withStderr(cause error, stderr string) error {
	lines := errorLines(stderr)
	if len(lines) == 0 {
		return cause
	}
	return &stderrError{cause: cause, line: strings.TrimPrefix(lines[len(lines)-1], "ERROR: ")}
}
