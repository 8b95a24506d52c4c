package util

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"ytfetch/internal/logger"
)

// stderrTail bounds how many stderr lines a CmdResult keeps.
const stderrTail = 50

// CmdSpec describes a subprocess to run.
type CmdSpec struct {
	Path string
	Args []string

	// StdoutLine receives stdout line by line. When set, stdout is not kept
	// in CmdResult.
	StdoutLine func(string)
}

// CmdResult holds what a finished subprocess left behind.
type CmdResult struct {
	Stdout []byte
	Stderr []byte // last stderrTail lines
	Code   int
	Err    error
}

// CmdRunner runs subprocesses. Tests substitute a fake.
type CmdRunner interface {
	Run(ctx context.Context, spec CmdSpec) (CmdResult, error)
}

type execRunner struct{}

// NewDefaultRunner returns a CmdRunner backed by os/exec.
func NewDefaultRunner() CmdRunner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, spec CmdSpec) (CmdResult, error) {
	return Run(ctx, spec)
}

// Run executes spec and waits for it. The process is killed when ctx ends.
// A non-zero exit is returned as an error with the result still filled in.
func Run(ctx context.Context, spec CmdSpec) (CmdResult, error) {
	log := logger.Get("exec")

	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return CmdResult{Code: -1, Err: err}, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return CmdResult{Code: -1, Err: err}, err
	}

	log.Debug().Str("cmd", commandLine(spec.Path, spec.Args)).Msg("starting")
	if err := cmd.Start(); err != nil {
		return CmdResult{Code: -1, Err: err}, err
	}

	var (
		wg   sync.WaitGroup
		out  bytes.Buffer
		tail []string
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		eachLine(stdout, func(line string) {
			if spec.StdoutLine != nil {
				spec.StdoutLine(line)
				return
			}
			out.WriteString(line)
			out.WriteByte('\n')
		})
	}()
	go func() {
		defer wg.Done()
		eachLine(stderr, func(line string) {
			log.Debug().Str("stream", "stderr").Msg(line)
			tail = append(tail, line)
			if len(tail) > stderrTail {
				tail = tail[1:]
			}
		})
	}()
	// Pipes must be drained before Wait closes them.
	wg.Wait()
	waitErr := cmd.Wait()

	res := CmdResult{Stdout: out.Bytes(), Err: waitErr}
	if len(tail) > 0 {
		res.Stderr = []byte(strings.Join(tail, "\n") + "\n")
	}
	if waitErr == nil {
		return res, nil
	}
	res.Code = -1
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		res.Code = exitErr.ExitCode()
	}
	return res, fmt.Errorf("%s exited with %d: %w", spec.Path, res.Code, waitErr)
}

func eachLine(r io.Reader, fn func(string)) {
	sc := bufio.NewScanner(r)
	// ffmpeg banners can exceed the default token size.
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		fn(sc.Text())
	}
	if err := sc.Err(); err != nil {
		log := logger.Get("exec")
		log.Debug().Err(err).Msg("scan error")
	}
	// Keep the child from blocking on a full pipe after a scan error.
	_, _ = io.Copy(io.Discard, r)
}

// commandLine renders path and args for logs, quoting where a shell would need it.
func commandLine(path string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, s := range append([]string{path}, args...) {
		if s == "" || strings.ContainsAny(s, " \t\n\"'\\$`;&|<>*?") {
			s = strconv.Quote(s)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}
