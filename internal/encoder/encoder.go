// Package encoder converts downloaded media with ffmpeg.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"ytfetch/internal/errs"
	"ytfetch/internal/logger"
	"ytfetch/internal/model"
	"ytfetch/internal/progress"
	"ytfetch/internal/util"
	"ytfetch/internal/util/deps"
)

// FFmpeg runs ffmpeg conversions.
type FFmpeg struct {
	runner  util.CmdRunner
	locator *deps.Locator
	log     zerolog.Logger
}

// Option configures FFmpeg.
type Option func(*FFmpeg)

// WithRunner replaces the subprocess runner.
func WithRunner(r util.CmdRunner) Option {
	return func(f *FFmpeg) {
		f.runner = r
	}
}

// WithLocator replaces the ffmpeg lookup.
func WithLocator(l *deps.Locator) Option {
	return func(f *FFmpeg) {
		f.locator = l
	}
}

// New returns an FFmpeg converter using the process-wide ffmpeg lookup.
func New(opts ...Option) *FFmpeg {
	f := &FFmpeg{
		runner:  util.NewDefaultRunner(),
		locator: deps.FFmpeg(),
		log:     logger.Get("ffmpeg"),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Available reports whether ffmpeg was found. The lookup runs once.
func (f *FFmpeg) Available() error {
	_, err := f.locator.Locate()
	return err
}

// Convert transcodes task.InputPath into task.OutputPath. A partial output is
// removed on failure.
func (f *FFmpeg) Convert(ctx context.Context, task model.ConvertTask, onProgress func(progress.Update)) error {
	path, err := f.locator.Locate()
	if err != nil {
		return err
	}
	if task.InputPath == "" || task.OutputPath == "" {
		return errs.New(errs.KindTranscode, errs.StageConvert, errors.New("input and output paths are required"))
	}
	if err := util.EnsureDir(filepath.Dir(task.OutputPath)); err != nil {
		return errs.New(errs.KindTranscode, errs.StageConvert, fmt.Errorf("ensure output dir: %w", err))
	}

	var ps ProgressState
	spec := util.CmdSpec{
		Path: path,
		Args: BuildArgs(task, onProgress != nil),
	}
	if onProgress != nil {
		spec.StdoutLine = func(line string) {
			if u, ok := ps.UpdateFromLine(line, task.DurationSec); ok {
				onProgress(u)
			}
		}
	}

	f.log.Debug().Str("in", task.InputPath).Str("out", task.OutputPath).Msg("converting")
	res, runErr := f.runner.Run(ctx, spec)
	if runErr != nil {
		_ = util.RemoveIfExists(task.OutputPath)
		return classify(ctx, string(res.Stderr), runErr)
	}
	if _, err := os.Stat(task.OutputPath); err != nil {
		return errs.New(errs.KindTranscode, errs.StageConvert, fmt.Errorf("stat output: %w", err))
	}
	return nil
}

func classify(ctx context.Context, stderr string, err error) error {
	if ctx.Err() != nil {
		return errs.New(errs.KindCancelled, errs.StageConvert, ctx.Err())
	}
	if strings.Contains(strings.ToLower(stderr), "no space left on device") {
		return errs.DiskFull(errs.StageConvert, 0, 0, err)
	}
	if line := lastLine(stderr); line != "" {
		err = fmt.Errorf("%w: %s", err, line)
	}
	return errs.New(errs.KindTranscode, errs.StageConvert, err)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
