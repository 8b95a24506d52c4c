package encoder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ytfetch/internal/errs"
	"ytfetch/internal/model"
	"ytfetch/internal/progress"
	"ytfetch/internal/util"
	"ytfetch/internal/util/deps"
)

type fakeRunner struct {
	specs  []util.CmdSpec
	lines  []string
	stderr string
	err    error
	write  bool
}

func (f *fakeRunner) Run(_ context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	f.specs = append(f.specs, spec)
	out := spec.Args[len(spec.Args)-1]
	if f.write || f.err != nil {
		if err := os.WriteFile(out, []byte("data"), 0o644); err != nil {
			return util.CmdResult{}, err
		}
	}
	for _, l := range f.lines {
		if spec.StdoutLine != nil {
			spec.StdoutLine(l)
		}
	}
	return util.CmdResult{Stderr: []byte(f.stderr), Err: f.err}, f.err
}

func found(path string) *deps.Locator {
	return deps.NewLocator(func() (string, error) { return path, nil })
}

func TestConvertReportsProgress(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{write: true, lines: []string{"out_time_us=106000000", "progress=continue"}}
	ff := New(WithRunner(runner), WithLocator(found("/usr/bin/ffmpeg")))

	var updates []progress.Update
	task := model.ConvertTask{
		InputPath:   filepath.Join(dir, "in.webm"),
		OutputPath:  filepath.Join(dir, "out", "song.mp3"),
		Options:     model.ExtractionOptions{AudioOnly: true, TargetCodec: "mp3", BitrateKbps: 320},
		DurationSec: 212,
	}
	if err := ff.Convert(context.Background(), task, func(u progress.Update) { updates = append(updates, u) }); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(runner.specs) != 1 || runner.specs[0].Path != "/usr/bin/ffmpeg" {
		t.Fatalf("specs = %+v", runner.specs)
	}
	if len(updates) != 1 || updates[0].Percent != 50 {
		t.Errorf("updates = %+v", updates)
	}
	if _, err := os.Stat(task.OutputPath); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestConvertFailureRemovesPartialOutput(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{err: errors.New("exit status 1"), stderr: "Error while decoding stream #0:0\nConversion failed!"}
	ff := New(WithRunner(runner), WithLocator(found("ffmpeg")))
	task := model.ConvertTask{InputPath: "in.webm", OutputPath: filepath.Join(dir, "out.m4a")}

	err := ff.Convert(context.Background(), task, nil)
	if !errors.Is(err, errs.ErrTranscode) {
		t.Fatalf("err = %v, want transcode failure", err)
	}
	if _, statErr := os.Stat(task.OutputPath); !os.IsNotExist(statErr) {
		t.Errorf("partial output kept: %v", statErr)
	}
	if runner.specs[0].StdoutLine != nil {
		t.Errorf("progress callback wired without a listener")
	}
}

func TestConvertDiskFullAndCancel(t *testing.T) {
	dir := t.TempDir()
	task := model.ConvertTask{InputPath: "in", OutputPath: filepath.Join(dir, "o.mp4")}

	runner := &fakeRunner{err: errors.New("exit status 1"), stderr: "av_interleaved_write_frame(): No space left on device"}
	err := New(WithRunner(runner), WithLocator(found("ffmpeg"))).Convert(context.Background(), task, nil)
	if !errors.Is(err, errs.ErrDiskFull) {
		t.Errorf("err = %v, want disk full", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner = &fakeRunner{err: context.Canceled}
	err = New(WithRunner(runner), WithLocator(found("ffmpeg"))).Convert(ctx, task, nil)
	if !errors.Is(err, errs.ErrCancelled) {
		t.Errorf("err = %v, want cancelled", err)
	}
}

func TestAvailableCachesLookup(t *testing.T) {
	calls := 0
	loc := deps.NewLocator(func() (string, error) {
		calls++
		return "", errs.ToolMissing(errs.StageConvert, "ffmpeg", nil)
	})
	ff := New(WithLocator(loc))
	for i := 0; i < 3; i++ {
		if err := ff.Available(); !errors.Is(err, errs.ErrToolMissing) {
			t.Fatalf("Available() = %v", err)
		}
	}
	if err := ff.Convert(context.Background(), model.ConvertTask{InputPath: "a", OutputPath: "b"}, nil); !errors.Is(err, errs.ErrToolMissing) {
		t.Errorf("Convert without ffmpeg = %v", err)
	}
	if calls != 1 {
		t.Errorf("lookup ran %d times, want 1", calls)
	}
}
