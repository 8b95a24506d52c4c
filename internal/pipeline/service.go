// Package pipeline drives a single download session: validate, fetch info,
// select format, download, convert and report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"ytfetch/internal/errs"
	"ytfetch/internal/history"
	"ytfetch/internal/logger"
	"ytfetch/internal/model"
	"ytfetch/internal/progress"
	"ytfetch/internal/util"
	"ytfetch/internal/util/format"
	"ytfetch/internal/util/media"
)

// ToolMissingWarning is surfaced when conversion is skipped for lack of ffmpeg.
const ToolMissingWarning = "conversion tool missing; delivered source format instead"

// Extractor resolves and downloads videos through an extraction library.
// Errors should be *errs.Error so network failures can be retried.
type Extractor interface {
	FetchInfo(ctx context.Context, id model.VideoID, auth model.AuthCredential) (model.VideoInfo, error)
	// Download writes the media into task.WorkDir and returns the file path.
	Download(ctx context.Context, task model.DownloadTask, onProgress func(model.Transfer)) (string, error)
}

// Converter runs the media conversion tool.
type Converter interface {
	// Available returns nil when the tool can be used. Implementations detect
	// the tool once and cache the answer.
	Available() error
	Convert(ctx context.Context, task model.ConvertTask, onProgress func(progress.Update)) error
}

// Recorder persists finished sessions.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Service orchestrates the validate → fetch → select → download → convert workflow.
type Service struct {
	extractor  Extractor
	converter  Converter
	reporter   progress.Reporter
	recorder   Recorder
	freeSpace  func(path string) (uint64, error)
	retryDelay time.Duration
	log        zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithExtractor sets the extraction engine.
func WithExtractor(e Extractor) Option {
	return func(s *Service) {
		s.extractor = e
	}
}

// WithConverter sets the conversion tool.
func WithConverter(c Converter) Option {
	return func(s *Service) {
		s.converter = c
	}
}

// WithReporter attaches a progress reporter (TUI, plain renderer or feed).
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// WithRecorder stores every finished session, e.g. in the history database.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithFreeSpace overrides the free disk space probe (useful for testing).
func WithFreeSpace(fn func(path string) (uint64, error)) Option {
	return func(s *Service) {
		s.freeSpace = fn
	}
}

// WithRetryDelay sets the base delay between retries; attempt n waits n*d.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Service) {
		s.retryDelay = d
	}
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// NewService constructs a new Service with the provided options.
// It applies defaults for missing components.
func NewService(opts ...Option) *Service {
	s := &Service{
		reporter:   progress.Nop{},
		freeSpace:  util.FreeSpace,
		retryDelay: 2 * time.Second,
		log:        logger.Get("pipeline"),
	}
	for _, o := range opts {
		o(s)
	}
	if s.reporter == nil {
		s.reporter = progress.Nop{}
	}
	return s
}

// NewSession starts a session in Idle for the given request.
func (s *Service) NewSession(req model.DownloadRequest) *Session {
	return newSession(req)
}

// Run drives a whole session without user interaction: submit, fetch info
// and download in mode.
func (s *Service) Run(ctx context.Context, req model.DownloadRequest, rawURL string, mode model.FormatMode) (*Session, error) {
	sess := s.NewSession(req)
	if err := s.Submit(sess, rawURL); err != nil {
		return sess, err
	}
	if err := s.FetchInfo(ctx, sess); err != nil {
		return sess, err
	}
	return sess, s.Download(ctx, sess, mode)
}

// Submit validates rawURL. On success the session stays in ValidatingURL,
// ready for FetchInfo; on failure it returns to Idle with an InvalidURL error.
func (s *Service) Submit(sess *Session, rawURL string) error {
	if err := sess.transition(StateValidatingURL); err != nil {
		return err
	}
	s.update(sess, progress.StageValidating, -1, "Validating URL")

	id, err := util.ValidateURL(rawURL)
	if err != nil {
		sess.LastError = err
		_ = sess.transition(StateIdle)
		s.log.Debug().Str("url", rawURL).Msg("rejected url")
		return err
	}
	sess.Request.SourceURL = strings.TrimSpace(rawURL)
	sess.Request.VideoID = id
	sess.LastError = nil
	return nil
}

// FetchInfo retrieves the video metadata, retrying network failures.
func (s *Service) FetchInfo(ctx context.Context, sess *Session) error {
	if s.extractor == nil {
		return errors.New("no extractor configured")
	}
	if err := sess.transition(StateFetchingInfo); err != nil {
		return err
	}
	for {
		s.beginAttempt(sess)
		s.update(sess, progress.StageMetadata, -1, "Fetching video info")

		info, err := s.extractor.FetchInfo(ctx, sess.Request.VideoID, sess.Request.Auth)
		if err == nil {
			if info.ID == "" {
				info.ID = sess.Request.VideoID
			}
			sess.Info = &info
			s.log.Debug().Str("id", string(info.ID)).Str("title", info.Title).Msg("fetched info")
			return sess.transition(StateSelectingFormat)
		}

		if !s.fail(ctx, sess, errs.StageFetch, s.classify(ctx, sess, errs.StageFetch, err)) {
			return s.finish(ctx, sess)
		}
		if err := sess.transition(StateFetchingInfo); err != nil {
			return err
		}
	}
}

// Download fetches the media in mode, converts it when the mode calls for it
// and moves the result to <output>/<mode>/<title>.<ext>. The session ends
// in Completed or Error.
func (s *Service) Download(ctx context.Context, sess *Session, mode model.FormatMode) error {
	if s.extractor == nil {
		return errors.New("no extractor configured")
	}
	if sess.State != StateSelectingFormat || sess.Info == nil {
		return fmt.Errorf("cannot download from state %s", sess.State)
	}
	if _, ok := profiles[mode]; !ok {
		return fmt.Errorf("unknown format mode %q", mode)
	}
	if !sess.frozen {
		sess.Request.Mode = mode
	}
	sess.Options = ResolveOptions(sess.Request.Mode, *sess.Info)

	toolErr := s.toolAvailable()
	if toolErr != nil {
		s.log.Debug().Err(toolErr).Msg("conversion tool unavailable")
	}

	if err := sess.transition(StateDownloading); err != nil {
		return err
	}

	workdir, err := util.MakeTempWorkdir(sess.Request.OutputDir, sess.ID)
	if err != nil {
		sess.LastError = s.classify(ctx, sess, errs.StageDownload, err)
		_ = sess.transition(StateError)
		return s.finish(ctx, sess)
	}
	// Partial files live only here; nothing half-written reaches the output dir.
	defer func() {
		if rerr := os.RemoveAll(workdir); rerr != nil {
			s.log.Warn().Err(rerr).Str("dir", workdir).Msg("failed to remove workdir")
		}
	}()

	if err := s.checkDiskSpace(sess); err != nil {
		sess.LastError = err
		_ = sess.transition(StateError)
		return s.finish(ctx, sess)
	}

	task := model.DownloadTask{
		VideoID:     sess.Request.VideoID,
		URL:         sess.Request.SourceURL,
		Auth:        sess.Request.Auth,
		Options:     sess.Options,
		WorkDir:     workdir,
		UseFallback: toolErr != nil,
	}

	var src string
	for {
		s.update(sess, progress.StageDownloading, 0, "Downloading")
		src, err = s.extractor.Download(ctx, task, func(t model.Transfer) {
			s.reportTransfer(sess, t)
		})
		if err == nil {
			break
		}
		if !s.fail(ctx, sess, errs.StageDownload, s.classify(ctx, sess, errs.StageDownload, err)) {
			return s.finish(ctx, sess)
		}
		if err := sess.transition(StateDownloading); err != nil {
			return err
		}
	}
	s.update(sess, progress.StageDownloading, 100, "Downloaded")

	title := sess.Info.Title
	if title == "" {
		title = string(sess.Request.VideoID)
	}
	srcExt := filepath.Ext(src)

	if !sess.Options.NeedsConversion(srcExt) {
		return s.deliver(ctx, sess, src, media.OutputPath(sess.Request.OutputDir, sess.Request.Mode, title, srcExt))
	}

	if err := sess.transition(StateConverting); err != nil {
		return err
	}
	if toolErr != nil {
		sess.warn(ToolMissingWarning)
		s.reporter.Log(progress.Log{JobID: sess.ID, Level: progress.LevelWarn, Line: ToolMissingWarning})
		s.log.Warn().Str("mode", string(sess.Request.Mode)).Msg(ToolMissingWarning)
		return s.deliver(ctx, sess, src, media.OutputPath(sess.Request.OutputDir, sess.Request.Mode, title, srcExt))
	}

	converted := filepath.Join(workdir, "converted"+sess.Options.Extension)
	s.update(sess, progress.StageConverting, 0, "Converting to "+strings.ToUpper(string(sess.Request.Mode)))
	err = s.converter.Convert(ctx, model.ConvertTask{
		InputPath:   src,
		OutputPath:  converted,
		Options:     sess.Options,
		DurationSec: float64(sess.Info.DurationSeconds),
	}, func(u progress.Update) {
		u.JobID = sess.ID
		s.reporter.Update(u)
	})
	if err != nil {
		// Conversion failures are terminal.
		sess.LastError = s.classify(ctx, sess, errs.StageConvert, err)
		_ = sess.transition(StateError)
		return s.finish(ctx, sess)
	}
	s.update(sess, progress.StageConverting, 100, "Converted")
	return s.deliver(ctx, sess, converted, media.OutputPath(sess.Request.OutputDir, sess.Request.Mode, title, sess.Options.Extension))
}

func (s *Service) toolAvailable() error {
	if s.converter == nil {
		return errs.ToolMissing(errs.StageConvert, "ffmpeg", nil)
	}
	return s.converter.Available()
}

// deliver moves the finished file into place and completes the session.
func (s *Service) deliver(ctx context.Context, sess *Session, src, dst string) error {
	stage := errs.StageDownload
	if sess.State == StateConverting {
		stage = errs.StageConvert
	}
	err := util.EnsureDir(filepath.Dir(dst))
	if err == nil {
		err = util.MoveFile(src, dst)
	}
	if err != nil {
		sess.LastError = s.classify(ctx, sess, stage, fmt.Errorf("move to %s: %w", dst, err))
		_ = sess.transition(StateError)
		return s.finish(ctx, sess)
	}

	if err := sess.transition(StateCompleted); err != nil {
		return err
	}
	sess.OutputFilePath = dst
	sess.LastError = nil
	if fi, err := os.Stat(dst); err == nil {
		sess.Bytes = fi.Size()
	}
	return s.finish(ctx, sess)
}

// beginAttempt counts the first network-bound attempt of the session.
// Retries are counted by fail.
func (s *Service) beginAttempt(sess *Session) {
	if sess.AttemptCount == 0 {
		sess.AttemptCount = 1
	}
}

// fail moves the session to Error and decides whether to retry. It returns
// true after waiting out the backoff when another attempt is allowed.
func (s *Service) fail(ctx context.Context, sess *Session, stage errs.Stage, err error) bool {
	sess.LastError = err
	_ = sess.transition(StateError)

	if !errs.Retryable(err) || sess.AttemptCount >= MaxAttempts {
		return false
	}

	delay := s.retryDelay * time.Duration(sess.AttemptCount)
	s.log.Warn().Err(err).Int("attempt", sess.AttemptCount).Dur("backoff", delay).Msg("network failure, retrying")
	s.update(sess, progress.StageRetrying, -1,
		fmt.Sprintf("Network error, retrying (%d/%d)", sess.AttemptCount+1, MaxAttempts))

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			sess.LastError = errs.New(errs.KindCancelled, stage, ctx.Err())
			return false
		}
	} else if ctx.Err() != nil {
		sess.LastError = errs.New(errs.KindCancelled, stage, ctx.Err())
		return false
	}
	sess.AttemptCount++
	return true
}

// classify turns an engine or tool error into an *errs.Error for stage.
func (s *Service) classify(ctx context.Context, sess *Session, stage errs.Stage, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return errs.New(errs.KindCancelled, stage, err)
	}
	var e *errs.Error
	if errors.As(err, &e) {
		if e.Stage == "" {
			e.Stage = stage
		}
		if e.Kind == errs.KindDiskFull && e.Required == 0 {
			e.Required = uint64(max(sess.Options.EstimatedBytes, 0))
		}
		if e.Kind == errs.KindDiskFull && e.Available == 0 {
			e.Available, _ = s.freeSpace(sess.Request.OutputDir)
		}
		return e
	}
	if errors.Is(err, syscall.ENOSPC) {
		avail, _ := s.freeSpace(sess.Request.OutputDir)
		return errs.DiskFull(stage, uint64(max(sess.Options.EstimatedBytes, 0)), avail, err)
	}
	return &errs.Error{Kind: errs.KindUnknown, Stage: stage, Err: err}
}

func (s *Service) checkDiskSpace(sess *Session) error {
	need := sess.Options.EstimatedBytes
	if need <= 0 {
		return nil
	}
	free, err := s.freeSpace(sess.Request.OutputDir)
	if err != nil {
		s.log.Debug().Err(err).Msg("free space probe failed")
		return nil
	}
	if uint64(need) > free {
		return errs.DiskFull(errs.StageDownload, uint64(need), free, nil)
	}
	return nil
}

func (s *Service) reportTransfer(sess *Session, t model.Transfer) {
	u := progress.Update{
		JobID:   sess.ID,
		Stage:   progress.StageDownloading,
		Percent: t.Percent(),
		Message: "Downloading",
	}
	if u.Percent >= 100 {
		// The engine may still be merging; only the caller marks 100%.
		u.Percent = 99.9
	}
	b := t.Downloaded
	u.Bytes = &b
	if t.Total > 0 {
		total := t.Total
		u.Total = &total
	}
	if rate := format.Rate(t.Speed); rate != "" {
		u.Speed = &rate
	}
	if t.ETA > 0 {
		eta := t.ETA
		u.ETA = &eta
	}
	s.reporter.Update(u)
}

func (s *Service) update(sess *Session, stage progress.Stage, percent float64, msg string) {
	s.reporter.Update(progress.Update{
		JobID:   sess.ID,
		Stage:   stage,
		Percent: percent,
		Message: msg,
	})
}

// finish emits the terminal update and result, records the session and
// returns its error (nil when completed).
func (s *Service) finish(ctx context.Context, sess *Session) error {
	if sess.State == StateCompleted {
		name := filepath.Base(sess.OutputFilePath)
		s.reporter.Update(progress.Update{
			JobID:   sess.ID,
			Stage:   progress.StageCompleted,
			Percent: 100,
			Message: fmt.Sprintf("Saved: %s (%s)", name, format.HumanizeBytes(sess.Bytes)),
		})
		s.reporter.Result(progress.Result{
			JobID:      sess.ID,
			OutputPath: sess.OutputFilePath,
			Bytes:      sess.Bytes,
			Warnings:   sess.Warnings,
		})
		s.log.Info().Str("path", sess.OutputFilePath).Int("attempts", sess.AttemptCount).Msg("completed")
	} else {
		s.reporter.Update(progress.Update{
			JobID:   sess.ID,
			Stage:   progress.StageError,
			Percent: -1,
			Message: errs.Describe(sess.LastError),
		})
		s.reporter.Result(progress.Result{JobID: sess.ID, Warnings: sess.Warnings, Err: sess.LastError})
		s.log.Error().Err(sess.LastError).Int("attempts", sess.AttemptCount).Msg("session failed")
	}
	s.record(ctx, sess)
	return sess.LastError
}

func (s *Service) record(ctx context.Context, sess *Session) {
	if s.recorder == nil {
		return
	}
	e := history.Entry{
		SessionID:  sess.ID,
		URL:        sess.Request.SourceURL,
		VideoID:    string(sess.Request.VideoID),
		Mode:       string(sess.Request.Mode),
		State:      string(sess.State),
		OutputPath: sess.OutputFilePath,
		Bytes:      sess.Bytes,
		Attempts:   sess.AttemptCount,
		CreatedAt:  time.Now(),
	}
	if sess.Info != nil {
		e.Title = sess.Info.Title
	}
	if sess.LastError != nil {
		e.Error = sess.LastError.Error()
	}
	// Record even when the session was cancelled.
	if err := s.recorder.Record(context.WithoutCancel(ctx), e); err != nil {
		s.log.Warn().Err(err).Msg("failed to record history")
	}
}
