// Package downloader implements the extraction engines: yt-dlp through
// go-ytdlp, and a pure-Go fallback built on kkdai/youtube.
package downloader

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog"

	"ytfetch/internal/errs"
	"ytfetch/internal/logger"
	"ytfetch/internal/model"
)

// Engine names accepted by New.
const (
	EngineYTDLP  = "ytdlp"
	EngineNative = "native"
)

// Engine fetches metadata and downloads media for one video.
type Engine interface {
	FetchInfo(ctx context.Context, id model.VideoID, auth model.AuthCredential) (model.VideoInfo, error)
	Download(ctx context.Context, task model.DownloadTask, onProgress func(model.Transfer)) (string, error)
}

// Throttle spaces out yt-dlp's requests. Zero fields are left unset.
type Throttle struct {
	Interval    time.Duration // sleep before each download
	MaxInterval time.Duration // upper bound of the randomized sleep
	Requests    time.Duration // sleep between extraction requests
}

// DefaultThrottle is used when throttling is switched on.
var DefaultThrottle = Throttle{
	Interval:    5 * time.Second,
	MaxInterval: 30 * time.Second,
	Requests:    time.Second,
}

// Options controls engine construction.
type Options struct {
	Engine         string // ytdlp (default) or native
	DownloaderPath string // resolved yt-dlp binary; empty lets go-ytdlp find it
	Throttle       Throttle
}

// New returns the engine named in opts.
func New(opts Options) (Engine, error) {
	switch opts.Engine {
	case "", EngineYTDLP:
		y := NewYTDLP(opts.DownloaderPath)
		y.throttle = opts.Throttle
		return y, nil
	case EngineNative:
		return NewNative(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q (want %s or %s)", opts.Engine, EngineYTDLP, EngineNative)
	}
}

// YTDLP drives the yt-dlp binary.
type YTDLP struct {
	binary   string
	interval time.Duration
	throttle Throttle
	log      zerolog.Logger
}

// NewYTDLP returns an engine using the yt-dlp binary at path.
func NewYTDLP(path string) *YTDLP {
	return &YTDLP{
		binary:   path,
		interval: 500 * time.Millisecond,
		log:      logger.Get("ytdlp"),
	}
}

func (y *YTDLP) command(auth model.AuthCredential) *ytdlp.Command {
	dl := ytdlp.New().NoPlaylist()
	if y.binary != "" {
		dl = dl.SetExecutable(y.binary)
	}
	switch {
	case auth.Browser != "":
		dl = dl.CookiesFromBrowser(auth.Browser)
	case auth.CookiesFile != "":
		dl = dl.Cookies(auth.CookiesFile)
	}
	if t := y.throttle; t.Interval > 0 {
		dl = dl.SleepInterval(t.Interval.Seconds())
		// yt-dlp rejects a max interval without a min interval.
		if t.MaxInterval > t.Interval {
			dl = dl.MaxSleepInterval(t.MaxInterval.Seconds())
		}
	}
	if y.throttle.Requests > 0 {
		dl = dl.SleepRequests(y.throttle.Requests.Seconds())
	}
	return dl
}

// FetchInfo runs yt-dlp without downloading and decodes its JSON.
func (y *YTDLP) FetchInfo(ctx context.Context, id model.VideoID, auth model.AuthCredential) (model.VideoInfo, error) {
	dl := y.command(auth).SkipDownload().PrintJSON()

	y.log.Debug().Str("id", string(id)).Msg("fetching metadata")
	res, err := dl.Run(ctx, id.WatchURL())
	if err != nil {
		return model.VideoInfo{}, classifyFailure(ctx, errs.StageFetch, stderrOf(res), err)
	}
	info, err := parseInfo(res.Stdout)
	if err != nil {
		return model.VideoInfo{}, errs.New(errs.KindUnknown, errs.StageFetch, err)
	}
	return info.VideoInfo(), nil
}

// Download fetches the selected streams into task.WorkDir and returns the
// resulting file.
func (y *YTDLP) Download(ctx context.Context, task model.DownloadTask, onProgress func(model.Transfer)) (string, error) {
	dl := y.command(task.Auth).
		ForceOverwrites().
		Output(filepath.Join(task.WorkDir, "%(id)s.%(ext)s")).
		Format(task.Selector())
	if task.Options.MergeContainer != "" && !task.UseFallback {
		dl = dl.MergeOutputFormat(task.Options.MergeContainer)
	}
	if onProgress != nil {
		dl.ProgressFunc(y.interval, func(u ytdlp.ProgressUpdate) {
			onProgress(transferFromYTDLP(u))
		})
	}

	url := task.URL
	if url == "" {
		url = task.VideoID.WatchURL()
	}
	y.log.Debug().Str("url", url).Str("format", task.Selector()).Msg("downloading")
	res, err := dl.Run(ctx, url)
	if err != nil {
		return "", classifyFailure(ctx, errs.StageDownload, stderrOf(res), err)
	}

	prefer := task.Options.MergeContainer
	if task.Options.AudioOnly {
		prefer = "m4a"
	}
	path, err := SelectDownloadedFile(task.WorkDir, string(task.VideoID), prefer)
	if err != nil {
		return "", errs.New(errs.KindUnknown, errs.StageDownload, fmt.Errorf("resolve download: %w", err))
	}
	return path, nil
}

func stderrOf(res *ytdlp.Result) string {
	if res == nil {
		return ""
	}
	return res.Stderr
}

// Install downloads a managed yt-dlp binary and returns its path.
func Install(ctx context.Context) (string, error) {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", err
	}
	return resolved.Executable, nil
}
