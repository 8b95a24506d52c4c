package downloader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"

	"ytfetch/internal/errs"
	"ytfetch/internal/logger"
	"ytfetch/internal/model"
)

// Native downloads through kkdai/youtube without external binaries. It cannot
// merge separate video and audio streams, so video modes get the best
// progressive (muxed) format.
type Native struct {
	interval  time.Duration
	newClient func(auth model.AuthCredential) (*youtube.Client, error)
	log       zerolog.Logger
}

// NewNative returns the pure-Go engine.
func NewNative() *Native {
	n := &Native{
		interval: 500 * time.Millisecond,
		log:      logger.Get("native"),
	}
	n.newClient = n.client
	return n
}

func (n *Native) client(auth model.AuthCredential) (*youtube.Client, error) {
	httpClient := &http.Client{}
	if auth.Browser != "" {
		n.log.Warn().Str("browser", auth.Browser).Msg("browser cookies need the ytdlp engine; continuing without them")
	}
	if auth.CookiesFile != "" {
		jar, err := loadCookieJar(auth.CookiesFile)
		if err != nil {
			return nil, err
		}
		httpClient.Jar = jar
	}
	return &youtube.Client{HTTPClient: httpClient}, nil
}

// FetchInfo resolves the video and its formats.
func (n *Native) FetchInfo(ctx context.Context, id model.VideoID, auth model.AuthCredential) (model.VideoInfo, error) {
	client, err := n.newClient(auth)
	if err != nil {
		return model.VideoInfo{}, errs.New(errs.KindUnknown, errs.StageFetch, err)
	}
	video, err := client.GetVideoContext(ctx, string(id))
	if err != nil {
		return model.VideoInfo{}, classifyYouTube(ctx, errs.StageFetch, err)
	}
	return videoInfo(video), nil
}

// Download streams the chosen format into task.WorkDir.
func (n *Native) Download(ctx context.Context, task model.DownloadTask, onProgress func(model.Transfer)) (string, error) {
	client, err := n.newClient(task.Auth)
	if err != nil {
		return "", errs.New(errs.KindUnknown, errs.StageDownload, err)
	}
	video, err := client.GetVideoContext(ctx, string(task.VideoID))
	if err != nil {
		return "", classifyYouTube(ctx, errs.StageDownload, err)
	}
	format := pickFormat(video.Formats, task.Options)
	if format == nil {
		return "", errs.Unavailable(errs.StageDownload, "no downloadable format", nil)
	}

	stream, size, err := client.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", classifyYouTube(ctx, errs.StageDownload, err)
	}
	defer stream.Close()

	path := filepath.Join(task.WorkDir, string(task.VideoID)+"."+mimeToExt(format.MimeType))
	f, err := os.Create(path)
	if err != nil {
		return "", classifyYouTube(ctx, errs.StageDownload, err)
	}

	n.log.Debug().Int("itag", format.ItagNo).Str("mime", format.MimeType).Int64("size", size).Msg("streaming")
	pw := newProgressWriter(f, size, n.interval, onProgress)
	_, copyErr := io.Copy(pw, stream)
	closeErr := f.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return "", classifyYouTube(ctx, errs.StageDownload, copyErr)
	}
	pw.flush()
	return path, nil
}

func videoInfo(v *youtube.Video) model.VideoInfo {
	out := model.VideoInfo{
		ID:              model.VideoID(v.ID),
		Title:           v.Title,
		Uploader:        v.Author,
		DurationSeconds: int(v.Duration.Seconds()),
	}
	for _, f := range v.Formats {
		s := model.StreamDescriptor{
			ID:          strconv.Itoa(f.ItagNo),
			Codec:       codecOf(f.MimeType),
			Container:   mimeToExt(f.MimeType),
			BitrateKbps: bitrateOf(&f) / 1000,
			Size:        f.ContentLength,
		}
		if isAudioOnly(&f) {
			s.AudioOnly = true
			s.QualityRank = s.BitrateKbps
		} else {
			s.QualityRank = f.Height
		}
		out.Streams = append(out.Streams, s)
	}
	return out
}

// pickFormat chooses a single stream: the best audio-only stream for audio
// modes (preferring the target container), otherwise the tallest muxed stream
// (preferring mp4).
func pickFormat(formats youtube.FormatList, opts model.ExtractionOptions) *youtube.Format {
	var best *youtube.Format
	better := func(c *youtube.Format) bool {
		if best == nil {
			return true
		}
		if opts.AudioOnly {
			cp, bp := mimeToExt(c.MimeType) == opts.TargetContainer, mimeToExt(best.MimeType) == opts.TargetContainer
			if cp != bp {
				return cp
			}
			return bitrateOf(c) > bitrateOf(best)
		}
		cp, bp := mimeToExt(c.MimeType) == "mp4", mimeToExt(best.MimeType) == "mp4"
		if cp != bp {
			return cp
		}
		if c.Height != best.Height {
			return c.Height > best.Height
		}
		return bitrateOf(c) > bitrateOf(best)
	}
	for i := range formats {
		f := &formats[i]
		if f.AudioChannels == 0 {
			continue
		}
		if opts.AudioOnly != isAudioOnly(f) {
			continue
		}
		if better(f) {
			best = f
		}
	}
	return best
}

func isAudioOnly(f *youtube.Format) bool {
	return strings.HasPrefix(f.MimeType, "audio/")
}

func bitrateOf(f *youtube.Format) int {
	if f.AverageBitrate > 0 {
		return f.AverageBitrate
	}
	return f.Bitrate
}

func mimeToExt(mime string) string {
	base, _, _ := strings.Cut(mime, ";")
	kind, sub, ok := strings.Cut(strings.TrimSpace(base), "/")
	if !ok {
		return "bin"
	}
	switch {
	case sub == "3gpp":
		return "3gp"
	case kind == "audio" && sub == "mp4":
		return "m4a"
	default:
		return sub
	}
}

// codecOf extracts the codecs parameter, e.g. `video/mp4; codecs="avc1.42001E, mp4a.40.2"`.
func codecOf(mime string) string {
	_, params, ok := strings.Cut(mime, "codecs=")
	if !ok {
		return ""
	}
	return strings.Trim(strings.TrimSpace(params), `"`)
}

func classifyYouTube(ctx context.Context, stage errs.Stage, err error) *errs.Error {
	if ctx.Err() != nil {
		return errs.New(errs.KindCancelled, stage, ctx.Err())
	}
	switch {
	case errors.Is(err, youtube.ErrVideoPrivate):
		return errs.Unavailable(stage, "Private video", err)
	case errors.Is(err, youtube.ErrLoginRequired):
		return &errs.Error{Kind: errs.KindAuthRequired, Stage: stage, Reason: "sign-in required; pass --cookies", Err: err}
	case errors.Is(err, youtube.ErrNotPlayableInEmbed):
		return errs.Unavailable(stage, "not playable outside YouTube", err)
	case errors.Is(err, syscall.ENOSPC):
		return errs.DiskFull(stage, 0, 0, err)
	}

	var statusErr *youtube.ErrPlayabiltyStatus
	if errors.As(err, &statusErr) {
		return errs.Unavailable(stage, statusErr.Reason, err)
	}

	var code youtube.ErrUnexpectedStatusCode
	if errors.As(err, &code) {
		if int(code) == http.StatusTooManyRequests {
			return &errs.Error{Kind: errs.KindNetwork, Stage: stage, Reason: RateLimitHint, Err: err}
		}
		if int(code) >= 500 || int(code) == http.StatusForbidden {
			return errs.New(errs.KindNetwork, stage, err)
		}
		return errs.Unavailable(stage, "", err)
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNRESET) {
		return errs.New(errs.KindNetwork, stage, err)
	}
	return errs.New(errs.KindUnknown, stage, err)
}

// loadCookieJar reads a Netscape cookies.txt file.
func loadCookieJar(path string) (http.CookieJar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cookies file: %w", err)
	}
	defer f.Close()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	byHost := map[string][]*http.Cookie{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		httpOnly := false
		if rest, ok := strings.CutPrefix(line, "#HttpOnly_"); ok {
			line, httpOnly = rest, true
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			continue
		}
		c := &http.Cookie{
			Domain:   fields[0],
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			Name:     fields[5],
			Value:    fields[6],
			HttpOnly: httpOnly,
		}
		if exp, err := strconv.ParseInt(fields[4], 10, 64); err == nil && exp > 0 {
			c.Expires = time.Unix(exp, 0)
		}
		host := strings.TrimPrefix(fields[0], ".")
		byHost[host] = append(byHost[host], c)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read cookies file: %w", err)
	}
	for host, cookies := range byHost {
		jar.SetCookies(&url.URL{Scheme: "https", Host: host, Path: "/"}, cookies)
	}
	return jar, nil
}
