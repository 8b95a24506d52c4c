package deps

import (
	"fmt"
	"os"
	"os/exec"
	"sync"

	"ytfetch/internal/errs"
)

// LookPath is swapped in tests.
var LookPath = exec.LookPath

// FindDownloader returns the path to yt-dlp.
// If customPath is non-empty, it tries that path or looks it up in PATH.
func FindDownloader(customPath string) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath, nil
		}
		if p, err := LookPath(customPath); err == nil {
			return p, nil
		}
		return "", errs.ToolMissing(errs.StageDownload, "yt-dlp", fmt.Errorf("could not find downloader at %q", customPath))
	}
	if p, err := LookPath("yt-dlp"); err == nil {
		return p, nil
	}
	return "", errs.ToolMissing(errs.StageDownload, "yt-dlp",
		fmt.Errorf("could not find yt-dlp in PATH; install it or run 'ytfetch doctor --install'"))
}

// FindFFmpeg returns the path to the ffmpeg binary in PATH.
func FindFFmpeg() (string, error) {
	if p, err := LookPath("ffmpeg"); err == nil {
		return p, nil
	}
	return "", errs.ToolMissing(errs.StageConvert, "ffmpeg", fmt.Errorf("could not find ffmpeg in PATH"))
}

// Locator runs a lookup at most once and caches its outcome.
type Locator struct {
	find func() (string, error)
	once sync.Once
	path string
	err  error
}

// NewLocator wraps find so repeated Locate calls never re-check.
func NewLocator(find func() (string, error)) *Locator {
	return &Locator{find: find}
}

// Locate returns the cached lookup result.
func (l *Locator) Locate() (string, error) {
	l.once.Do(func() {
		l.path, l.err = l.find()
	})
	return l.path, l.err
}

var ffmpeg = NewLocator(FindFFmpeg)

// FFmpeg returns the process-wide cached ffmpeg locator.
func FFmpeg() *Locator {
	return ffmpeg
}
