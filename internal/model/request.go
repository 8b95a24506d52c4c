package model

import (
	"strings"
	"time"
)

// VideoID is the canonical 11-character YouTube video identifier.
type VideoID string

// WatchURL returns the canonical watch URL for the id.
func (id VideoID) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + string(id)
}

// AuthCredential selects where cookies come from. At most one source is used;
// Browser wins over CookiesFile when both are set.
type AuthCredential struct {
	Browser     string // chrome, firefox, ...
	CookiesFile string // Netscape cookies.txt
}

// IsZero reports whether no credential is configured.
func (a AuthCredential) IsZero() bool {
	return a.Browser == "" && a.CookiesFile == ""
}

// DownloadRequest is built from CLI input and frozen once downloading begins.
type DownloadRequest struct {
	SourceURL string
	VideoID   VideoID
	Mode      FormatMode
	OutputDir string
	Auth      AuthCredential
}

// StreamDescriptor describes one stream offered by the extraction library.
type StreamDescriptor struct {
	ID          string
	Codec       string
	Container   string // mp4, webm, m4a, ...
	BitrateKbps int
	QualityRank int // higher is better; height for video, bitrate for audio
	AudioOnly   bool
	Size        int64 // 0 if unknown
}

// VideoInfo is the metadata fetched once per request.
type VideoInfo struct {
	ID              VideoID
	Title           string
	Uploader        string
	DurationSeconds int
	Streams         []StreamDescriptor
}

// Duration returns DurationSeconds as a time.Duration.
func (v VideoInfo) Duration() time.Duration {
	return time.Duration(v.DurationSeconds) * time.Second
}

// ExtractionOptions is the resolved plan for a format mode.
type ExtractionOptions struct {
	Mode             FormatMode
	Selector         string // extraction-library stream selector
	FallbackSelector string // single-file selector used when no conversion tool exists
	MergeContainer   string // container to merge separate video+audio into, if any
	AudioOnly        bool
	TargetContainer  string // empty means keep the source container
	TargetCodec      string
	BitrateKbps      int // 0 means best available
	Conversion       ConversionPolicy
	Extension        string // with leading dot; empty means the source extension
	EstimatedBytes   int64
}

// NeedsConversion reports whether a downloaded file with the given extension
// must go through the conversion tool.
func (o ExtractionOptions) NeedsConversion(sourceExt string) bool {
	switch o.Conversion {
	case ConvertAlways:
		return true
	case ConvertIfContainerDiffers:
		ext := strings.ToLower(strings.TrimPrefix(sourceExt, "."))
		return ext != o.TargetContainer
	default:
		return false
	}
}

// DownloadTask is handed to an extraction engine.
type DownloadTask struct {
	VideoID     VideoID
	URL         string
	Auth        AuthCredential
	Options     ExtractionOptions
	WorkDir     string
	UseFallback bool // no conversion tool: ask for a single ready-to-play file
}

// Selector returns the stream selector the engine should use.
func (t DownloadTask) Selector() string {
	if t.UseFallback && t.Options.FallbackSelector != "" {
		return t.Options.FallbackSelector
	}
	return t.Options.Selector
}

// Transfer is a byte-level progress sample from an engine.
type Transfer struct {
	Downloaded int64
	Total      int64   // 0 if unknown
	Speed      float64 // bytes per second, 0 if unknown
	ETA        time.Duration
}

// Percent returns 0..100, or -1 when the total is unknown.
func (t Transfer) Percent() float64 {
	if t.Total <= 0 {
		return -1
	}
	p := float64(t.Downloaded) / float64(t.Total) * 100
	if p > 100 {
		p = 100
	}
	return p
}

// ConvertTask is handed to the conversion tool.
type ConvertTask struct {
	InputPath   string
	OutputPath  string
	Options     ExtractionOptions
	DurationSec float64
}
