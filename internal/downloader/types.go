package downloader

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"ytfetch/internal/model"
)

// YTDLPInfo mirrors fields from yt-dlp --print-json output that we care about.
type YTDLPInfo struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Uploader string        `json:"uploader"`
	Channel  string        `json:"channel"`
	Duration float64       `json:"duration"`
	Formats  []YTDLPFormat `json:"formats"`
}

// YTDLPFormat is one entry of the "formats" array.
type YTDLPFormat struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Height         int     `json:"height"`
	TBR            float64 `json:"tbr"`
	ABR            float64 `json:"abr"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
}

func (f YTDLPFormat) hasVideo() bool {
	return f.VCodec != "" && f.VCodec != "none"
}

func (f YTDLPFormat) hasAudio() bool {
	return f.ACodec != "" && f.ACodec != "none"
}

// VideoInfo converts the yt-dlp payload into the shared model. Storyboards
// and other formats without audio or video are skipped.
func (i YTDLPInfo) VideoInfo() model.VideoInfo {
	uploader := i.Uploader
	if uploader == "" {
		uploader = i.Channel
	}
	out := model.VideoInfo{
		ID:              model.VideoID(i.ID),
		Title:           i.Title,
		Uploader:        uploader,
		DurationSeconds: int(math.Round(i.Duration)),
	}
	for _, f := range i.Formats {
		if !f.hasVideo() && !f.hasAudio() {
			continue
		}
		s := model.StreamDescriptor{
			ID:          f.FormatID,
			Container:   f.Ext,
			BitrateKbps: int(math.Round(f.TBR)),
			Size:        f.Filesize,
		}
		if s.Size == 0 {
			s.Size = f.FilesizeApprox
		}
		if f.hasVideo() {
			s.Codec = f.VCodec
			s.QualityRank = f.Height
		} else {
			s.Codec = f.ACodec
			s.AudioOnly = true
			if f.ABR > 0 {
				s.BitrateKbps = int(math.Round(f.ABR))
			}
			s.QualityRank = s.BitrateKbps
		}
		out.Streams = append(out.Streams, s)
	}
	return out
}

// parseInfo decodes yt-dlp JSON output. yt-dlp sometimes prints more than one
// line to stdout; the last line holding a JSON object with an id wins.
func parseInfo(stdout string) (YTDLPInfo, error) {
	data := strings.TrimSpace(stdout)
	var info YTDLPInfo
	err := json.NewDecoder(strings.NewReader(data)).Decode(&info)
	if err == nil && info.ID != "" {
		return info, nil
	}
	lines := strings.Split(data, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		var tmp YTDLPInfo
		if json.Unmarshal([]byte(line), &tmp) == nil && tmp.ID != "" {
			return tmp, nil
		}
	}
	if err == nil {
		err = fmt.Errorf("no video id in output")
	}
	return YTDLPInfo{}, fmt.Errorf("parse metadata JSON: %w", err)
}
