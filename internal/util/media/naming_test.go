package media

import (
	"path/filepath"
	"testing"

	"ytfetch/internal/model"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name  string
		mode  model.FormatMode
		title string
		ext   string
		want  string
	}{
		{name: "mp3", mode: model.ModeMP3, title: "Never Gonna Give You Up", ext: ".mp3", want: "downloads/mp3/Never_Gonna_Give_You_Up.mp3"},
		{name: "aac uses m4a", mode: model.ModeAAC, title: "Song", ext: ".m4a", want: "downloads/aac/Song.m4a"},
		{name: "ext without dot", mode: model.ModeSource, title: "Clip", ext: "webm", want: "downloads/source/Clip.webm"},
		{name: "ext lowered", mode: model.ModeMP4, title: "Clip", ext: ".MP4", want: "downloads/mp4/Clip.mp4"},
		{name: "empty title", mode: model.ModeMP4, title: "", ext: ".mp4", want: "downloads/mp4/untitled.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OutputPath("downloads", tt.mode, tt.title, tt.ext)
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("OutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
