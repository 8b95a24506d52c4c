package pipeline

import (
	"reflect"
	"testing"

	"ytfetch/internal/model"
)

func sampleInfo() model.VideoInfo {
	return model.VideoInfo{
		ID:              "dQw4w9WgXcQ",
		Title:           "Never Gonna Give You Up",
		DurationSeconds: 212,
		Streams: []model.StreamDescriptor{
			{ID: "140", Codec: "mp4a.40.2", Container: "m4a", BitrateKbps: 129, QualityRank: 129, AudioOnly: true, Size: 3_400_000},
			{ID: "251", Codec: "opus", Container: "webm", BitrateKbps: 135, QualityRank: 135, AudioOnly: true, Size: 3_500_000},
			{ID: "137", Codec: "avc1.640028", Container: "mp4", BitrateKbps: 4000, QualityRank: 1080, Size: 80_000_000},
			{ID: "136", Codec: "avc1.4d401f", Container: "mp4", BitrateKbps: 1500, QualityRank: 720, Size: 30_000_000},
		},
	}
}

func TestResolveOptions_Table(t *testing.T) {
	tests := []struct {
		mode       model.FormatMode
		container  string
		codec      string
		bitrate    int
		audioOnly  bool
		conversion model.ConversionPolicy
		ext        string
	}{
		{mode: model.ModeMP4, container: "mp4", codec: "h264", bitrate: 0, audioOnly: false, conversion: model.ConvertIfContainerDiffers, ext: ".mp4"},
		{mode: model.ModeSource, container: "", codec: "", bitrate: 0, audioOnly: false, conversion: model.ConvertNever, ext: ""},
		{mode: model.ModeMP3, container: "mp3", codec: "mp3", bitrate: 320, audioOnly: true, conversion: model.ConvertAlways, ext: ".mp3"},
		{mode: model.ModeAAC, container: "m4a", codec: "aac", bitrate: 256, audioOnly: true, conversion: model.ConvertAlways, ext: ".m4a"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := ResolveOptions(tt.mode, sampleInfo())
			if got.Mode != tt.mode {
				t.Errorf("Mode = %q", got.Mode)
			}
			if got.TargetContainer != tt.container || got.TargetCodec != tt.codec {
				t.Errorf("target = %s/%s, want %s/%s", got.TargetContainer, got.TargetCodec, tt.container, tt.codec)
			}
			if got.BitrateKbps != tt.bitrate {
				t.Errorf("BitrateKbps = %d, want %d", got.BitrateKbps, tt.bitrate)
			}
			if got.AudioOnly != tt.audioOnly {
				t.Errorf("AudioOnly = %v, want %v", got.AudioOnly, tt.audioOnly)
			}
			if got.Conversion != tt.conversion {
				t.Errorf("Conversion = %v, want %v", got.Conversion, tt.conversion)
			}
			if got.Extension != tt.ext {
				t.Errorf("Extension = %q, want %q", got.Extension, tt.ext)
			}
			if got.Selector == "" || got.FallbackSelector == "" {
				t.Errorf("selectors must be set: %+v", got)
			}
			if got.EstimatedBytes <= 0 {
				t.Errorf("EstimatedBytes = %d, want > 0", got.EstimatedBytes)
			}
		})
	}
}

func TestResolveOptions_PureAndIdempotent(t *testing.T) {
	info := sampleInfo()
	for _, mode := range model.Modes {
		a := ResolveOptions(mode, info)
		b := ResolveOptions(mode, info)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: results differ: %+v vs %+v", mode, a, b)
		}
	}
	if !reflect.DeepEqual(info, sampleInfo()) {
		t.Errorf("ResolveOptions mutated its input")
	}

	// Mutating a returned value must not leak into the table.
	got := ResolveOptions(model.ModeMP3, info)
	got.BitrateKbps = 1
	if again := ResolveOptions(model.ModeMP3, info); again.BitrateKbps != 320 {
		t.Errorf("table mutated through returned value: %d", again.BitrateKbps)
	}
}

func TestResolveOptions_UnknownMode(t *testing.T) {
	if got := ResolveOptions("flac", sampleInfo()); !reflect.DeepEqual(got, model.ExtractionOptions{}) {
		t.Errorf("unknown mode = %+v, want zero value", got)
	}
}

func TestNeedsConversion(t *testing.T) {
	info := sampleInfo()
	tests := []struct {
		mode model.FormatMode
		ext  string
		want bool
	}{
		{model.ModeMP4, ".mp4", false},
		{model.ModeMP4, ".webm", true},
		{model.ModeMP4, ".MKV", true},
		{model.ModeSource, ".webm", false},
		{model.ModeMP3, ".m4a", true},
		{model.ModeAAC, ".m4a", true},
	}
	for _, tt := range tests {
		if got := ResolveOptions(tt.mode, info).NeedsConversion(tt.ext); got != tt.want {
			t.Errorf("%s NeedsConversion(%q) = %v, want %v", tt.mode, tt.ext, got, tt.want)
		}
	}
}
