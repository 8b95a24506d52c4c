package pipeline

import (
	"ytfetch/internal/model"
	"ytfetch/internal/util/bitrate"
)

// profiles is the fixed mode table. ResolveOptions copies entries out; the
// table itself is never mutated.
var profiles = map[model.FormatMode]model.ExtractionOptions{
	model.ModeMP4: {
		Mode:             model.ModeMP4,
		Selector:         "bestvideo[ext=mp4]+bestaudio[ext=m4a]/bestvideo+bestaudio/best",
		FallbackSelector: "best[ext=mp4]/best",
		MergeContainer:   "mp4",
		TargetContainer:  "mp4",
		TargetCodec:      "h264",
		Conversion:       model.ConvertIfContainerDiffers,
		Extension:        ".mp4",
	},
	model.ModeSource: {
		Mode:             model.ModeSource,
		Selector:         "bestvideo+bestaudio/best",
		FallbackSelector: "best",
		Conversion:       model.ConvertNever,
	},
	model.ModeMP3: {
		Mode:             model.ModeMP3,
		Selector:         "bestaudio/best",
		FallbackSelector: "bestaudio/best",
		AudioOnly:        true,
		TargetContainer:  "mp3",
		TargetCodec:      "mp3",
		BitrateKbps:      320,
		Conversion:       model.ConvertAlways,
		Extension:        ".mp3",
	},
	model.ModeAAC: {
		Mode:             model.ModeAAC,
		Selector:         "bestaudio[ext=m4a]/bestaudio/best",
		FallbackSelector: "bestaudio[ext=m4a]/bestaudio/best",
		AudioOnly:        true,
		TargetContainer:  "m4a",
		TargetCodec:      "aac",
		BitrateKbps:      256,
		Conversion:       model.ConvertAlways,
		Extension:        ".m4a",
	},
}

// ResolveOptions maps a format mode to the options handed to the extraction
// engine and the converter. It has no side effects. Unknown modes resolve to
// the zero value.
func ResolveOptions(mode model.FormatMode, info model.VideoInfo) model.ExtractionOptions {
	opts, ok := profiles[mode]
	if !ok {
		return model.ExtractionOptions{}
	}
	opts.EstimatedBytes = estimateBytes(opts, info)
	return opts
}

// estimateBytes guesses how much disk the download needs. Stream ranking is
// left to the extraction library; this only sizes the likely pick.
func estimateBytes(opts model.ExtractionOptions, info model.VideoInfo) int64 {
	audio := bestStream(info.Streams, true)
	var n int64
	if opts.AudioOnly {
		if audio != nil {
			n = audio.Size
		}
	} else {
		if video := bestStream(info.Streams, false); video != nil {
			n = video.Size
		}
		if audio != nil {
			n += audio.Size
		}
	}
	// Conversion writes a second file next to the download.
	if est := bitrate.EstimateBytes(opts.BitrateKbps, info.DurationSeconds); est > 0 {
		n += est
	}
	return n
}

func bestStream(streams []model.StreamDescriptor, audioOnly bool) *model.StreamDescriptor {
	var best *model.StreamDescriptor
	for i := range streams {
		s := &streams[i]
		if s.AudioOnly != audioOnly {
			continue
		}
		if best == nil || s.QualityRank > best.QualityRank ||
			(s.QualityRank == best.QualityRank && s.BitrateKbps > best.BitrateKbps) {
			best = s
		}
	}
	return best
}
