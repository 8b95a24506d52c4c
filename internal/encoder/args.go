package encoder

import (
	"fmt"

	"ytfetch/internal/model"
	"ytfetch/internal/util/bitrate"
)

// mp4 re-encode settings; the download already holds the best streams, so
// quality matters more than size.
const (
	videoPreset  = "veryfast"
	videoCRF     = "18"
	mp4AudioKbps = 192
	defaultMP3   = 320
	defaultAAC   = 256
)

// BuildArgs constructs ffmpeg arguments converting task.InputPath into the
// target container and codec of task.Options.
func BuildArgs(task model.ConvertTask, includeProgress bool) []string {
	args := []string{"-y", "-hide_banner", "-i", task.InputPath}

	opts := task.Options
	switch {
	case opts.AudioOnly && opts.TargetCodec == "mp3":
		args = append(args,
			"-vn",
			"-c:a", "libmp3lame",
			"-b:a", fmt.Sprintf("%dk", bitrate.SafeAudioKbps(nonZero(opts.BitrateKbps, defaultMP3))),
		)
	case opts.AudioOnly:
		args = append(args,
			"-vn",
			"-c:a", "aac",
			"-b:a", fmt.Sprintf("%dk", bitrate.SafeAudioKbps(nonZero(opts.BitrateKbps, defaultAAC))),
			"-movflags", "+faststart",
		)
	default:
		args = append(args,
			"-c:v", "libx264",
			"-preset", videoPreset,
			"-crf", videoCRF,
			"-pix_fmt", "yuv420p",
			"-c:a", "aac",
			"-b:a", fmt.Sprintf("%dk", mp4AudioKbps),
			"-movflags", "+faststart",
		)
	}

	if includeProgress {
		args = append(args, "-progress", "pipe:1", "-nostats")
	}

	args = append(args, task.OutputPath)
	return args
}

func nonZero(v int, def int) int {
	if v == 0 {
		return def
	}
	return v
}
