package model

import (
	"fmt"
	"strings"
)

// FormatMode is the output type requested by the user.
type FormatMode string

const (
	ModeMP4    FormatMode = "mp4"
	ModeSource FormatMode = "source"
	ModeMP3    FormatMode = "mp3"
	ModeAAC    FormatMode = "aac"
)

// Modes lists the format modes in menu order (choice 1..4).
var Modes = []FormatMode{ModeMP4, ModeSource, ModeMP3, ModeAAC}

// ParseFormatMode accepts a mode name (case-insensitive) or a menu choice "1".."4".
func ParseFormatMode(s string) (FormatMode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for i, m := range Modes {
		if v == string(m) || v == fmt.Sprint(i+1) {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid format %q (valid: mp4|source|mp3|aac)", s)
}

// Description is the one-line label shown in the interactive menu.
func (m FormatMode) Description() string {
	switch m {
	case ModeMP4:
		return "MP4 (best quality video + audio)"
	case ModeSource:
		return "Source (original format, no conversion)"
	case ModeMP3:
		return "MP3 (audio only, 320 kbps)"
	case ModeAAC:
		return "AAC (audio only, 256 kbps)"
	default:
		return string(m)
	}
}

// ConversionPolicy says when the conversion tool must run after a download.
type ConversionPolicy int

const (
	ConvertNever ConversionPolicy = iota
	ConvertIfContainerDiffers
	ConvertAlways
)

func (p ConversionPolicy) String() string {
	switch p {
	case ConvertIfContainerDiffers:
		return "if-container-differs"
	case ConvertAlways:
		return "always"
	default:
		return "never"
	}
}
