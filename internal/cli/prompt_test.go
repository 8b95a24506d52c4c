package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"ytfetch/internal/errs"
	"ytfetch/internal/model"
)

func TestAskURLSkipsBlankLines(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("\n  \nhttps://youtu.be/dQw4w9WgXcQ\n"), &out)
	got, err := p.AskURL(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://youtu.be/dQw4w9WgXcQ" {
		t.Errorf("AskURL = %q", got)
	}
	if n := strings.Count(out.String(), "Enter YouTube URL:"); n != 3 {
		t.Errorf("prompted %d times, want 3", n)
	}
}

func TestAskFormat(t *testing.T) {
	tests := []struct {
		input string
		want  model.FormatMode
	}{
		{"1\n", model.ModeMP4},
		{"2\n", model.ModeSource},
		{"3\n", model.ModeMP3},
		{"4\n", model.ModeAAC},
		{"0\nfoo\n4\n", model.ModeAAC},
		{"mp3", model.ModeMP3},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := NewPrompter(strings.NewReader(tt.input), &out).AskFormat(context.Background())
		if err != nil {
			t.Errorf("%q: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: AskFormat = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAskFormatEOF(t *testing.T) {
	var out bytes.Buffer
	_, err := NewPrompter(strings.NewReader("7\n"), &out).AskFormat(context.Background())
	if !errors.Is(err, io.EOF) {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input     string
		want      bool
		reprompts int
	}{
		{"y\n", true, 0},
		{"YES\n", true, 0},
		{"n\n", false, 0},
		{"No\n", false, 0},
		{"maybe\ny\n", true, 1},
		{"\nyse\nn\n", false, 2},
		{"ok\n", false, 1},
		{"", false, 0},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := NewPrompter(strings.NewReader(tt.input), &out).Confirm(context.Background(), "Proceed with download?")
		if err != nil {
			t.Errorf("%q: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if n := strings.Count(out.String(), "Please enter 'y' or 'n'."); n != tt.reprompts {
			t.Errorf("Confirm(%q) re-prompted %d times, want %d", tt.input, n, tt.reprompts)
		}
	}
}

func TestReadLineCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := NewPrompter(pr, &out).AskURL(ctx)
	if !errors.Is(err, errs.ErrCancelled) {
		t.Errorf("err = %v, want ErrCancelled", err)
	}
}

func TestShowInfo(t *testing.T) {
	var out bytes.Buffer
	NewPrompter(strings.NewReader(""), &out).ShowInfo(model.VideoInfo{Title: "Clip", DurationSeconds: 3725})
	if !strings.Contains(out.String(), "Clip") || !strings.Contains(out.String(), "1:02:05") {
		t.Errorf("ShowInfo output:\n%s", out.String())
	}
}
