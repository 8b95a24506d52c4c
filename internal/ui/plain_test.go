package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ytfetch/internal/errs"
	"ytfetch/internal/progress"
)

func TestRenderBar(t *testing.T) {
	b, total := int64(10*1024*1024), int64(20*1024*1024)
	speed := "1.5 MB/s"
	eta := 4 * time.Second
	got := RenderBar(progress.Update{Percent: 50, Bytes: &b, Total: &total, Speed: &speed, ETA: &eta}, 10)
	want := "[█████░░░░░]  50.0% 10.0 MB/20.0 MB - 1.5 MB/s - ETA 0:04"
	if got != want {
		t.Errorf("RenderBar = %q, want %q", got, want)
	}
}

func TestRenderBarClampsAndOmitsUnknown(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{-3, "[░░░░]   0.0%"},
		{150, "[████] 100.0%"},
	}
	for _, tt := range tests {
		if got := RenderBar(progress.Update{Percent: tt.pct}, 4); got != tt.want {
			t.Errorf("RenderBar(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestRunPlainSuccess(t *testing.T) {
	var out bytes.Buffer
	feed := progress.NewFeed()
	err := RunPlain(context.Background(), &out, feed, func(context.Context) error {
		feed.Update(progress.Update{Stage: progress.StageMetadata, Percent: -1, Message: "Fetching video info"})
		feed.Update(progress.Update{Stage: progress.StageDownloading, Percent: 100, Message: "Downloading"})
		feed.Log(progress.Log{Level: progress.LevelWarn, Line: "conversion tool missing"})
		feed.Result(progress.Result{OutputPath: "out/mp4/a.mp4", Bytes: 2048})
		return nil
	})
	if err != nil {
		t.Fatalf("RunPlain: %v", err)
	}
	s := out.String()
	// The metadata update may be coalesced away; the rest must be printed.
	for _, want := range []string{"Downloading", "100.0%", "Warning: conversion tool missing", "Saved: out/mp4/a.mp4 (2.0 KB)"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
}

func TestRunPlainReturnsWorkError(t *testing.T) {
	var out bytes.Buffer
	feed := progress.NewFeed()
	failure := errs.New(errs.KindNetwork, errs.StageDownload, nil)
	err := RunPlain(context.Background(), &out, feed, func(context.Context) error {
		feed.Result(progress.Result{Err: failure})
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("err = %v, want %v", err, failure)
	}
	if !strings.Contains(out.String(), "✗") {
		t.Errorf("missing failure line:\n%s", out.String())
	}
}
