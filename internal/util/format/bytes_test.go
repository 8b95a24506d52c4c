package format

import "testing"

func TestHumanizeBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{-1, "0 B"},
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{3_400_000, "3.2 MB"},
		{1024 * 1024 * 1024, "1.0 GB"},
		{1 << 40, "1.0 TB"},
		{1 << 50, "1024.0 TB"},
	}
	for _, tt := range tests {
		if got := HumanizeBytes(tt.bytes); got != tt.want {
			t.Errorf("HumanizeBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestRate(t *testing.T) {
	tests := []struct {
		bps  float64
		want string
	}{
		{0, ""},
		{-5, ""},
		{512, "512 B/s"},
		{1536, "1.5 KB/s"},
		{1.5 * 1024 * 1024, "1.5 MB/s"},
	}
	for _, tt := range tests {
		if got := Rate(tt.bps); got != tt.want {
			t.Errorf("Rate(%v) = %q, want %q", tt.bps, got, tt.want)
		}
	}
}
