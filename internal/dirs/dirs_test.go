package dirs

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestXDGOverrides(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG variables only apply on linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"config", ConfigDir, filepath.Join(base, "cfg", "ytfetch")},
		{"data", DataDir, filepath.Join(base, "data", "ytfetch")},
		{"history", HistoryPath, filepath.Join(base, "data", "ytfetch", "history.db")},
	}
	for _, tt := range tests {
		got, err := tt.fn()
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestEnsure(t *testing.T) {
	if err := Ensure(""); err == nil {
		t.Errorf("Ensure(\"\") should fail")
	}
	if err := Ensure(filepath.Join(t.TempDir(), "a", "b")); err != nil {
		t.Errorf("Ensure: %v", err)
	}
}
