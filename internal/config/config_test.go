package config

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRoot() *cobra.Command {
	root := &cobra.Command{Use: "ytfetch"}
	root.PersistentFlags().String("output", "", "")
	root.PersistentFlags().Bool("verbose", false, "")
	root.PersistentFlags().Duration("retry-delay", 0, "")
	root.PersistentFlags().Bool("throttle", false, "")
	root.Flags().String("format", "", "")
	root.Flags().String("browser", "", "")
	return root
}

func TestLoadPrecedence(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("YTFETCH_ENGINE", "native")
	t.Setenv("YTFETCH_BROWSER", "firefox")

	root := newRoot()
	if err := root.ParseFlags([]string{"--output", "/tmp/videos", "--browser", " Chrome "}); err != nil {
		t.Fatal(err)
	}
	if err := Init(root); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cfg := Load()

	if cfg.OutputDir != "/tmp/videos" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.Engine != "native" {
		t.Errorf("Engine = %q, want env override", cfg.Engine)
	}
	if cfg.Browser != "chrome" {
		t.Errorf("Browser = %q, want flag to beat env", cfg.Browser)
	}
	if cfg.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %v, want default", cfg.RetryDelay)
	}
	if cfg.HistoryPath == "" {
		t.Errorf("HistoryPath default missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := Init(newRoot()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cfg := Load()
	if cfg.OutputDir != "downloads" || cfg.Engine != "ytdlp" || cfg.Verbose || cfg.Throttle {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadThrottleFromEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("YTFETCH_THROTTLE", "true")

	if err := Init(newRoot()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !Load().Throttle {
		t.Errorf("Throttle = false, want env override")
	}
}
