package dirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "ytfetch"

// AppName returns the canonical application name for directory paths.
func AppName() string {
	return appName
}

// ConfigDir returns the app's configuration directory.
// - Linux: $XDG_CONFIG_HOME/ytfetch or ~/.config/ytfetch
// - macOS: ~/Library/Application Support/ytfetch
// - Windows: %AppData%/ytfetch
func ConfigDir() (string, error) {
	return appDir("XDG_CONFIG_HOME", ".config", os.UserConfigDir)
}

// DataDir returns the app's data directory.
// - Linux: $XDG_DATA_HOME/ytfetch or ~/.local/share/ytfetch
// - macOS: ~/Library/Application Support/ytfetch
// - Windows: %AppData%/ytfetch
func DataDir() (string, error) {
	return appDir("XDG_DATA_HOME", filepath.Join(".local", "share"), os.UserConfigDir)
}

func appDir(xdgEnv, linuxRel string, fallback func() (string, error)) (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", AppName()), nil
	case "linux":
		if xdg := os.Getenv(xdgEnv); xdg != "" {
			return filepath.Join(xdg, AppName()), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, linuxRel, AppName()), nil
	default:
		base, err := fallback()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, AppName()), nil
	}
}

// HistoryPath returns the default location of the download history database.
func HistoryPath() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "history.db"), nil
}

// DefaultOutputDir is where downloads land unless --output says otherwise.
// It is relative to the working directory.
func DefaultOutputDir() string {
	return "downloads"
}

// Ensure creates the directory if it doesn't exist.
func Ensure(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}
