package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MakeTempWorkdir creates a hidden per-session directory under base.
// Keeping it on the output volume lets the final move be a rename.
func MakeTempWorkdir(base, name string) (string, error) {
	if err := EnsureDir(base); err != nil {
		return "", err
	}
	dir := filepath.Join(base, ".ytfetch-"+name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// EnsureDir creates the directory path if it does not exist.
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// RemoveIfExists deletes the file if present.
func RemoveIfExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return os.Remove(path)
	} else if os.IsNotExist(err) {
		return nil
	} else {
		return err
	}
}

// SanitizeFilename cleans a title to be safe as a filename:
// - Replace whitespace and control characters with underscores
// - Replace characters illegal in paths (and shell-hostile ones) with underscores
// - Collapse runs of underscores
// - Truncate to 200 runes
func SanitizeFilename(s string) string {
	const forbidden = `[]/\:*?"<>|#%{}$!@+^~` + "`" + `=&;`
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(forbidden, r) {
			return '_'
		}
		return r
	}, s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	s = strings.Trim(s, "._-")

	const maxRunes = 200
	if utf8.RuneCountInString(s) > maxRunes {
		s = string([]rune(s)[:maxRunes])
		s = strings.TrimRight(s, "._-")
	}

	if s == "" {
		return "untitled"
	}
	return s
}

// MoveFile renames src to dst, replacing dst. When the rename crosses devices
// it falls back to copy and remove; a partially copied dst is removed.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
