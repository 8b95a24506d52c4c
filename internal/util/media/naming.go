package media

import (
	"path/filepath"
	"strings"

	"ytfetch/internal/model"
	"ytfetch/internal/util"
)

// OutputPath places a finished file at <outDir>/<mode>/<sanitized title><ext>.
func OutputPath(outDir string, mode model.FormatMode, title, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return filepath.Join(outDir, string(mode), util.SanitizeFilename(title)+strings.ToLower(ext))
}
