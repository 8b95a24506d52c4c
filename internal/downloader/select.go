package downloader

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
)

// SelectDownloadedFile finds the best downloaded file in workdir for the given video ID.
// A file with the prefer extension wins; otherwise common playable formats
// (mp4, m4a, mkv, webm, ...) come first. Partial and sidecar files are ignored.
func SelectDownloadedFile(workdir, id, prefer string) (string, error) {
	candidates, err := filepath.Glob(filepath.Join(workdir, id+".*"))
	if err != nil {
		return "", err
	}
	candidates = finished(candidates)

	if len(candidates) == 0 {
		// Fallback: try any file in workdir
		all, _ := filepath.Glob(filepath.Join(workdir, "*"))
		candidates = finished(all)
		if len(candidates) == 0 {
			return "", errors.New("no output file found")
		}
	}

	prefer = strings.ToLower(strings.TrimPrefix(prefer, "."))
	rank := func(path string) int {
		ext := filepath.Ext(path)
		if prefer != "" && strings.EqualFold(strings.TrimPrefix(ext, "."), prefer) {
			return -1
		}
		return extPriority(ext)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		pri, prj := rank(candidates[i]), rank(candidates[j])
		if pri == prj {
			return candidates[i] < candidates[j]
		}
		return pri < prj
	})

	return candidates[0], nil
}

func finished(paths []string) []string {
	out := paths[:0:0]
	for _, p := range paths {
		switch strings.ToLower(filepath.Ext(p)) {
		case ".part", ".ytdl", ".temp", ".json", ".jpg", ".webp", ".vtt":
			continue
		}
		out = append(out, p)
	}
	return out
}

// playable orders container extensions, best first. Unknown ones sort last.
var playable = map[string]int{
	".mp4":  0,
	".m4a":  1,
	".mkv":  2,
	".webm": 3,
	".opus": 4,
	".mp3":  5,
	".mov":  6,
}

func extPriority(ext string) int {
	if p, ok := playable[strings.ToLower(ext)]; ok {
		return p
	}
	return len(playable)
}
