package util

import (
	"errors"
	"testing"

	"ytfetch/internal/errs"
)

func TestValidateURL_AcceptedShapes(t *testing.T) {
	const want = "dQw4w9WgXcQ"
	urls := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"http://youtube.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=42s",
		"https://m.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://music.youtube.com/watch?v=dQw4w9WgXcQ&list=RDAMVM",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?si=abc",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
		"https://www.youtube.com/v/dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ",
		"https://www.youtube.com/live/dQw4w9WgXcQ",
		"www.youtube.com/watch?v=dQw4w9WgXcQ",
		"  https://youtu.be/dQw4w9WgXcQ  ",
	}
	for _, raw := range urls {
		t.Run(raw, func(t *testing.T) {
			got, err := ValidateURL(raw)
			if err != nil {
				t.Fatalf("ValidateURL(%q) error: %v", raw, err)
			}
			if string(got) != want {
				t.Errorf("ValidateURL(%q) = %q, want %q", raw, got, want)
			}
		})
	}
}

func TestValidateURL_Rejects(t *testing.T) {
	urls := []string{
		"",
		"not-a-url",
		"https://vimeo.com/123456789",
		"https://www.youtube.com/watch?v=short",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQX",
		"https://www.youtube.com/watch",
		"https://www.youtube.com/playlist?list=PL1234567890",
		"https://youtu.be/",
		"https://youtu.be/dQw4w9WgXcQ/extra",
		"https://www.youtube.com/embed/dQw4w9WgXc!",
		"ftp://youtube.com/watch?v=dQw4w9WgXcQ",
		"https://notyoutube.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9 WgXcQ",
	}
	for _, raw := range urls {
		t.Run(raw, func(t *testing.T) {
			_, err := ValidateURL(raw)
			if !errors.Is(err, errs.ErrInvalidURL) {
				t.Errorf("ValidateURL(%q) err = %v, want ErrInvalidURL", raw, err)
			}
		})
	}
}
