// Package publish holds the completeness rules an entity must meet before
// it may be marked published. The checks look at the full resulting state
// of a row, never at the fields of a partial update alone.
package publish

import (
	"strings"

	"github.com/amonks/catalog/data"
)

// Error names the first required field found missing.
type Error struct {
	// like "releaseDate"
	Field string

	Message string
}

func (e *Error) Error() string { return e.Message }

// Artist checks a resulting artist against target. Only a published
// target is checked.
func Artist(a *data.Artist, target data.Status) error {
	if target != data.StatusPublished {
		return nil
	}
	if blank(a.ImageURL) {
		return &Error{"imageUrl", "Published artists require imageUrl (portrait)."}
	}
	if blank(a.Bio) {
		return &Error{"bio", "Published artists require a non-empty bio."}
	}
	return nil
}

func Album(a *data.Album, target data.Status) error {
	if target != data.StatusPublished {
		return nil
	}
	if blank(a.CoverURL) {
		return &Error{"coverUrl", "Published albums require coverUrl (album art)."}
	}
	if a.ReleaseDate == nil {
		return &Error{"releaseDate", "Published albums require releaseDate."}
	}
	return nil
}

// Track checks a resulting track, including the audio files it will have
// once the change is applied.
func Track(t *data.Track, target data.Status) error {
	if target != data.StatusPublished {
		return nil
	}
	if len(t.AudioFiles) == 0 {
		return &Error{"audioFiles", "Published tracks require at least one audio file."}
	}
	if t.DurationMS <= 0 {
		return &Error{"durationMs", "Published tracks require durationMs > 0."}
	}
	return nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
