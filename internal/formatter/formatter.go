// package formatter renders track match results as CSV rows.
package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/desertthunder/spotify-import/internal/models"
)

// MatchWriter streams TrackMatch rows as CSV.
//
// A hit produces five columns: local title, local artist, matched title,
// matched artist, edit distance. A miss produces four columns with the match
// fields empty.
type MatchWriter struct {
	w *csv.Writer
}

// NewMatchWriter creates a MatchWriter targeting out.
func NewMatchWriter(out io.Writer) *MatchWriter {
	return &MatchWriter{w: csv.NewWriter(out)}
}

// Write emits one match row.
func (m *MatchWriter) Write(match *models.TrackMatch) error {
	title := models.NormalizeTitle(match.Title)

	var record []string
	if match.Found {
		record = []string{
			title,
			match.Artist,
			match.MatchedTitle,
			match.MatchedArtist,
			strconv.Itoa(match.Distance),
		}
	} else {
		record = []string{title, match.Artist, "", ""}
	}

	if err := m.w.Write(record); err != nil {
		return fmt.Errorf("failed to write CSV record: %w", err)
	}

	// Flush per row so output interleaves sensibly with progress logging on
	// long runs.
	m.w.Flush()
	return m.w.Error()
}

// Flush writes any buffered rows and reports the writer's error state.
func (m *MatchWriter) Flush() error {
	m.w.Flush()
	return m.w.Error()
}
