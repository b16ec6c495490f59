// package models defines the domain types shared by the import pipeline.
package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/spotify-import/internal/shared"
)

// Song is a single entry in the import file: a title and artist pair to
// resolve against the Spotify catalog.
type Song struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// TrackMatch records the outcome of resolving one Song. When Found is false
// the match columns and URI are empty and Distance is meaningless.
type TrackMatch struct {
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	MatchedTitle  string `json:"matched_title,omitempty"`
	MatchedArtist string `json:"matched_artist,omitempty"`
	Distance      int    `json:"distance,omitempty"`
	URI           string `json:"uri,omitempty"`
	Found         bool   `json:"found"`
}

// parenthetical matches any parenthesized segment, non-greedily.
var parenthetical = regexp.MustCompile(`\(.*?\)`)

// NormalizeTitle strips parenthesized segments ("(Remastered 2011)",
// "(feat. ...)") and surrounding whitespace so catalog searches match on the
// base title.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(parenthetical.ReplaceAllString(title, ""))
}

// SearchQuery returns the catalog query for a song: artist followed by the
// normalized title.
func (s Song) SearchQuery() string {
	return fmt.Sprintf("%s %s", s.Artist, NormalizeTitle(s.Title))
}

// ParseSongs decodes the import file payload. Returns an error for anything
// other than a JSON array of song objects; callers treat this as fatal before
// any network activity.
func ParseSongs(data []byte) ([]Song, error) {
	if err := shared.ValidateJSON(data); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON file provided", shared.ErrInvalidInput)
	}

	var songs []Song
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, fmt.Errorf("%w: expected an array of {title, artist} objects: %v", shared.ErrInvalidInput, err)
	}

	return songs, nil
}
