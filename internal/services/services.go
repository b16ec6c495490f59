package services

import (
	"context"
	"net/url"
	"strings"
)

// Service defines the Spotify operations the import pipeline depends on.
type Service interface {
	// Me retrieves the authenticated user's profile.
	Me(ctx context.Context) (*SpotifyUser, error)

	// Playlist retrieves a playlist by ID.
	Playlist(ctx context.Context, playlistID string) (*SpotifyPlaylist, error)

	// UserPlaylists retrieves every playlist of the authenticated user,
	// following pagination to the end.
	UserPlaylists(ctx context.Context) ([]SpotifySimplePlaylist, error)

	// SearchTrack searches the catalog and returns the best match.
	// Returns shared.ErrTrackNotFound when the search comes up empty.
	SearchTrack(ctx context.Context, query string) (*SpotifyTrack, error)

	// AddPlaylistTracks appends track URIs to a playlist.
	AddPlaylistTracks(ctx context.Context, playlistID string, uris []string) error

	// Name returns the name of the service.
	Name() string
}

// Param is a single query string parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query string parameters.
//
// A slice rather than a map: the wire encoding preserves the order parameters
// were supplied in, which url.Values cannot do.
type Params []Param

// Encode serializes the parameters in order, URL-escaping keys and values.
func (p Params) Encode() string {
	var b strings.Builder
	for i, param := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(param.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(param.Value))
	}
	return b.String()
}
