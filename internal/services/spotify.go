// Spotify API types, session, and implicit-flow authorization URL.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotify-import/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL = "https://accounts.spotify.com/authorize"
	spotifyBaseURL = "https://api.spotify.com/v1/"
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
	Product     string `json:"product"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// FirstArtist returns the name of the track's primary artist.
func (t *SpotifyTrack) FirstArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTracks struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Owner       Owner          `json:"owner"`
	Public      bool           `json:"public"`
	Tracks      playlistTracks `json:"tracks"`
	URI         string         `json:"uri"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Owner       Owner          `json:"owner"`
	Public      bool           `json:"public"`
	Tracks      playlistTracks `json:"tracks"`
	URI         string         `json:"uri"`
}

// SpotifySession is an immutable holder of a bearer access token, created
// either by the authorization flow or directly from a caller-supplied token.
// It lives for the process lifetime and is stamped onto every outgoing
// request.
type SpotifySession struct {
	token *oauth2.Token
}

// NewSession wraps an access token in a session.
func NewSession(accessToken string) (*SpotifySession, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", shared.ErrMissingCredentials)
	}
	return &SpotifySession{token: &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}}, nil
}

// AccessToken returns the bearer token value.
func (s *SpotifySession) AccessToken() string {
	return s.token.AccessToken
}

// SpotifyService implements [Service] against the Spotify Web API.
type SpotifyService struct {
	session          *SpotifySession
	httpClient       *http.Client
	logger           *log.Logger
	tries            int
	backoff          time.Duration
	progressInterval time.Duration
}

// ServiceOpts contains optional dependencies for NewSpotifyService.
type ServiceOpts struct {
	HTTPClient       *http.Client
	Logger           *log.Logger
	Tries            int           // attempts per request, default 3
	Backoff          time.Duration // delay between attempts, default 2s
	ProgressInterval time.Duration // spacing of pagination progress logs, default 15s
}

// NewSpotifyService creates a Spotify client that authenticates every request
// with the session's bearer token.
func NewSpotifyService(session *SpotifySession, opts ServiceOpts) (*SpotifyService, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: nil session", shared.ErrNotAuthenticated)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Tries <= 0 {
		opts.Tries = defaultTries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = defaultProgressInterval
	}

	return &SpotifyService{
		session:          session,
		httpClient:       opts.HTTPClient,
		logger:           opts.Logger,
		tries:            opts.Tries,
		backoff:          opts.Backoff,
		progressInterval: opts.ProgressInterval,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// ImplicitAuthURL constructs the remote authorization URL for the implicit
// (token-in-fragment) OAuth flow. The redirect URI points at the local
// capture server's /redirect route on the given port, which must match the
// URI registered for the client ID.
//
// No state parameter: the token never travels back through a server-side
// exchange, and the capture listener accepts exactly one redirect.
func ImplicitAuthURL(clientID string, scopes []string, port int) string {
	conf := oauth2.Config{
		ClientID:    clientID,
		Scopes:      scopes,
		RedirectURL: fmt.Sprintf("http://127.0.0.1:%d/redirect", port),
		Endpoint:    oauth2.Endpoint{AuthURL: spotifyAuthURL},
	}
	return conf.AuthCodeURL("", oauth2.SetAuthURLParam("response_type", "token"))
}

// Me retrieves the current authenticated user's profile.
func (s *SpotifyService) Me(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.Get(ctx, "me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Playlist retrieves a playlist by ID.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*SpotifyPlaylist, error) {
	var playlist SpotifyPlaylist
	if err := s.Get(ctx, "playlists/"+playlistID, nil, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// UserPlaylists retrieves all of the user's playlists, following pagination.
func (s *SpotifyService) UserPlaylists(ctx context.Context) ([]SpotifySimplePlaylist, error) {
	items, err := s.ListAll(ctx, "me/playlists", Params{{"limit", "50"}})
	if err != nil {
		return nil, err
	}

	playlists := make([]SpotifySimplePlaylist, 0, len(items))
	for _, item := range items {
		var playlist SpotifySimplePlaylist
		if err := json.Unmarshal(item, &playlist); err != nil {
			return nil, fmt.Errorf("failed to decode playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}

	return playlists, nil
}

// SearchTrack searches the catalog for the single best track match.
func (s *SpotifyService) SearchTrack(ctx context.Context, query string) (*SpotifyTrack, error) {
	params := Params{
		{"q", query},
		{"type", "track"},
		{"limit", "1"},
	}

	var response struct {
		Tracks struct {
			Items []SpotifyTrack `json:"items"`
		} `json:"tracks"`
	}

	if err := s.Get(ctx, "search", params, &response); err != nil {
		return nil, err
	}

	if len(response.Tracks.Items) == 0 {
		return nil, fmt.Errorf("%w: %q", shared.ErrTrackNotFound, query)
	}

	return &response.Tracks.Items[0], nil
}

// AddPlaylistTracks appends track URIs to the playlist. Spotify caps a single
// call at 100 URIs; callers chunk accordingly.
func (s *SpotifyService) AddPlaylistTracks(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}

	body := map[string]any{"uris": uris}
	return s.Post(ctx, fmt.Sprintf("playlists/%s/tracks", playlistID), nil, body, nil)
}
