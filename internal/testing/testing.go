// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/desertthunder/spotify-import/internal/services"
	"github.com/desertthunder/spotify-import/internal/shared"
)

// MockService is a configurable test double for [services.Service].
type MockService struct {
	User        *services.SpotifyUser
	Searches    map[string]*services.SpotifyTrack
	Added       [][]string
	AddErr      error
	PlaylistErr error
}

func (m *MockService) Me(ctx context.Context) (*services.SpotifyUser, error) {
	if m.User == nil {
		return &services.SpotifyUser{ID: "mock", DisplayName: "Mock User"}, nil
	}
	return m.User, nil
}

func (m *MockService) Playlist(ctx context.Context, playlistID string) (*services.SpotifyPlaylist, error) {
	if m.PlaylistErr != nil {
		return nil, m.PlaylistErr
	}
	return &services.SpotifyPlaylist{ID: playlistID, Name: "Mock Playlist"}, nil
}

func (m *MockService) UserPlaylists(ctx context.Context) ([]services.SpotifySimplePlaylist, error) {
	return []services.SpotifySimplePlaylist{}, nil
}

func (m *MockService) SearchTrack(ctx context.Context, query string) (*services.SpotifyTrack, error) {
	if track, ok := m.Searches[query]; ok {
		return track, nil
	}
	return nil, fmt.Errorf("%w: %q", shared.ErrTrackNotFound, query)
}

func (m *MockService) AddPlaylistTracks(ctx context.Context, playlistID string, uris []string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.Added = append(m.Added, uris)
	return nil
}

func (m *MockService) Name() string { return "mock" }

// ScriptedRoundTripper replays a fixed sequence of responses or errors and
// counts the requests it sees.
type ScriptedRoundTripper struct {
	mu    sync.Mutex
	Steps []ScriptedStep
	Calls int
	URLs  []string
}

// ScriptedStep is one canned transport outcome.
type ScriptedStep struct {
	Status int
	Body   string
	Err    error
}

func (s *ScriptedRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.URLs = append(s.URLs, req.URL.String())
	step := s.Steps[len(s.Steps)-1]
	if s.Calls < len(s.Steps) {
		step = s.Steps[s.Calls]
	}
	s.Calls++

	if step.Err != nil {
		return nil, step.Err
	}

	return &http.Response{
		StatusCode: step.Status,
		Body:       io.NopCloser(bytes.NewReader([]byte(step.Body))),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
