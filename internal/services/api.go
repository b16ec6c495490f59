// Request executor and pagination walker for the Spotify Web API.

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/spotify-import/internal/shared"
	"golang.org/x/time/rate"
)

const (
	// defaultTries is the number of attempts made for each request before
	// giving up.
	defaultTries = 3

	// defaultBackoff is the fixed delay between attempts. Deliberately
	// constant with no jitter: this client serves a human-supervised CLI,
	// not a high-throughput service.
	defaultBackoff = 2 * time.Second

	// defaultProgressInterval throttles pagination progress logging.
	defaultProgressInterval = 15 * time.Second
)

// buildURL resolves path against the API base and appends params in order.
// A path already rooted at the base is used unmodified, as is the case for
// the self-contained "next" URLs pagination returns.
func buildURL(path string, params Params) string {
	u := path
	if !strings.HasPrefix(u, spotifyBaseURL) {
		u = spotifyBaseURL + u
	}

	if len(params) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + params.Encode()
	}

	return u
}

// page is the well-known shape of a paginated Spotify response.
type page struct {
	Items []json.RawMessage `json:"items"`
	Next  *string           `json:"next"`
	Total int               `json:"total"`
}

// Get issues an authenticated GET and decodes the response into result.
func (s *SpotifyService) Get(ctx context.Context, path string, params Params, result any) error {
	return s.do(ctx, http.MethodGet, buildURL(path, params), nil, result)
}

// Post issues an authenticated POST with a JSON body and decodes the response
// into result.
func (s *SpotifyService) Post(ctx context.Context, path string, params Params, body any, result any) error {
	return s.do(ctx, http.MethodPost, buildURL(path, params), body, result)
}

// ListAll walks a paginated endpoint, following each "next" URL until the API
// reports no further page, and returns the concatenated items in page order.
//
// Progress is logged at most once per progress interval; the throttle never
// blocks pagination.
func (s *SpotifyService) ListAll(ctx context.Context, path string, params Params) ([]json.RawMessage, error) {
	// Throttle state is per walk, drained up front: the first progress line
	// appears only after a full interval of this walk's pagination.
	progress := rate.NewLimiter(rate.Every(s.progressInterval), 1)
	progress.Allow()

	var pg page
	if err := s.Get(ctx, path, params, &pg); err != nil {
		return nil, err
	}

	items := pg.Items

	for pg.Next != nil && *pg.Next != "" {
		if progress.Allow() {
			s.logger.Infof("loaded %d/%d items", len(items), pg.Total)
		}

		next := *pg.Next
		pg = page{}
		if err := s.do(ctx, http.MethodGet, next, nil, &pg); err != nil {
			return nil, err
		}

		items = append(items, pg.Items...)
	}

	return items, nil
}

// do sends a request up to s.tries times with a fixed backoff between
// attempts. Transport failures and non-2xx responses are both retried; on
// exhaustion the last error is wrapped in shared.ErrRetriesExhausted.
func (s *SpotifyService) do(ctx context.Context, method, rawURL string, body any, result any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= s.tries; attempt++ {
		data, err := s.doOnce(ctx, method, rawURL, payload)
		if err == nil {
			if result == nil || len(data) == 0 {
				return nil
			}
			if err := json.Unmarshal(data, result); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
			return nil
		}

		lastErr = err
		if attempt == s.tries {
			break
		}

		s.logger.Infof("couldn't load URL: %s (%v)", rawURL, err)
		s.logger.Info("trying again...")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.backoff):
		}
	}

	return fmt.Errorf("%w: %s %s after %d attempts: %v", shared.ErrRetriesExhausted, method, rawURL, s.tries, lastErr)
}

// doOnce performs a single authenticated request and returns the response
// body for any 2xx status.
func (s *SpotifyService) doOnce(ctx context.Context, method, rawURL string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.session.AccessToken())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("spotify API error: status %d", resp.StatusCode)
	}

	return data, nil
}
