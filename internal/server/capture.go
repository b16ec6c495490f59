package server

import (
	"fmt"
	"net/http"
	"sync"
)

// redirectScript is served on /redirect. The access token arrives in the URL
// fragment, which the browser never sends to a server; the script re-navigates
// with the fragment contents as a query string so /token can read it.
const redirectScript = `<script>location.replace("token?" + location.hash.slice(1));</script>`

// tokenPage is served on /token once the token has been read from the query
// string.
const tokenPage = `<script>close()</script>Thanks! You may now close this window.`

// CaptureResult is the single-use token-delivery event that ends the capture.
type CaptureResult struct {
	AccessToken string
	err         error
}

func (c CaptureResult) Error() error {
	return c.err
}

// CaptureHandler implements the two-hop redirect dance that extracts a bearer
// token from the implicit OAuth flow's URL fragment.
//
// The authorization server redirects the browser to /redirect with the token
// in the fragment; /redirect serves a script that immediately re-navigates to
// /token with the fragment as a visible query string; /token extracts the
// token and signals completion. Implements [Handler] for registration with a
// [Router].
type CaptureHandler struct {
	resultChan chan CaptureResult
	once       sync.Once
}

// NewCaptureHandler creates a capture handler ready to receive one redirect.
func NewCaptureHandler() *CaptureHandler {
	return &CaptureHandler{
		resultChan: make(chan CaptureResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CaptureHandler) Routes() []string {
	return []string{"/redirect", "/token"}
}

// ServeHTTP handles the two capture routes.
//
// Only a hit on /token delivers a result; /redirect and unknown paths leave
// the capture waiting. Nothing is logged per request so the flow stays quiet
// on the CLI's terminal.
func (h *CaptureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/redirect":
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, redirectScript)

	case "/token":
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, tokenPage)

		token := r.URL.Query().Get("access_token")
		if token == "" {
			h.Send(CaptureResult{err: fmt.Errorf("no access_token in redirect query: %s", r.URL.RawQuery)})
			return
		}
		h.Send(CaptureResult{AccessToken: token})

	default:
		http.NotFound(w, r)
	}
}

// Send delivers the capture result exactly once.
func (h *CaptureHandler) Send(result CaptureResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the channel that receives the capture completion.
//
// The channel receives exactly one result and is then closed.
func (h *CaptureHandler) Result() <-chan CaptureResult {
	return h.resultChan
}
