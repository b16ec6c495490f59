package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newCaptureRouter() (*CaptureHandler, *BasicRouter) {
	handler := NewCaptureHandler()
	router := NewBasicRouter()
	router.Handler(handler)
	return handler, router
}

func TestCaptureHandler(t *testing.T) {
	t.Run("Redirect Serves Fragment Relay Script", func(t *testing.T) {
		handler, router := newCaptureRouter()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/redirect", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/html" {
			t.Errorf("expected text/html, got %q", ct)
		}

		body, _ := io.ReadAll(rec.Body)
		if !strings.Contains(string(body), `location.hash.slice(1)`) {
			t.Errorf("expected fragment relay script, got %s", body)
		}

		select {
		case <-handler.Result():
			t.Error("redirect hit must not deliver a result")
		default:
		}
	})

	t.Run("Token Extraction", func(t *testing.T) {
		handler, router := newCaptureRouter()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token?access_token=ABC123&token_type=Bearer", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}

		body, _ := io.ReadAll(rec.Body)
		if !strings.Contains(string(body), "close this window") {
			t.Errorf("expected close page, got %s", body)
		}

		select {
		case result := <-handler.Result():
			if result.Error() != nil {
				t.Fatalf("expected no error, got %v", result.Error())
			}
			if result.AccessToken != "ABC123" {
				t.Errorf("expected token ABC123, got %s", result.AccessToken)
			}
		case <-time.After(time.Second):
			t.Fatal("expected a capture result")
		}
	})

	t.Run("Token Without Access Token Delivers Error", func(t *testing.T) {
		handler, router := newCaptureRouter()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token?error=access_denied", nil))

		select {
		case result := <-handler.Result():
			if result.Error() == nil {
				t.Error("expected an error result")
			}
		case <-time.After(time.Second):
			t.Fatal("a /token hit must always end the capture")
		}
	})

	t.Run("Unknown Route Does Not Terminate", func(t *testing.T) {
		handler, router := newCaptureRouter()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}

		select {
		case <-handler.Result():
			t.Error("unknown route must not deliver a result")
		default:
		}
	})

	t.Run("Terminates Exactly Once", func(t *testing.T) {
		handler, router := newCaptureRouter()

		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token?access_token=FIRST", nil))
		}

		result, ok := <-handler.Result()
		if !ok {
			t.Fatal("expected the first result")
		}
		if result.AccessToken != "FIRST" {
			t.Errorf("expected token FIRST, got %s", result.AccessToken)
		}

		// The channel is closed after the single delivery.
		if _, ok := <-handler.Result(); ok {
			t.Error("expected no second result")
		}
	})

	t.Run("End To End Over TCP", func(t *testing.T) {
		handler, router := newCaptureRouter()
		srv := httptest.NewServer(router)
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/redirect")
		if err != nil {
			t.Fatalf("redirect request failed: %v", err)
		}
		resp.Body.Close()

		resp, err = http.Get(srv.URL + "/token?access_token=tcp_token")
		if err != nil {
			t.Fatalf("token request failed: %v", err)
		}
		resp.Body.Close()

		select {
		case result := <-handler.Result():
			if result.AccessToken != "tcp_token" {
				t.Errorf("expected tcp_token, got %s", result.AccessToken)
			}
		case <-time.After(time.Second):
			t.Fatal("expected a capture result")
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("Middleware Applied In Reverse Order", func(t *testing.T) {
		var order []string

		mk := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mk("outer"), mk("inner"))
		router.Handler(NewCaptureHandler())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/redirect", nil))

		if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
			t.Errorf("unexpected middleware order %v", order)
		}
	})
}
