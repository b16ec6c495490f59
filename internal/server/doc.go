// Package server provides the short-lived local HTTP listener that captures
// the Spotify implicit-flow authorization redirect.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern. The [BasicRouter] implementation uses
// [http.ServeMux] internally.
//
// # Capture Handler
//
// The implicit OAuth flow returns the access token in the redirect URL
// fragment. Fragments are visible to browser-side scripts but never
// transmitted to an HTTP server, so [CaptureHandler] serves a tiny script on
// /redirect whose only job is to re-navigate to /token with the fragment
// turned into a query string. The /token handler extracts access_token,
// tells the user to close the window, and delivers the token through a
// single-slot result channel.
//
// A hit on /token is the sole exit condition: /redirect hits and unknown
// paths (404) leave the listener waiting. The result is delivered exactly
// once and the channel closed, so the serving loop one frame above exits the
// instant the token arrives and can never have the signal swallowed by
// request-level error handling.
//
// # Usage
//
// When the user runs an import without --token, a temporary HTTP server
// starts on the configured loopback port, the browser opens to the Spotify
// authorization page, and the process blocks on the capture result. The port
// is coupled to the redirect URI registered for the client ID upstream.
package server
