// Package services implements the Spotify Web API client used by the
// importer.
//
// # Request Executor
//
// Every request carries the session's bearer token and is attempted a bounded
// number of times (default 3) with a fixed two second delay between attempts.
// Both transport failures and non-2xx responses count as retryable; when the
// attempts are exhausted the caller receives an error wrapping
// [shared.ErrRetriesExhausted] and decides whether to abort.
//
// # Pagination
//
// Spotify breaks long lists into pages linked by an absolute "next" URL.
// [SpotifyService.ListAll] follows the chain until "next" is null and returns
// the concatenated items. The "next" URL is self-contained, so it is fetched
// verbatim with no re-prefixing and no re-applied parameters. Progress is
// reported at most once every fifteen seconds via a [rate.Limiter].
//
// # Authorization
//
// The client authenticates with the implicit OAuth flow: the token arrives in
// a browser redirect fragment captured by the server package. A
// [SpotifySession] can also be built directly from a token supplied
// out-of-band, skipping the browser entirely.
package services
