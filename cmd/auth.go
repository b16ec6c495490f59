package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/spotify-import/internal/server"
	"github.com/desertthunder/spotify-import/internal/services"
	"github.com/desertthunder/spotify-import/internal/shared"
	"github.com/urfave/cli/v3"
)

// Auth runs the implicit OAuth flow standalone and prints the captured token
// so it can be reused with --token.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	session, err := r.doImplicitAuth(ctx)
	if err != nil {
		return err
	}

	r.writePlain("%s\n", r.styles.OK("✓ Authorization successful"))
	r.writePlain("%s\n", session.AccessToken())
	r.writePlain("%s\n", r.styles.Help("Reuse it with: spotify-import import --token <token> <playlist> <file>"))

	return nil
}

// doImplicitAuth drives the token-in-fragment authorization flow: it opens
// the browser to the Spotify authorization URL, runs the local capture
// server, and blocks until the token arrives.
//
// The wait has no deadline unless auth_timeout_seconds is configured; an
// abandoned browser flow blocks forever, matching the interactive nature of
// the command.
func (r *Runner) doImplicitAuth(ctx context.Context) (*services.SpotifySession, error) {
	spotify := r.config.Credentials.Spotify
	if spotify.ClientID == "" {
		return nil, fmt.Errorf("%w: Spotify client_id must be set in config.toml", shared.ErrMissingCredentials)
	}

	authURL := services.ImplicitAuthURL(spotify.ClientID, spotify.Scopes, r.config.Server.Port)

	handler := server.NewCaptureHandler()
	router := server.NewBasicRouter()
	router.Handler(handler)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port),
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	// Always log the URL; opening the browser is best-effort and the user
	// can click or copy it instead.
	r.logger.Infof("logging in (click if it doesn't open automatically): %s", authURL)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically: %v", err)
	}

	var timeoutC <-chan time.Time
	if r.config.Server.AuthTimeoutSeconds > 0 {
		timer := time.NewTimer(time.Duration(r.config.Server.AuthTimeoutSeconds) * time.Second)
		defer timer.Stop()
		timeoutC = timer.C
	}

	var result server.CaptureResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("capture server error: %w", err)
	case <-timeoutC:
		return nil, fmt.Errorf("%w: no authorization redirect after %ds", shared.ErrTimeout, r.config.Server.AuthTimeoutSeconds)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down capture server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}

	r.logger.Debug("received access token from Spotify")

	return services.NewSession(result.AccessToken)
}

// resolveService returns a ready Spotify client: the injected one, a session
// built from --token, or one captured through the browser flow.
func (r *Runner) resolveService(ctx context.Context, cmd *cli.Command) (services.Service, error) {
	if r.service != nil {
		return r.service, nil
	}

	var session *services.SpotifySession
	var err error

	if token := cmd.String("token"); token != "" {
		session, err = services.NewSession(token)
	} else {
		session, err = r.doImplicitAuth(ctx)
	}
	if err != nil {
		return nil, err
	}

	svc, err := services.NewSpotifyService(session, services.ServiceOpts{
		HTTPClient: r.httpClient,
		Logger:     r.logger,
		Tries:      r.config.API.Tries,
		Backoff:    time.Duration(r.config.API.BackoffSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	r.service = svc
	return svc, nil
}
