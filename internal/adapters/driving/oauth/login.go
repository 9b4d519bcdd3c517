package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Hmv123/RAG-Application/internal/logger"
)

// DefaultLoginTimeout bounds how long Login waits for the browser.
const DefaultLoginTimeout = 5 * time.Minute

// ErrNoRefreshToken is returned when the provider grants access but no
// refresh token, which happens when consent was not prompted.
var ErrNoRefreshToken = errors.New("provider did not return a refresh token")

// LoginOptions adjusts an interactive login.
type LoginOptions struct {
	// Port for the callback server. Zero picks a free port.
	Port int

	// Timeout bounds the wait for the browser. Zero uses DefaultLoginTimeout.
	Timeout time.Duration

	// Show receives the authorization URL before the browser is opened.
	Show func(authURL string)

	// Open launches a browser. Nil leaves it to the user to follow Show.
	Open func(authURL string) error
}

// Login runs the authorization code flow with PKCE against cfg and
// returns a token that carries a refresh token. cfg is not modified.
func Login(ctx context.Context, cfg *oauth2.Config, opts LoginOptions) (*oauth2.Token, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultLoginTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	state := uuid.NewString()
	recv, err := Listen(ctx, opts.Port, state)
	if err != nil {
		return nil, err
	}
	defer func() { _ = recv.Close() }()

	conf := *cfg
	conf.RedirectURL = recv.RedirectURI()
	verifier := oauth2.GenerateVerifier()
	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)

	if opts.Show != nil {
		opts.Show(authURL)
	}
	if opts.Open != nil {
		if err := opts.Open(authURL); err != nil {
			logger.Warn("could not open browser: %v", err)
		}
	}

	code, err := recv.Wait(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("authorization code received on port %d", recv.Port())

	token, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if token.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	return token, nil
}
