package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig holds the settings needed to talk to the identity provider.
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OIDCProvider performs the external credential exchange against an OpenID
// Connect identity provider. It only runs during the sign-in handshake; the
// rest of the application observes its results through the Store.
type OIDCProvider struct {
	provider *oidc.Provider
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier
}

var _ Authorizer = (*OIDCProvider)(nil)

// NewOIDCProvider runs issuer discovery and prepares the OAuth2 code flow.
func NewOIDCProvider(ctx context.Context, cfg OIDCConfig) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC issuer %s: %w", cfg.IssuerURL, err)
	}

	oauthCfg := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &OIDCProvider{
		provider: provider,
		oauth:    oauthCfg,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// AuthCodeURL returns the provider's authorization URL for the given state.
// Offline access with a forced consent prompt matches the sign-up flow the
// landing screen advertises.
func (p *OIDCProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("access_type", "offline"),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange redeems the authorization code, verifies the ID token, and maps
// its claims to a Remembered sign-in ready to persist.
func (p *OIDCProvider) Exchange(ctx context.Context, code string) (*Remembered, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("identity provider response carried no id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("id_token verification failed: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse id_token claims: %w", err)
	}

	// With a refresh token in hand the sign-in outlives the access token;
	// without one it ends when the access token does.
	now := time.Now()
	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = idToken.Expiry
	}
	if token.RefreshToken != "" {
		expiresAt = now.Add(RememberedLifetime)
	}

	return &Remembered{
		UserID:       idToken.Subject,
		Email:        claims.Email,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    expiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
