package driving

import "context"

// FeedAuthorizer runs the OAuth authorization code flow (with PKCE) that
// grants access to the company updates feed.
type FeedAuthorizer interface {
	// RedirectURL is the registered loopback callback URL.
	RedirectURL() string

	// NewVerifier returns a fresh PKCE code verifier.
	NewVerifier() string

	// AuthCodeURL builds the consent URL for state and verifier.
	AuthCodeURL(state, verifier string) string

	// Exchange trades the authorization code for an access token.
	Exchange(ctx context.Context, code, verifier string) (string, error)
}
