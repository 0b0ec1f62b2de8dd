// Package linkedin reads organization share statistics from the LinkedIn
// Marketing API for the company updates command.
package linkedin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Verify interface compliance.
var (
	_ driven.CompanyFeed     = (*Feed)(nil)
	_ driving.FeedAuthorizer = (*Authorizer)(nil)
)

// LinkedIn endpoints.
const (
	AuthURL        = "https://www.linkedin.com/oauth/v2/authorization"
	TokenURL       = "https://www.linkedin.com/oauth/v2/accessToken"
	DefaultAPIBase = "https://api.linkedin.com/v2"
	DefaultTimeout = 30 * time.Second
)

// orgURNPrefix marks a company argument that is already an organization URN.
const orgURNPrefix = "urn:li:organization:"

// Scopes requested during authorization.
var Scopes = []string{"r_organization_social", "rw_organization_admin"}

// OAuthConfig returns the authorization code flow configuration.
func OAuthConfig(settings domain.LinkedInSettings) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		RedirectURL:  settings.RedirectURL,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   AuthURL,
			TokenURL:  TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthCodeURL builds the browser URL for the consent screen with a PKCE challenge.
func AuthCodeURL(cfg *oauth2.Config, state, verifier string) string {
	return cfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades an authorization code for a token.
func Exchange(ctx context.Context, cfg *oauth2.Config, code, verifier string) (*oauth2.Token, error) {
	tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("linkedin token exchange: %w", err)
	}
	return tok, nil
}

// Feed implements driven.CompanyFeed.
type Feed struct {
	client  *http.Client
	apiBase string
}

// NewFeed creates a feed authorised by the stored access token.
// Returns nil when no token is configured.
func NewFeed(settings domain.LinkedInSettings) *Feed {
	if settings.AccessToken == "" {
		return nil
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: settings.AccessToken, TokenType: "Bearer"})
	return NewFeedWithClient(oauth2.NewClient(context.Background(), ts), DefaultAPIBase)
}

// NewFeedWithClient creates a feed over an already authorised client.
func NewFeedWithClient(client *http.Client, apiBase string) *Feed {
	if client.Timeout == 0 {
		client.Timeout = DefaultTimeout
	}
	return &Feed{client: client, apiBase: strings.TrimRight(apiBase, "/")}
}

type organizationsResponse struct {
	Elements []struct {
		ID            int64  `json:"id"`
		LocalizedName string `json:"localizedName"`
	} `json:"elements"`
}

type shareStatisticsResponse struct {
	Elements []struct {
		Share                string `json:"share"`
		UGCPost              string `json:"ugcPost"`
		TotalShareStatistics struct {
			ImpressionCount int64   `json:"impressionCount"`
			Engagement      float64 `json:"engagement"`
			ClickCount      int64   `json:"clickCount"`
			LikeCount       int64   `json:"likeCount"`
			ShareCount      int64   `json:"shareCount"`
			CommentCount    int64   `json:"commentCount"`
		} `json:"totalShareStatistics"`
		TimeRange *struct {
			Start int64 `json:"start"`
		} `json:"timeRange,omitempty"`
	} `json:"elements"`
}

// Updates returns share statistics for company. The company may be an
// organization URN or a name, which is resolved through its vanity name.
// A non-200 statistics response yields no updates rather than an error.
func (f *Feed) Updates(ctx context.Context, company string) ([]domain.CompanyUpdate, error) {
	urn, err := f.resolveURN(ctx, company)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", "organizationalEntity")
	q.Set("organizationalEntity", urn)

	var stats shareStatisticsResponse
	status, err := f.get(ctx, "/organizationalEntityShareStatistics?"+q.Encode(), &stats)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		logger.Warn("linkedin share statistics for %s returned %d", urn, status)
		return nil, nil
	}

	updates := make([]domain.CompanyUpdate, 0, len(stats.Elements))
	for _, el := range stats.Elements {
		s := el.TotalShareStatistics
		id := el.Share
		if id == "" {
			id = el.UGCPost
		}
		if id == "" {
			id = urn
		}
		u := domain.CompanyUpdate{
			ID: id,
			Text: fmt.Sprintf("%d impressions, %d clicks, %d likes, %d comments, %d shares",
				s.ImpressionCount, s.ClickCount, s.LikeCount, s.CommentCount, s.ShareCount),
			Impressions: s.ImpressionCount,
			Engagement:  s.Engagement,
		}
		if strings.HasPrefix(id, "urn:li:share:") || strings.HasPrefix(id, "urn:li:ugcPost:") {
			u.URL = "https://www.linkedin.com/feed/update/" + id
		}
		if el.TimeRange != nil && el.TimeRange.Start > 0 {
			u.PublishedAt = time.UnixMilli(el.TimeRange.Start).UTC()
		}
		updates = append(updates, u)
	}
	return updates, nil
}

func (f *Feed) resolveURN(ctx context.Context, company string) (string, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return "", fmt.Errorf("%w: empty company", domain.ErrInvalidInput)
	}
	if strings.HasPrefix(company, orgURNPrefix) {
		return company, nil
	}

	q := url.Values{}
	q.Set("q", "vanityName")
	q.Set("vanityName", domain.CompanySlug(company))

	var orgs organizationsResponse
	status, err := f.get(ctx, "/organizations?"+q.Encode(), &orgs)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || len(orgs.Elements) == 0 {
		return "", fmt.Errorf("%w: no linkedin organization for %q", domain.ErrNotFound, company)
	}
	return orgURNPrefix + strconv.FormatInt(orgs.Elements[0].ID, 10), nil
}

// get decodes a 200 response into out and returns the status code.
func (f *Feed) get(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.apiBase+path, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return resp.StatusCode, fmt.Errorf("%w: access token rejected, run 'dossier updates login'",
			domain.ErrFeedUnavailable)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode linkedin response: %w", err)
	}
	return resp.StatusCode, nil
}

// Authorizer implements driving.FeedAuthorizer over OAuthConfig.
type Authorizer struct {
	cfg *oauth2.Config
}

// NewAuthorizer returns nil unless a client ID, secret and redirect URL are configured.
func NewAuthorizer(settings domain.LinkedInSettings) *Authorizer {
	if settings.ClientID == "" || settings.ClientSecret == "" || settings.RedirectURL == "" {
		return nil
	}
	return &Authorizer{cfg: OAuthConfig(settings)}
}

// RedirectURL returns the configured callback URL.
func (a *Authorizer) RedirectURL() string { return a.cfg.RedirectURL }

// NewVerifier returns a fresh PKCE verifier.
func (a *Authorizer) NewVerifier() string { return oauth2.GenerateVerifier() }

// AuthCodeURL builds the consent URL.
func (a *Authorizer) AuthCodeURL(state, verifier string) string {
	return AuthCodeURL(a.cfg, state, verifier)
}

// Exchange trades code for an access token.
func (a *Authorizer) Exchange(ctx context.Context, code, verifier string) (string, error) {
	tok, err := Exchange(ctx, a.cfg, code, verifier)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}
