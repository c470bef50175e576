// Package spotify implements the Web API calls the badge service depends on:
// the player's currently-playing state, recently-played history, and OAuth2
// access-token refresh.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/tunecard/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	defaultRecentLimit = 10
)

// Client talks to the Spotify Web API on behalf of many users; access tokens
// are supplied per call rather than held on the client.
type Client struct {
	config      *oauth2.Config
	httpClient  *http.Client
	baseURL     string
	recentLimit int
}

// ClientOpts configures a [Client]. Zero-value fields fall back to the
// production Spotify endpoints and defaults.
type ClientOpts struct {
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
	BaseURL      string
	TokenURL     string
	RecentLimit  int
}

// NewClient creates a new Spotify API client with the given OAuth2 credentials.
func NewClient(opts ClientOpts) (*Client, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret", shared.ErrMissingCredentials)
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = defaultRecentLimit
	}

	config := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: opts.TokenURL},
	}

	return &Client{
		config:      config,
		httpClient:  opts.HTTPClient,
		baseURL:     opts.BaseURL,
		recentLimit: opts.RecentLimit,
	}, nil
}

// doRequest performs an authenticated GET against the Spotify API and decodes
// the JSON response into result. A 204 reports no content via (false, nil).
func (c *Client) doRequest(ctx context.Context, accessToken, endpoint string, result interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return false, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return false, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return true, nil
}

// NowPlaying retrieves the player's currently-playing item.
//
// Returns (nil, nil) when nothing is playing (204 or an empty item).
func (c *Client) NowPlaying(ctx context.Context, accessToken string) (*NowPlayingResponse, error) {
	var response NowPlayingResponse

	ok, err := c.doRequest(ctx, accessToken, "/me/player/currently-playing?additional_types=track,episode", &response)
	if err != nil {
		return nil, err
	}
	if !ok || response.Item == nil {
		return nil, nil
	}

	return &response, nil
}

// RecentlyPlayed retrieves the most recent page of play history.
func (c *Client) RecentlyPlayed(ctx context.Context, accessToken string) ([]PlayedItem, error) {
	var response RecentlyPlayedResponse

	endpoint := fmt.Sprintf("/me/player/recently-played?limit=%d", c.recentLimit)
	if _, err := c.doRequest(ctx, accessToken, endpoint, &response); err != nil {
		return nil, err
	}

	return response.Items, nil
}

// Refresh exchanges a refresh token for a fresh access token.
//
// A revoked refresh token (upstream "invalid_grant") is reported as
// [shared.ErrTokenRevoked]; any other failure as [shared.ErrRefreshFailed].
// The returned token carries an absolute expiry.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	source := c.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	token, err := source.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode == "invalid_grant" {
			return nil, fmt.Errorf("%w: %v", shared.ErrTokenRevoked, err)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	return token, nil
}
