package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/tunecard/internal/models"
	"github.com/desertthunder/tunecard/internal/shared"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientOpts{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		BaseURL:      srv.URL,
		TokenURL:     srv.URL + "/api/token",
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	return client, srv
}

func TestNewClient(t *testing.T) {
	t.Run("Missing Credentials", func(t *testing.T) {
		_, err := NewClient(ClientOpts{ClientID: "id"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}

		_, err = NewClient(ClientOpts{ClientSecret: "secret"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		client, err := NewClient(ClientOpts{ClientID: "id", ClientSecret: "secret"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if client.baseURL != spotifyBaseURL {
			t.Errorf("expected production base URL, got %s", client.baseURL)
		}
		if client.recentLimit != defaultRecentLimit {
			t.Errorf("expected default recent limit, got %d", client.recentLimit)
		}
	})
}

func TestNowPlaying(t *testing.T) {
	ctx := context.Background()

	t.Run("Playing Track", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test_token" {
				t.Errorf("expected bearer auth, got %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{
				"is_playing": true,
				"currently_playing_type": "track",
				"item": {
					"name": "Song A",
					"artists": [{"name": "Artist A"}],
					"album": {"images": [{"url": "large"}, {"url": "medium"}, {"url": "small"}]},
					"uri": "spotify:track:123"
				}
			}`)
		}))

		playing, err := client.NowPlaying(ctx, "test_token")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if playing == nil {
			t.Fatal("expected a playing item")
		}
		if playing.Item.Name != "Song A" {
			t.Errorf("expected Song A, got %s", playing.Item.Name)
		}
	})

	t.Run("Nothing Playing", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		playing, err := client.NowPlaying(ctx, "test_token")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if playing != nil {
			t.Error("expected nil for 204 response")
		}
	})

	t.Run("Empty Item", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"is_playing": false, "item": null}`)
		}))

		playing, err := client.NowPlaying(ctx, "test_token")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if playing != nil {
			t.Error("expected nil for response without item")
		}
	})

	t.Run("Upstream Error", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

		_, err := client.NowPlaying(ctx, "test_token")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestRecentlyPlayed(t *testing.T) {
	ctx := context.Background()

	t.Run("History Page", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "10" {
				t.Errorf("expected limit=10, got %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"items": [
				{"track": {"name": "Song A", "uri": "spotify:track:1"}, "played_at": "2025-06-01T11:00:00Z"},
				{"track": {"name": "Song B", "uri": "spotify:track:2"}, "played_at": "2025-06-01T10:00:00Z"}
			]}`)
		}))

		items, err := client.RecentlyPlayed(ctx, "test_token")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if items[1].Track.Name != "Song B" {
			t.Errorf("expected Song B, got %s", items[1].Track.Name)
		}
	})

	t.Run("Empty History", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"items": []}`)
		}))

		items, err := client.RecentlyPlayed(ctx, "test_token")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected no items, got %d", len(items))
		}
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/token" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token": "fresh_token", "token_type": "Bearer", "expires_in": 3600}`)
		}))

		token, err := client.Refresh(ctx, "refresh_a")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.AccessToken != "fresh_token" {
			t.Errorf("expected fresh_token, got %s", token.AccessToken)
		}

		// expires_in must surface as an absolute timestamp.
		if token.Expiry.IsZero() {
			t.Error("expected absolute expiry to be set")
		}
		if remaining := time.Until(token.Expiry); remaining < 50*time.Minute || remaining > 61*time.Minute {
			t.Errorf("expected expiry about an hour out, got %v", remaining)
		}
	})

	t.Run("Revoked", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error": "invalid_grant", "error_description": "Refresh token revoked"}`)
		}))

		_, err := client.Refresh(ctx, "refresh_a")
		if !errors.Is(err, shared.ErrTokenRevoked) {
			t.Errorf("expected ErrTokenRevoked, got %v", err)
		}
	})

	t.Run("Transient Failure", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))

		_, err := client.Refresh(ctx, "refresh_a")
		if err == nil {
			t.Fatal("expected error")
		}
		if !errors.Is(err, shared.ErrRefreshFailed) {
			t.Errorf("expected ErrRefreshFailed, got %v", err)
		}
		if errors.Is(err, shared.ErrTokenRevoked) {
			t.Error("transient failure must not read as revocation")
		}
	})
}

func TestToTrack(t *testing.T) {
	t.Run("Track Cover Is Second Largest", func(t *testing.T) {
		item := &Item{
			Name:    "Song A",
			Artists: []Artist{{Name: "Artist A"}, {Name: "Artist B"}},
			Album:   Album{Images: []Image{{URL: "large"}, {URL: "medium"}, {URL: "small"}}},
			URI:     "spotify:track:123",
		}

		track := item.ToTrack(models.PlayingTypeTrack)
		if track.CoverImageURL != "medium" {
			t.Errorf("expected medium variant, got %s", track.CoverImageURL)
		}
		if track.ArtistName != "Artist A" {
			t.Errorf("expected first artist, got %s", track.ArtistName)
		}
	})

	t.Run("Single Image Fallback", func(t *testing.T) {
		item := &Item{Album: Album{Images: []Image{{URL: "only"}}}}

		track := item.ToTrack(models.PlayingTypeTrack)
		if track.CoverImageURL != "only" {
			t.Errorf("expected only variant, got %s", track.CoverImageURL)
		}
	})

	t.Run("No Images", func(t *testing.T) {
		item := &Item{Name: "Song A"}

		track := item.ToTrack(models.PlayingTypeTrack)
		if track.CoverImageURL != "" {
			t.Errorf("expected empty cover URL, got %s", track.CoverImageURL)
		}
	})

	t.Run("Episode Uses Item Images", func(t *testing.T) {
		item := &Item{
			Name:   "Episode 42",
			Images: []Image{{URL: "ep_large"}, {URL: "ep_medium"}},
			Show:   Show{Name: "Some Show"},
			URI:    "spotify:episode:456",
		}

		track := item.ToTrack(models.PlayingTypeEpisode)
		if track.CoverImageURL != "ep_medium" {
			t.Errorf("expected episode artwork, got %s", track.CoverImageURL)
		}
		if track.ArtistName != "Some Show" {
			t.Errorf("expected show name as artist, got %s", track.ArtistName)
		}
		if track.PlayingType != models.PlayingTypeEpisode {
			t.Errorf("expected episode type, got %s", track.PlayingType)
		}
	})

	t.Run("Empty Type Defaults To Track", func(t *testing.T) {
		item := &Item{Name: "Song A"}

		track := item.ToTrack("")
		if track.PlayingType != models.PlayingTypeTrack {
			t.Errorf("expected track type, got %s", track.PlayingType)
		}
	})
}
