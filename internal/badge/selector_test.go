package badge

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/desertthunder/tunecard/internal/shared"
	"github.com/desertthunder/tunecard/internal/spotify"
)

// fakeTokens implements TokenProvider.
type fakeTokens struct {
	token string
	err   error
}

func (f *fakeTokens) AccessToken(ctx context.Context, uid string) (string, error) {
	return f.token, f.err
}

// fakeAPI implements StreamingAPI with canned responses.
type fakeAPI struct {
	playing    *spotify.NowPlayingResponse
	playingErr error
	recent     []spotify.PlayedItem
	recentErr  error
}

func (f *fakeAPI) NowPlaying(ctx context.Context, accessToken string) (*spotify.NowPlayingResponse, error) {
	return f.playing, f.playingErr
}

func (f *fakeAPI) RecentlyPlayed(ctx context.Context, accessToken string) ([]spotify.PlayedItem, error) {
	return f.recent, f.recentErr
}

func recentItems(n int) []spotify.PlayedItem {
	items := make([]spotify.PlayedItem, n)
	for i := range items {
		items[i] = spotify.PlayedItem{
			Track: spotify.Item{
				Name: fmt.Sprintf("Song %d", i),
				URI:  fmt.Sprintf("spotify:track:%d", i),
			},
		}
	}
	return items
}

func TestSelector(t *testing.T) {
	ctx := context.Background()

	newSelector := func(tokens TokenProvider, api StreamingAPI, intn func(int) int) *Selector {
		t.Helper()
		return NewSelector(SelectorOpts{Tokens: tokens, API: api, IntN: intn})
	}

	t.Run("Token Failure Propagates", func(t *testing.T) {
		tokens := &fakeTokens{err: fmt.Errorf("%w: alice", shared.ErrInvalidToken)}
		selector := newSelector(tokens, &fakeAPI{}, nil)

		_, _, err := selector.Select(ctx, "alice", false)
		if !errors.Is(err, shared.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("Now Playing Wins", func(t *testing.T) {
		api := &fakeAPI{
			playing: &spotify.NowPlayingResponse{
				CurrentlyPlayingType: "track",
				Item:                 &spotify.Item{Name: "Live Song", URI: "spotify:track:live"},
			},
			recent: recentItems(3),
		}
		selector := newSelector(&fakeTokens{token: "tok"}, api, nil)

		track, isNowPlaying, err := selector.Select(ctx, "alice", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !isNowPlaying {
			t.Error("expected is-now-playing")
		}
		if track == nil || track.SongName != "Live Song" {
			t.Errorf("expected the live track, got %+v", track)
		}
	})

	t.Run("Now Playing Error Degrades To Recent", func(t *testing.T) {
		api := &fakeAPI{
			playingErr: fmt.Errorf("%w: status 502", shared.ErrAPIRequest),
			recent:     recentItems(1),
		}
		selector := newSelector(&fakeTokens{token: "tok"}, api, func(n int) int { return 0 })

		track, isNowPlaying, err := selector.Select(ctx, "alice", false)
		if err != nil {
			t.Fatalf("transient now-playing failure must not surface, got %v", err)
		}
		if isNowPlaying {
			t.Error("expected not-now-playing")
		}
		if track == nil || track.SongName != "Song 0" {
			t.Errorf("expected a recent track, got %+v", track)
		}
	})

	t.Run("Show Offline Short Circuits", func(t *testing.T) {
		api := &fakeAPI{recent: recentItems(5)}
		selector := newSelector(&fakeTokens{token: "tok"}, api, nil)

		track, isNowPlaying, err := selector.Select(ctx, "alice", true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if track != nil || isNowPlaying {
			t.Error("expected offline outcome without consulting recent history")
		}
	})

	t.Run("Empty Recent History", func(t *testing.T) {
		selector := newSelector(&fakeTokens{token: "tok"}, &fakeAPI{}, nil)

		track, isNowPlaying, err := selector.Select(ctx, "alice", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if track != nil || isNowPlaying {
			t.Error("expected offline outcome for empty history")
		}
	})

	t.Run("Recent History Error Degrades", func(t *testing.T) {
		api := &fakeAPI{recentErr: fmt.Errorf("%w: status 503", shared.ErrAPIRequest)}
		selector := newSelector(&fakeTokens{token: "tok"}, api, nil)

		track, _, err := selector.Select(ctx, "alice", false)
		if err != nil {
			t.Fatalf("transient history failure must not surface, got %v", err)
		}
		if track != nil {
			t.Error("expected offline outcome")
		}
	})

	t.Run("Random Pick", func(t *testing.T) {
		t.Run("Uses Injected Randomness", func(t *testing.T) {
			api := &fakeAPI{recent: recentItems(5)}
			selector := newSelector(&fakeTokens{token: "tok"}, api, func(n int) int {
				if n != 5 {
					t.Errorf("expected bound 5, got %d", n)
				}
				return 3
			})

			track, _, err := selector.Select(ctx, "alice", false)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if track.SongName != "Song 3" {
				t.Errorf("expected Song 3, got %s", track.SongName)
			}
		})

		t.Run("Varies Across Trials", func(t *testing.T) {
			api := &fakeAPI{recent: recentItems(10)}
			rng := rand.New(rand.NewPCG(1, 2))
			selector := newSelector(&fakeTokens{token: "tok"}, api, rng.IntN)

			seen := map[string]bool{}
			for i := 0; i < 200; i++ {
				track, _, err := selector.Select(ctx, "alice", false)
				if err != nil {
					t.Fatalf("trial %d failed: %v", i, err)
				}
				seen[track.SongName] = true
			}

			// Uniform selection over 10 items should touch most of them in
			// 200 trials; "most recent" would touch exactly one.
			if len(seen) < 5 {
				t.Errorf("expected varied picks, saw only %d distinct tracks", len(seen))
			}
		})
	})
}
