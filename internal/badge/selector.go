// Package badge decides what a user's badge shows and derives the parameters
// needed to render it.
package badge

import (
	"context"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunecard/internal/models"
	"github.com/desertthunder/tunecard/internal/shared"
	"github.com/desertthunder/tunecard/internal/spotify"
)

// TokenProvider yields a valid access token for a user id.
type TokenProvider interface {
	AccessToken(ctx context.Context, uid string) (string, error)
}

// StreamingAPI is the subset of the Spotify client the selector queries.
type StreamingAPI interface {
	NowPlaying(ctx context.Context, accessToken string) (*spotify.NowPlayingResponse, error)
	RecentlyPlayed(ctx context.Context, accessToken string) ([]spotify.PlayedItem, error)
}

// Selector picks the track a badge should show: the currently playing item,
// a random recently-played one, or nothing.
type Selector struct {
	tokens TokenProvider
	api    StreamingAPI
	logger *log.Logger
	intn   func(n int) int
}

// SelectorOpts contains dependencies for creating a [Selector].
type SelectorOpts struct {
	Tokens TokenProvider
	API    StreamingAPI
	Logger *log.Logger
	IntN   func(n int) int // source of randomness, defaults to math/rand/v2
}

// NewSelector creates a Selector with the provided dependencies.
func NewSelector(opts SelectorOpts) *Selector {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.IntN == nil {
		opts.IntN = rand.IntN
	}

	return &Selector{
		tokens: opts.Tokens,
		api:    opts.API,
		logger: opts.Logger,
		intn:   opts.IntN,
	}
}

// Select resolves the track to show for uid and whether it is playing now.
//
// Token failures propagate to the caller as auth failures. A failed
// now-playing query degrades to the recently-played path instead of erroring
// the request; the recently-played pick is uniformly random over the
// returned history, a deliberate choice over "most recent". A nil track with
// a nil error means the badge renders its offline state.
func (s *Selector) Select(ctx context.Context, uid string, showOffline bool) (*models.Track, bool, error) {
	accessToken, err := s.tokens.AccessToken(ctx, uid)
	if err != nil {
		return nil, false, err
	}

	playing, err := s.api.NowPlaying(ctx, accessToken)
	if err != nil {
		s.logger.Warn("now-playing query failed, degrading", "uid", uid, "error", err)
		playing = nil
	}

	if playing != nil {
		track := playing.Item.ToTrack(playing.CurrentlyPlayingType)
		return &track, true, nil
	}

	if showOffline {
		return nil, false, nil
	}

	recent, err := s.api.RecentlyPlayed(ctx, accessToken)
	if err != nil {
		s.logger.Warn("recently-played query failed, degrading", "uid", uid, "error", err)
		return nil, false, nil
	}

	if len(recent) == 0 {
		return nil, false, nil
	}

	item := recent[s.intn(len(recent))]
	track := item.Track.ToTrack(models.PlayingTypeTrack)

	return &track, false, nil
}
