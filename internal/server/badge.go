package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunecard/internal/badge"
	"github.com/desertthunder/tunecard/internal/models"
	"github.com/desertthunder/tunecard/internal/shared"
)

// TrackSelector resolves the track a badge should show.
type TrackSelector interface {
	Select(ctx context.Context, uid string, showOffline bool) (*models.Track, bool, error)
}

// BadgeHandler serves the badge endpoint. All control is via query
// parameters; the path is ignored.
//
// Implements the [Handler] interface for registration with a Router.
type BadgeHandler struct {
	selector TrackSelector
	builder  *badge.Builder
	logger   *log.Logger
}

// NewBadgeHandler creates a badge handler with the given selector and builder.
func NewBadgeHandler(selector TrackSelector, builder *badge.Builder, logger *log.Logger) *BadgeHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &BadgeHandler{
		selector: selector,
		builder:  builder,
		logger:   logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *BadgeHandler) Routes() []string {
	return []string{"/"}
}

// ServeHTTP renders the badge for the requested user.
//
// Terminal outcomes: 400 when uid is missing, 401 when the user's token is
// invalid or unknown, 302 when redirecting to a resolved track, 200 with the
// SVG otherwise. Transient upstream failures have already degraded inside the
// selector and builder.
func (h *BadgeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	opts := models.ParseRenderOptions(r.URL.Query())

	if opts.UID == "" {
		http.Error(w, "Error: 'uid' parameter is missing.", http.StatusBadRequest)
		return
	}

	track, isNowPlaying, err := h.selector.Select(r.Context(), opts.UID, opts.ShowOffline)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidToken) || errors.Is(err, shared.ErrNoTokenData) {
			http.Error(w, "Error: Invalid Spotify access token or refresh token. Please re-login.", http.StatusUnauthorized)
			return
		}

		h.logger.Error("track selection failed", "uid", opts.UID, "error", err)
		http.Error(w, "Error: upstream service failure.", http.StatusBadGateway)
		return
	}

	if opts.Redirect && track != nil {
		http.Redirect(w, r, track.URI, http.StatusFound)
		return
	}

	rendering := h.builder.Build(r.Context(), track, isNowPlaying, opts)

	svg, err := badge.RenderSVG(rendering)
	if err != nil {
		h.logger.Error("badge rendering failed", "uid", opts.UID, "error", err)
		http.Error(w, "Error: failed to render badge.", http.StatusInternalServerError)
		return
	}

	// Badges are personalized; keep proxies from serving stale frames.
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	fmt.Fprint(w, svg)
}
