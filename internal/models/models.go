// package models defines the data model for the now-playing badge service
package models

import (
	"net/url"
	"strings"
	"time"
)

// TokenRecord holds a user's Spotify OAuth tokens.
//
// Mirrored between the persisted token store and the in-memory cache.
// ExpiresAt is always an absolute timestamp; a zero value means the access
// token must be treated as already expired.
type TokenRecord struct {
	UID          string
	AccessToken  string
	RefreshToken string // present only on a fresh load from the store
	ExpiresAt    time.Time
}

// Expired reports whether the access token is stale at the given instant.
// A zero ExpiresAt counts as expired.
func (t TokenRecord) Expired(now time.Time) bool {
	return t.ExpiresAt.IsZero() || !now.Before(t.ExpiresAt)
}

// Playing type values reported by the streaming API.
const (
	PlayingTypeTrack   = "track"
	PlayingTypeEpisode = "episode"
)

// Track is the badge-facing view of a playing item, constructed per request
// and never persisted.
type Track struct {
	ArtistName    string
	SongName      string
	CoverImageURL string // second-largest artwork variant, may be empty
	URI           string
	PlayingType   string // "track" or "episode"
}

// Theme names with dedicated layouts. Unknown names fall back to ThemeDefault.
const (
	ThemeDefault   = "default"
	ThemeCompact   = "compact"
	ThemeNatemooRe = "natemoo-re"
	ThemeNovatorem = "novatorem"
)

// RenderOptions is the per-request badge configuration, immutable once parsed.
type RenderOptions struct {
	UID             string
	CoverImage      bool   // embed the album artwork
	Redirect        bool   // 302 to the track URI instead of rendering
	Theme           string
	BarColor        string // hex RGB without '#'
	BackgroundColor string // hex RGB without '#'
	BarColorCover   bool   // derive the bar color from the artwork
	ShowOffline     bool   // render an explicit offline state when idle
	Interchange     bool   // swap artist and song display positions
}

// ParseRenderOptions extracts badge options from request query parameters,
// applying the documented defaults for everything but uid.
func ParseRenderOptions(query url.Values) RenderOptions {
	return RenderOptions{
		UID:             query.Get("uid"),
		CoverImage:      parseBool(query, "cover_image", true),
		Redirect:        parseBool(query, "redirect", false),
		Theme:           parseString(query, "theme", ThemeDefault),
		BarColor:        parseString(query, "bar_color", "53b14f"),
		BackgroundColor: parseString(query, "background_color", "121212"),
		BarColorCover:   parseBool(query, "bar_color_cover", false),
		ShowOffline:     parseBool(query, "show_offline", false),
		Interchange:     parseBool(query, "interchange", false),
	}
}

func parseString(query url.Values, key, fallback string) string {
	if v := query.Get(key); v != "" {
		return v
	}
	return fallback
}

func parseBool(query url.Values, key string, fallback bool) bool {
	v := query.Get(key)
	if v == "" {
		return fallback
	}
	return strings.EqualFold(v, "true")
}
