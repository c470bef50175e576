package badge

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunecard/internal/models"
	"github.com/desertthunder/tunecard/internal/shared"
	lru "github.com/hashicorp/golang-lru/v2"
)

const dominantColorCount = 5

// layout fixes a theme's badge height and equalizer bar count.
type layout struct {
	heightCover int // height with an embedded cover image
	heightPlain int // height without one
	numBar      int
}

// layouts keys theme name to its dimensions. Unknown themes fall back to the
// default entry.
var layouts = map[string]layout{
	models.ThemeDefault:   {heightCover: 445, heightPlain: 145, numBar: 75},
	models.ThemeCompact:   {heightCover: 400, heightPlain: 100, numBar: 75},
	models.ThemeNatemooRe: {heightCover: 84, heightPlain: 84, numBar: 100},
	models.ThemeNovatorem: {heightCover: 100, heightPlain: 100, numBar: 100},
}

// Rendering is the parameter set handed to a theme template.
type Rendering struct {
	Height          int
	NumBar          int
	ContentBar      string
	CSSBar          string
	TitleText       string
	ArtistName      string
	SongName        string
	Image           string // base64-encoded cover bytes, empty when absent
	CoverImage      bool
	BarColor        string
	BackgroundColor string
	Theme           string
}

// Builder derives rendering parameters from a selected track and request
// options: dimensions, bar markup and animation CSS, the dominant bar color
// from cover art, and escaped text fields.
type Builder struct {
	images   *Fetcher
	cssCache *lru.Cache[int, string]
	logger   *log.Logger
	intn     func(n int) int
}

// BuilderOpts contains dependencies for creating a [Builder].
type BuilderOpts struct {
	Images *Fetcher
	Logger *log.Logger
	IntN   func(n int) int // source of randomness for bar animation timing
}

// NewBuilder creates a Builder with the provided dependencies.
func NewBuilder(opts BuilderOpts) (*Builder, error) {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.IntN == nil {
		opts.IntN = rand.IntN
	}
	if opts.Images == nil {
		images, err := NewFetcher(FetcherOpts{})
		if err != nil {
			return nil, err
		}
		opts.Images = images
	}

	// One randomized rule set per bar count, reused across requests.
	cssCache, err := lru.New[int, string](len(layouts) * 2)
	if err != nil {
		return nil, err
	}

	return &Builder{
		images:   opts.Images,
		cssCache: cssCache,
		logger:   opts.Logger,
		intn:     opts.IntN,
	}, nil
}

// Build produces the rendering parameters for a badge.
//
// A nil track renders the offline state regardless of other options. Cover
// fetch and color extraction failures degrade (no cover, requested bar color
// kept) rather than failing the request.
func (b *Builder) Build(ctx context.Context, track *models.Track, isNowPlaying bool, opts models.RenderOptions) *Rendering {
	if track == nil {
		return b.offline(opts)
	}

	coverImage := opts.CoverImage && track.CoverImageURL != ""

	lo := themeLayout(opts.Theme)
	height := lo.heightPlain
	if coverImage {
		height = lo.heightCover
	}

	title := "Recently played"
	if isNowPlaying {
		title = "Now playing"
	}

	rendering := &Rendering{
		Height:          height,
		NumBar:          lo.numBar,
		ContentBar:      barMarkup(lo.numBar),
		CSSBar:          b.barCSS(lo.numBar),
		TitleText:       title,
		BarColor:        opts.BarColor,
		BackgroundColor: opts.BackgroundColor,
		Theme:           opts.Theme,
	}

	var raw []byte
	if coverImage {
		data, err := b.images.Fetch(ctx, track.CoverImageURL)
		if err != nil {
			b.logger.Warn("cover fetch failed, rendering without image", "url", track.CoverImageURL, "error", err)
			coverImage = false
			rendering.Height = lo.heightPlain
		} else {
			raw = data
			rendering.Image = ToBase64(data)
		}
	}
	rendering.CoverImage = coverImage

	if opts.BarColorCover && raw != nil {
		if color, ok := b.coverBarColor(raw, opts.Theme); ok {
			rendering.BarColor = color
		}
	}

	artist := escapeText(track.ArtistName)
	song := escapeText(track.SongName)
	if opts.Interchange {
		artist, song = song, artist
	}
	rendering.ArtistName = artist
	rendering.SongName = song

	return rendering
}

// offline renders the explicit not-playing state: fixed copy, no cover, no
// bars.
func (b *Builder) offline(opts models.RenderOptions) *Rendering {
	lo := themeLayout(opts.Theme)

	return &Rendering{
		Height:          lo.heightPlain,
		NumBar:          lo.numBar,
		TitleText:       "Not playing",
		ArtistName:      "Offline",
		SongName:        "Currently not playing",
		BarColor:        opts.BarColor,
		BackgroundColor: opts.BackgroundColor,
		Theme:           opts.Theme,
	}
}

// barCSS returns the memoized animation rules for a bar count. The random
// durations are generated once and reused for every badge with this count.
func (b *Builder) barCSS(numBar int) string {
	if css, ok := b.cssCache.Get(numBar); ok {
		return css
	}

	css := generateBarCSS(numBar, b.intn)
	b.cssCache.Add(numBar, css)

	return css
}

func (b *Builder) coverBarColor(raw []byte, theme string) (string, bool) {
	colors, err := DominantColors(raw, dominantColorCount)
	if err != nil {
		b.logger.Warn("color extraction failed, keeping requested bar color", "error", err)
		return "", false
	}

	return pickBarColor(colors, theme)
}

func themeLayout(theme string) layout {
	if lo, ok := layouts[theme]; ok {
		return lo
	}
	return layouts[models.ThemeDefault]
}

// escapeText escapes literal ampersands for safe embedding in SVG text.
// This is the only sanitization the badge performs.
func escapeText(s string) string {
	return strings.ReplaceAll(s, "&", "&amp;")
}
