package badge

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/tunecard/internal/shared"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const (
	defaultImageCacheSize = 128
	defaultImageRateLimit = 5.0

	// Upstream artwork is a few hundred KB; anything near this bound is
	// not a cover image.
	maxImageBytes = 5 << 20
)

// Fetcher downloads cover images with a bounded in-memory cache and a rate
// limit on upstream fetches. Cache keys are the image URLs, which the
// upstream service content-addresses, so entries never go stale.
type Fetcher struct {
	httpClient *http.Client
	cache      *lru.Cache[string, []byte]
	limiter    *rate.Limiter
}

// FetcherOpts configures a [Fetcher]. Zero-value fields fall back to
// defaults.
type FetcherOpts struct {
	HTTPClient *http.Client
	CacheSize  int
	RateLimit  float64 // fetches per second
}

// NewFetcher creates a cover image fetcher.
func NewFetcher(opts FetcherOpts) (*Fetcher, error) {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultImageCacheSize
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultImageRateLimit
	}

	cache, err := lru.New[string, []byte](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create image cache: %w", err)
	}

	return &Fetcher{
		httpClient: opts.HTTPClient,
		cache:      cache,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
	}, nil
}

// Fetch returns the raw bytes of the image at url, serving repeats from the
// cache.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if data, ok := f.cache.Get(url); ok {
		return data, nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrImageFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrImageFetch, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrImageFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrImageFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrImageFetch, err)
	}

	f.cache.Add(url, data)

	return data, nil
}

// ToBase64 encodes image bytes for inline embedding in an SVG data URI.
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
