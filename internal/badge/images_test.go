package badge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/tunecard/internal/shared"
)

func TestFetcher(t *testing.T) {
	ctx := context.Background()

	t.Run("Fetch And Cache", func(t *testing.T) {
		hits := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			fmt.Fprint(w, "image bytes")
		}))
		defer srv.Close()

		fetcher, err := NewFetcher(FetcherOpts{HTTPClient: srv.Client(), RateLimit: 1000})
		if err != nil {
			t.Fatalf("failed to create fetcher: %v", err)
		}

		data, err := fetcher.Fetch(ctx, srv.URL+"/cover.png")
		if err != nil {
			t.Fatalf("failed to fetch: %v", err)
		}
		if string(data) != "image bytes" {
			t.Errorf("unexpected body %q", data)
		}

		if _, err := fetcher.Fetch(ctx, srv.URL+"/cover.png"); err != nil {
			t.Fatalf("failed to fetch again: %v", err)
		}
		if hits != 1 {
			t.Errorf("expected repeat fetch served from cache, upstream hits = %d", hits)
		}
	})

	t.Run("Upstream Error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		fetcher, err := NewFetcher(FetcherOpts{HTTPClient: srv.Client(), RateLimit: 1000})
		if err != nil {
			t.Fatalf("failed to create fetcher: %v", err)
		}

		if _, err := fetcher.Fetch(ctx, srv.URL+"/missing.png"); !errors.Is(err, shared.ErrImageFetch) {
			t.Errorf("expected ErrImageFetch, got %v", err)
		}
	})

	t.Run("Canceled Context", func(t *testing.T) {
		fetcher, err := NewFetcher(FetcherOpts{RateLimit: 0.001})
		if err != nil {
			t.Fatalf("failed to create fetcher: %v", err)
		}

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := fetcher.Fetch(canceled, "http://127.0.0.1:1/cover.png"); !errors.Is(err, shared.ErrImageFetch) {
			t.Errorf("expected ErrImageFetch, got %v", err)
		}
	})
}

func TestToBase64(t *testing.T) {
	if got := ToBase64([]byte("hello")); got != "aGVsbG8=" {
		t.Errorf("expected aGVsbG8=, got %s", got)
	}
}
