package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunecard/internal/models"
	"github.com/desertthunder/tunecard/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// Store is the persisted token store consumed by the [Manager].
type Store interface {
	Get(uid string) (*models.TokenRecord, error)
	UpdateAccess(uid, accessToken string, expiresAt time.Time) error
	Delete(uid string) error
}

// Refresher exchanges a refresh token for a fresh access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// Manager orchestrates access-token retrieval: cache hit, persisted-token
// load, refresh-on-expiry, and revoke handling.
//
// Concurrent requests for the same uid share one load-and-refresh flight, so
// an expired token is submitted to the refresh endpoint at most once per
// expiry window.
type Manager struct {
	cache     *Cache
	store     Store
	refresher Refresher
	logger    *log.Logger
	now       func() time.Time
	group     singleflight.Group
}

// ManagerOpts contains dependencies for creating a [Manager].
type ManagerOpts struct {
	Cache     *Cache
	Store     Store
	Refresher Refresher
	Logger    *log.Logger
	Now       func() time.Time // defaults to time.Now
}

// NewManager creates a Manager with the provided dependencies.
func NewManager(opts ManagerOpts) *Manager {
	if opts.Cache == nil {
		opts.Cache = NewCache()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Manager{
		cache:     opts.Cache,
		store:     opts.Store,
		refresher: opts.Refresher,
		logger:    opts.Logger,
		now:       opts.Now,
	}
}

// AccessToken returns a valid access token for uid.
//
// A cached non-expired token is returned without any I/O. On a miss the
// persisted record is loaded, cached, and refreshed if stale. A revoked
// refresh token deletes both the stored record and the cache entry and
// reports [shared.ErrInvalidToken]; a uid with no stored record reports
// [shared.ErrNoTokenData].
func (m *Manager) AccessToken(ctx context.Context, uid string) (string, error) {
	if record, ok := m.cache.Get(uid, m.now()); ok {
		return record.AccessToken, nil
	}

	token, err, _ := m.group.Do(uid, func() (interface{}, error) {
		return m.loadAndRefresh(ctx, uid)
	})
	if err != nil {
		return "", err
	}

	return token.(string), nil
}

func (m *Manager) loadAndRefresh(ctx context.Context, uid string) (interface{}, error) {
	// Another flight may have finished between the caller's miss and this one.
	if record, ok := m.cache.Get(uid, m.now()); ok {
		return record.AccessToken, nil
	}

	record, err := m.store.Get(uid)
	if err != nil {
		if errors.Is(err, shared.ErrNoTokenData) {
			m.logger.Warn("no token data in store", "uid", uid)
		}
		return nil, err
	}

	m.cache.Put(uid, *record)

	if !record.Expired(m.now()) {
		return record.AccessToken, nil
	}

	return m.refresh(ctx, uid, record.RefreshToken)
}

// refresh performs the only state transition with external side effects.
// The store is updated before the cache so that a crash between the two
// leaves a cache miss that reloads the already-updated record.
func (m *Manager) refresh(ctx context.Context, uid, refreshToken string) (interface{}, error) {
	token, err := m.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, shared.ErrTokenRevoked) {
			m.logger.Info("refresh token revoked, purging user", "uid", uid)
			// Best-effort: even if the store delete fails, drop the cache
			// entry so the next request re-attempts the full load path.
			if derr := m.store.Delete(uid); derr != nil {
				m.logger.Error("failed to delete revoked token record", "uid", uid, "error", derr)
			}
			m.cache.Delete(uid)
			return nil, fmt.Errorf("%w: %s", shared.ErrInvalidToken, uid)
		}
		return nil, err
	}

	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = m.now().Add(time.Hour)
	}

	if err := m.store.UpdateAccess(uid, token.AccessToken, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	// The refresh token is dropped from the cache entry; it is not needed
	// again until the next store reload.
	m.cache.Put(uid, models.TokenRecord{
		UID:         uid,
		AccessToken: token.AccessToken,
		ExpiresAt:   expiresAt,
	})

	m.logger.Debug("access token refreshed", "uid", uid, "expires_at", expiresAt)

	return token.AccessToken, nil
}
