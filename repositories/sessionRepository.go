package repositories

import (
	"context"
	"fmt"
	"log"

	"InsureCost/cache"
	"InsureCost/models"
	"InsureCost/utils"

	"github.com/pkg/errors"
)

// SessionRepository keeps each tab's session in storage, sealed.
type SessionRepository interface {
	Load(ctx context.Context, tabID string) (*models.StoredSession, error)
	Save(ctx context.Context, tabID string, stored models.StoredSession) error
	Clear(ctx context.Context, tabID string) error
}

type sessionRepository struct {
	store  cache.Store
	sealer *utils.SessionSealer
}

func NewSessionRepository(store cache.Store, sealer *utils.SessionSealer) SessionRepository {
	return &sessionRepository{store: store, sealer: sealer}
}

func (r *sessionRepository) getSessionCacheKey(tabID string) string {
	return fmt.Sprintf("dashboard_session:%s", tabID)
}

// Load returns nil without an error when the tab has no usable session.
// Expired or tampered entries are dropped.
func (r *sessionRepository) Load(ctx context.Context, tabID string) (*models.StoredSession, error) {
	token, err := r.store.Get(ctx, r.getSessionCacheKey(tabID))
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if token == "" {
		return nil, nil
	}

	stored, err := r.sealer.Open(token)
	if err != nil {
		if !errors.Is(err, models.ErrSessionExpired) {
			log.Printf("Discarding unreadable session for tab %s: %v", tabID, err)
		}
		if delErr := r.store.Delete(ctx, r.getSessionCacheKey(tabID)); delErr != nil {
			log.Printf("Failed to delete session for tab %s: %v", tabID, delErr)
		}
		return nil, nil
	}
	return stored, nil
}

func (r *sessionRepository) Save(ctx context.Context, tabID string, stored models.StoredSession) error {
	token, err := r.sealer.Seal(stored)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, r.getSessionCacheKey(tabID), token, r.sealer.TTL())
}

func (r *sessionRepository) Clear(ctx context.Context, tabID string) error {
	return r.store.Delete(ctx, r.getSessionCacheKey(tabID))
}
