// Package frontend implements the use cases the storefront clients call:
// managing the session basket, placing orders and reading catalog items.
package frontend

import (
	"context"
	"sync"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/platform/requestctx"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
	"github.com/louisbranch/storefront/internal/services/shop/locale"
)

// SessionStore keeps one basket per shopper session and site.
type SessionStore struct {
	mu      sync.Mutex
	baskets map[string]*domain.Basket
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{baskets: map[string]*domain.Basket{}}
}

// Load returns a copy of the basket of the session in ctx.
func (s *SessionStore) Load(ctx context.Context) (*domain.Basket, error) {
	key, err := sessionKey(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baskets[key].Clone(), nil
}

// Update applies fn to the basket of the session in ctx and stores the
// result when fn succeeds.
func (s *SessionStore) Update(ctx context.Context, fn func(*domain.Basket) error) error {
	key, err := sessionKey(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	basket := s.baskets[key].Clone()
	if err := fn(basket); err != nil {
		return err
	}
	s.baskets[key] = basket
	return nil
}

// Clear removes the basket of the session in ctx.
func (s *SessionStore) Clear(ctx context.Context) error {
	key, err := sessionKey(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.baskets, key)
	return nil
}

func sessionKey(ctx context.Context) (string, error) {
	sessionID := requestctx.SessionIDFromContext(ctx)
	if sessionID == "" {
		return "", apperrors.Application(apperrors.CodeBasketInvalid, "Basket session is missing")
	}
	loc, ok := locale.FromContext(ctx)
	if !ok || loc.SiteID == "" {
		return "", apperrors.DomainError(apperrors.CodeLocaleMissing, "Locale is not available")
	}
	return loc.SiteID + "/" + sessionID, nil
}
