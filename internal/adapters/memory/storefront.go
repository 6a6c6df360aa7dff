package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

// Storefront holds baskets, shipping repositories and partner settings in
// memory. It implements the basket, shipping and partner ports.
type Storefront struct {
	mu       sync.RWMutex
	baskets  map[string]domain.Basket
	shipping map[string]domain.ShippingRepository
	partners map[string]domain.PartnerPaymentSettings
}

// NewStorefront creates an empty storefront.
func NewStorefront() *Storefront {
	return &Storefront{
		baskets:  make(map[string]domain.Basket),
		shipping: make(map[string]domain.ShippingRepository),
		partners: make(map[string]domain.PartnerPaymentSettings),
	}
}

// PutBasket adds or replaces a basket. Baskets without a status are open.
func (s *Storefront) PutBasket(basket domain.Basket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if basket.Status == "" {
		basket.Status = domain.BasketOpen
	}
	s.baskets[basket.ID] = basket
}

// PutShippingRepository caches a shipping repository under its key.
func (s *Storefront) PutShippingRepository(repo domain.ShippingRepository) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shipping[repo.Key] = repo
}

// PutPartnerSettings stores the active settings of a partner.
func (s *Storefront) PutPartnerSettings(settings domain.PartnerPaymentSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.partners[settings.PartnerID] = settings
}

func (s *Storefront) GetBasket(ctx context.Context, basketID string) (*domain.Basket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	basket, ok := s.baskets[basketID]
	if !ok {
		return nil, domain.ErrBasketNotFound
	}
	return &basket, nil
}

// Freeze moves an open basket to frozen.
func (s *Storefront) Freeze(ctx context.Context, basketID string) error {
	return s.transition(basketID, domain.BasketOpen, domain.BasketFrozen)
}

// Thaw moves a frozen basket back to open.
func (s *Storefront) Thaw(ctx context.Context, basketID string) error {
	return s.transition(basketID, domain.BasketFrozen, domain.BasketOpen)
}

// Submit marks a frozen basket as submitted.
func (s *Storefront) Submit(ctx context.Context, basketID string) error {
	return s.transition(basketID, domain.BasketFrozen, domain.BasketSubmitted)
}

func (s *Storefront) transition(basketID string, from, to domain.BasketStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	basket, ok := s.baskets[basketID]
	if !ok {
		return domain.ErrBasketNotFound
	}
	if basket.Status != from {
		return fmt.Errorf("%w: basket %s is %s, want %s", domain.ErrInvalidBasket, basketID, basket.Status, from)
	}
	basket.Status = to
	s.baskets[basketID] = basket
	return nil
}

func (s *Storefront) ShippingRepository(ctx context.Context, key string) (*domain.ShippingRepository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repo, ok := s.shipping[key]
	if !ok {
		return nil, domain.ErrShippingRepositoryMissing
	}
	return &repo, nil
}

// ActivePaymentSettings returns nil when the partner has no settings.
func (s *Storefront) ActivePaymentSettings(ctx context.Context, partnerID string) (*domain.PartnerPaymentSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := s.partners[partnerID]
	if !ok {
		return nil, nil
	}
	return &settings, nil
}
