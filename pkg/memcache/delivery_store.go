// pkg/memcache/delivery_store.go
package mem

import (
	"context"
	"sync"
	"time"
)

// DeliveryStore hands out short-lived exclusive claims on webhook delivery
// keys so two concurrent deliveries of the same outcome are not processed
// side by side.
type DeliveryStore interface {
	// Claim returns true if the caller now holds key for ttl.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release drops the claim early, e.g. when processing failed and the
	// provider's redelivery must be allowed through.
	Release(ctx context.Context, key string) error
}

type entry struct {
	expiresAt time.Time
}

type DeliveryClaims struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

func NewDeliveryClaims() *DeliveryClaims {
	return &DeliveryClaims{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *DeliveryClaims) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.data[key]; ok && now.Before(e.expiresAt) {
		return false, nil
	}
	s.data[key] = entry{expiresAt: now.Add(ttl)}
	s.sweep(now)
	return true, nil
}

func (s *DeliveryClaims) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// sweep drops expired claims; caller holds mu.
func (s *DeliveryClaims) sweep(now time.Time) {
	for k, e := range s.data {
		if !now.Before(e.expiresAt) {
			delete(s.data, k)
		}
	}
}
