package mem

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryClaims_ClaimIsExclusiveUntilExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	s := NewDeliveryClaims()
	s.now = func() time.Time { return now }

	ok, err := s.Claim(ctx, "webhook:payment.captured:pay_1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = s.Claim(ctx, "webhook:payment.captured:pay_1", time.Minute)
	assert.False(t, ok, "second claim while held")

	ok, _ = s.Claim(ctx, "webhook:payment.failed:pay_1", time.Minute)
	assert.True(t, ok, "different key is independent")

	now = now.Add(2 * time.Minute)
	ok, _ = s.Claim(ctx, "webhook:payment.captured:pay_1", time.Minute)
	assert.True(t, ok, "expired claim can be taken again")
}

func TestDeliveryClaims_Release(t *testing.T) {
	ctx := context.Background()
	s := NewDeliveryClaims()

	ok, _ := s.Claim(ctx, "k", time.Hour)
	require.True(t, ok)
	require.NoError(t, s.Release(ctx, "k"))

	ok, _ = s.Claim(ctx, "k", time.Hour)
	assert.True(t, ok)
}

func TestDeliveryClaims_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	s := NewDeliveryClaims()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.Claim(ctx, "same", time.Minute); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}
