package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rayproxy/internal/infra"
	"rayproxy/internal/pkg/errs"
	"rayproxy/internal/usecase/shared"
)

// allocator implements two-tier freshness selection with a bounded retry on
// contention. Tier 1 only considers proxies with more than the freshness
// window of remaining life; tier 2 relaxes to anything unexpired. Within a
// tier the latest-expiring unit wins, so buyers get the most remaining value
// and short-lived stock drains last.
type allocator struct {
	freshnessWindow time.Duration
	maxAttempts     int
}

func newAllocator(freshnessWindow time.Duration, maxAttempts int) *allocator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &allocator{freshnessWindow: freshnessWindow, maxAttempts: maxAttempts}
}

// selectCandidate picks without committing. Used for the order-creation
// preview and as the first step of each allocation attempt.
func (a *allocator) selectCandidate(ctx context.Context, proxies shared.ProxyRepository, country string, buyerID uuid.UUID, now time.Time) (*shared.ProxySnapshot, error) {
	candidate, err := proxies.SelectCandidate(ctx, country, buyerID, now.Add(a.freshnessWindow), now)
	if err == nil {
		return candidate, nil
	}
	if !infra.IsKind(err, infra.KindNotFound) {
		return nil, err
	}

	candidate, err = proxies.SelectCandidate(ctx, country, buyerID, now, now)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrNoProxyAvailable
		}
		return nil, err
	}
	return candidate, nil
}

// allocate selects and commits a slot. When the conditional increment loses
// to a concurrent buyer it re-selects; after maxAttempts consecutive losses
// the stock is effectively gone and the result degrades to no-proxy-available.
func (a *allocator) allocate(ctx context.Context, tx shared.Tx, country string, buyerID uuid.UUID, now time.Time) (*shared.ProxySnapshot, error) {
	proxies := tx.Proxies()

	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		candidate, err := a.selectCandidate(ctx, proxies, country, buyerID, now)
		if err != nil {
			return nil, err
		}

		acquired, err := a.acquire(ctx, proxies, candidate.ID, now)
		if err != nil {
			if errors.Is(err, errs.ErrConcurrentExhaustion) {
				slog.Info("proxy claimed concurrently, re-selecting",
					"proxy_id", candidate.ID,
					"attempt", attempt+1)
				continue
			}
			return nil, err
		}
		return acquired, nil
	}

	return nil, errs.ErrNoProxyAvailable
}

// acquire commits a single slot on a known unit and retires it if the slot
// taken was the last one.
func (a *allocator) acquire(ctx context.Context, proxies shared.ProxyRepository, proxyID uuid.UUID, now time.Time) (*shared.ProxySnapshot, error) {
	acquired, err := proxies.AcquireSlot(ctx, proxyID, now)
	if err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, errs.ErrConcurrentExhaustion
		}
		return nil, err
	}

	if acquired.Exhausted() {
		if err := proxies.DeactivateExhausted(ctx, acquired.ID); err != nil {
			return nil, err
		}
	}
	return acquired, nil
}
