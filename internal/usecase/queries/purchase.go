package queries

import (
	"context"

	"github.com/google/uuid"

	"rayproxy/internal/pkg/clock"
)

type PurchaseQueries interface {
	ListByUser(ctx context.Context, userID uuid.UUID) (*PurchaseListView, error)
	ListEmailPurchasesByUser(ctx context.Context, userID uuid.UUID) ([]EmailPurchaseView, error)
}

type PurchaseReadStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]PurchaseView, error)
	ListEmailPurchasesByUser(ctx context.Context, userID uuid.UUID) ([]EmailPurchaseView, error)
}

type purchaseQueriesImpl struct {
	readStore PurchaseReadStore
	clock     clock.Clock
}

func NewPurchaseQueries(readStore PurchaseReadStore, clk clock.Clock) PurchaseQueries {
	return &purchaseQueriesImpl{readStore: readStore, clock: clk}
}

// ListByUser partitions leases into active and expired at read time rather
// than persisting a status column that would need sweeping.
func (q *purchaseQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID) (*PurchaseListView, error) {
	purchases, err := q.readStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := q.clock.Now()
	view := &PurchaseListView{
		Active:  []PurchaseView{},
		Expired: []PurchaseView{},
	}
	for _, p := range purchases {
		if p.ExpiresAt.After(now) {
			view.Active = append(view.Active, p)
		} else {
			view.Expired = append(view.Expired, p)
		}
	}
	return view, nil
}

func (q *purchaseQueriesImpl) ListEmailPurchasesByUser(ctx context.Context, userID uuid.UUID) ([]EmailPurchaseView, error) {
	return q.readStore.ListEmailPurchasesByUser(ctx, userID)
}
