package queries

import (
	"context"

	"github.com/google/uuid"

	"rayproxy/internal/infra"
	"rayproxy/internal/pkg/errs"
)

type OrderQueries interface {
	// GetOrder backs the pending-payment polling loop on the client.
	GetOrder(ctx context.Context, id, userID uuid.UUID) (*OrderView, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]OrderView, error)
	ListEmailOrdersByUser(ctx context.Context, userID uuid.UUID) ([]EmailOrderView, error)
	ListTopUpsByUser(ctx context.Context, userID uuid.UUID) ([]TopUpView, error)
}

type OrderReadStore interface {
	GetOrder(ctx context.Context, id, userID uuid.UUID) (*OrderView, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]OrderView, error)
	ListEmailOrdersByUser(ctx context.Context, userID uuid.UUID) ([]EmailOrderView, error)
	ListTopUpsByUser(ctx context.Context, userID uuid.UUID) ([]TopUpView, error)
}

type orderQueriesImpl struct {
	readStore OrderReadStore
}

func NewOrderQueries(readStore OrderReadStore) OrderQueries {
	return &orderQueriesImpl{readStore: readStore}
}

func (q *orderQueriesImpl) GetOrder(ctx context.Context, id, userID uuid.UUID) (*OrderView, error) {
	view, err := q.readStore.GetOrder(ctx, id, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrOrderNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *orderQueriesImpl) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]OrderView, error) {
	return q.readStore.ListOrdersByUser(ctx, userID)
}

func (q *orderQueriesImpl) ListEmailOrdersByUser(ctx context.Context, userID uuid.UUID) ([]EmailOrderView, error) {
	return q.readStore.ListEmailOrdersByUser(ctx, userID)
}

func (q *orderQueriesImpl) ListTopUpsByUser(ctx context.Context, userID uuid.UUID) ([]TopUpView, error) {
	return q.readStore.ListTopUpsByUser(ctx, userID)
}
