package readstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"rayproxy/internal/infra"
	"rayproxy/internal/infra/db"
	"rayproxy/internal/usecase/queries"
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(dbtx db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: dbtx}
}

func (r *OrderReadStore) GetOrder(ctx context.Context, id, userID uuid.UUID) (*queries.OrderView, error) {
	const query = `
		SELECT id, country, price, payment_method, status,
		       COALESCE(receipt_number, ''), created_at, paid_at
		FROM orders
		WHERE id = $1 AND user_id = $2`

	var v queries.OrderView
	err := r.db.QueryRow(ctx, query, id, userID).Scan(&v.ID, &v.Country, &v.Price,
		&v.PaymentMethod, &v.Status, &v.ReceiptNumber, &v.CreatedAt, &v.PaidAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get order", err)
	}
	return &v, nil
}

func (r *OrderReadStore) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]queries.OrderView, error) {
	const query = `
		SELECT id, country, price, payment_method, status,
		       COALESCE(receipt_number, ''), created_at, paid_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	defer rows.Close()

	views := []queries.OrderView{}
	for rows.Next() {
		var v queries.OrderView
		if err := rows.Scan(&v.ID, &v.Country, &v.Price, &v.PaymentMethod, &v.Status,
			&v.ReceiptNumber, &v.CreatedAt, &v.PaidAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order row", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order rows", err)
	}
	return views, nil
}

func (r *OrderReadStore) ListEmailOrdersByUser(ctx context.Context, userID uuid.UUID) ([]queries.EmailOrderView, error) {
	const query = `
		SELECT id, domain, quantity, total_price, payment_method, status,
		       COALESCE(receipt_number, ''), created_at, paid_at
		FROM email_orders
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list email orders", err)
	}
	defer rows.Close()

	views := []queries.EmailOrderView{}
	for rows.Next() {
		var v queries.EmailOrderView
		if err := rows.Scan(&v.ID, &v.Domain, &v.Quantity, &v.TotalPrice, &v.PaymentMethod,
			&v.Status, &v.ReceiptNumber, &v.CreatedAt, &v.PaidAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan email order row", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read email order rows", err)
	}
	return views, nil
}

func (r *OrderReadStore) ListTopUpsByUser(ctx context.Context, userID uuid.UUID) ([]queries.TopUpView, error) {
	const query = `
		SELECT id, amount, status, COALESCE(receipt_number, ''), created_at, completed_at
		FROM topups
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list topups", err)
	}
	defer rows.Close()

	views := []queries.TopUpView{}
	for rows.Next() {
		var v queries.TopUpView
		if err := rows.Scan(&v.ID, &v.Amount, &v.Status, &v.ReceiptNumber, &v.CreatedAt, &v.CompletedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan topup row", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read topup rows", err)
	}
	return views, nil
}
