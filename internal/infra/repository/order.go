package repository

import (
	"context"
	"errors"
	"time"

	"rayproxy/internal/domain/order"
	"rayproxy/internal/infra"
	"rayproxy/internal/infra/db"
	"rayproxy/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(dbtx db.DBTX) *OrderRepository {
	return &OrderRepository{db: dbtx}
}

const orderColumns = `id, user_id, country, price, phone_number, payment_method,
       COALESCE(checkout_request_id, ''), COALESCE(receipt_number, ''),
       status, target_proxy_id, created_at, paid_at`

func scanOrder(row pgx.Row) (*shared.OrderSnapshot, error) {
	var o shared.OrderSnapshot
	err := row.Scan(&o.ID, &o.UserID, &o.Country, &o.Price, &o.PhoneNumber,
		&o.PaymentMethod, &o.CheckoutRequestID, &o.ReceiptNumber,
		&o.Status, &o.TargetProxyID, &o.CreatedAt, &o.PaidAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	const query = `
		INSERT INTO orders (id, user_id, country, price, phone_number, payment_method,
		                    receipt_number, status, target_proxy_id, created_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		o.ID(), o.UserID(), o.Country(), o.Price(), o.PhoneNumber(),
		string(o.PaymentMethod()), o.ReceiptNumber(), string(o.Status()),
		o.TargetProxyID(), o.CreatedAt(), o.PaidAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create order", err)
	}
	return nil
}

// FindByCheckoutForUpdate locks the row so a replayed callback serializes
// behind the first settlement. (nil, nil) when no order carries the id.
func (r *OrderRepository) FindByCheckoutForUpdate(ctx context.Context, checkoutRequestID string) (*shared.OrderSnapshot, error) {
	const query = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE checkout_request_id = $1
		FOR UPDATE`

	o, err := scanOrder(r.db.QueryRow(ctx, query, checkoutRequestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find order by checkout id", err)
	}
	return o, nil
}

func (r *OrderRepository) FindPendingByIDForUser(ctx context.Context, id, userID uuid.UUID) (*shared.OrderSnapshot, error) {
	const query = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1 AND user_id = $2 AND status = 'pending'`

	o, err := scanOrder(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("pending order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find pending order", err)
	}
	return o, nil
}

func (r *OrderRepository) SetCheckoutRequestID(ctx context.Context, id uuid.UUID, checkoutRequestID string) error {
	const query = `UPDATE orders SET checkout_request_id = $2 WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id, checkoutRequestID); err != nil {
		return infra.WrapRepoErr("failed to set checkout request id", err)
	}
	return nil
}

// MarkPaid only fires from pending. A false return means another settlement
// already finalized the order, which the caller treats as a no-op replay.
func (r *OrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, receipt string, paidAt time.Time) (bool, error) {
	const query = `
		UPDATE orders
		SET status = 'paid', receipt_number = $2, paid_at = $3
		WHERE id = $1 AND status = 'pending'`

	tag, err := r.db.Exec(ctx, query, id, receipt, paidAt)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark order paid", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *OrderRepository) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	const query = `
		UPDATE orders
		SET status = 'failed'
		WHERE id = $1 AND status = 'pending'`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark order failed", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return infra.WrapRepoErr("failed to update order status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return nil
}
