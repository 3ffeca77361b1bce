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

type EmailOrderRepository struct {
	db db.DBTX
}

func NewEmailOrderRepository(dbtx db.DBTX) *EmailOrderRepository {
	return &EmailOrderRepository{db: dbtx}
}

const emailOrderColumns = `id, user_id, domain, domain_id, quantity, price_per_email,
       total_price, phone_number, payment_method,
       COALESCE(checkout_request_id, ''), COALESCE(receipt_number, ''),
       status, created_at, paid_at`

func scanEmailOrder(row pgx.Row) (*shared.EmailOrderSnapshot, error) {
	var o shared.EmailOrderSnapshot
	err := row.Scan(&o.ID, &o.UserID, &o.Domain, &o.DomainID, &o.Quantity,
		&o.PricePerEmail, &o.TotalPrice, &o.PhoneNumber, &o.PaymentMethod,
		&o.CheckoutRequestID, &o.ReceiptNumber, &o.Status, &o.CreatedAt, &o.PaidAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *EmailOrderRepository) Create(ctx context.Context, o *order.EmailOrder) error {
	const query = `
		INSERT INTO email_orders (id, user_id, domain, domain_id, quantity, price_per_email,
		                          total_price, phone_number, payment_method, receipt_number,
		                          status, created_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12, $13)`

	_, err := r.db.Exec(ctx, query,
		o.ID(), o.UserID(), o.Domain(), o.DomainID(), o.Quantity(), o.PricePerEmail(),
		o.TotalPrice(), o.PhoneNumber(), string(o.PaymentMethod()), o.ReceiptNumber(),
		string(o.Status()), o.CreatedAt(), o.PaidAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create email order", err)
	}
	return nil
}

func (r *EmailOrderRepository) FindByCheckoutForUpdate(ctx context.Context, checkoutRequestID string) (*shared.EmailOrderSnapshot, error) {
	const query = `
		SELECT ` + emailOrderColumns + `
		FROM email_orders
		WHERE checkout_request_id = $1
		FOR UPDATE`

	o, err := scanEmailOrder(r.db.QueryRow(ctx, query, checkoutRequestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find email order by checkout id", err)
	}
	return o, nil
}

func (r *EmailOrderRepository) FindPendingByIDForUser(ctx context.Context, id, userID uuid.UUID) (*shared.EmailOrderSnapshot, error) {
	const query = `
		SELECT ` + emailOrderColumns + `
		FROM email_orders
		WHERE id = $1 AND user_id = $2 AND status = 'pending'`

	o, err := scanEmailOrder(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("pending email order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find pending email order", err)
	}
	return o, nil
}

func (r *EmailOrderRepository) SetCheckoutRequestID(ctx context.Context, id uuid.UUID, checkoutRequestID string) error {
	const query = `UPDATE email_orders SET checkout_request_id = $2 WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id, checkoutRequestID); err != nil {
		return infra.WrapRepoErr("failed to set checkout request id", err)
	}
	return nil
}

func (r *EmailOrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, receipt string, paidAt time.Time) (bool, error) {
	const query = `
		UPDATE email_orders
		SET status = 'paid', receipt_number = $2, paid_at = $3
		WHERE id = $1 AND status = 'pending'`

	tag, err := r.db.Exec(ctx, query, id, receipt, paidAt)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark email order paid", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *EmailOrderRepository) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	const query = `
		UPDATE email_orders
		SET status = 'failed'
		WHERE id = $1 AND status = 'pending'`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark email order failed", err)
	}
	return tag.RowsAffected() == 1, nil
}
