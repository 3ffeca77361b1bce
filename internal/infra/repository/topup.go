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

type TopUpRepository struct {
	db db.DBTX
}

func NewTopUpRepository(dbtx db.DBTX) *TopUpRepository {
	return &TopUpRepository{db: dbtx}
}

const topUpColumns = `id, user_id, amount, phone_number,
       COALESCE(checkout_request_id, ''), COALESCE(receipt_number, ''),
       status, created_at, completed_at`

func scanTopUp(row pgx.Row) (*shared.TopUpSnapshot, error) {
	var t shared.TopUpSnapshot
	err := row.Scan(&t.ID, &t.UserID, &t.Amount, &t.PhoneNumber,
		&t.CheckoutRequestID, &t.ReceiptNumber, &t.Status, &t.CreatedAt, &t.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TopUpRepository) Create(ctx context.Context, t *order.TopUp) error {
	const query = `
		INSERT INTO topups (id, user_id, amount, phone_number, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		t.ID(), t.UserID(), t.Amount(), t.PhoneNumber(), string(t.Status()), t.CreatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create topup", err)
	}
	return nil
}

func (r *TopUpRepository) FindByCheckoutForUpdate(ctx context.Context, checkoutRequestID string) (*shared.TopUpSnapshot, error) {
	const query = `
		SELECT ` + topUpColumns + `
		FROM topups
		WHERE checkout_request_id = $1
		FOR UPDATE`

	t, err := scanTopUp(r.db.QueryRow(ctx, query, checkoutRequestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find topup by checkout id", err)
	}
	return t, nil
}

func (r *TopUpRepository) FindPendingByIDForUser(ctx context.Context, id, userID uuid.UUID) (*shared.TopUpSnapshot, error) {
	const query = `
		SELECT ` + topUpColumns + `
		FROM topups
		WHERE id = $1 AND user_id = $2 AND status = 'pending'`

	t, err := scanTopUp(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("pending topup not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find pending topup", err)
	}
	return t, nil
}

func (r *TopUpRepository) SetCheckoutRequestID(ctx context.Context, id uuid.UUID, checkoutRequestID string) error {
	const query = `UPDATE topups SET checkout_request_id = $2 WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id, checkoutRequestID); err != nil {
		return infra.WrapRepoErr("failed to set checkout request id", err)
	}
	return nil
}

func (r *TopUpRepository) Complete(ctx context.Context, id uuid.UUID, receipt string, completedAt time.Time) (bool, error) {
	const query = `
		UPDATE topups
		SET status = 'completed', receipt_number = $2, completed_at = $3
		WHERE id = $1 AND status = 'pending'`

	tag, err := r.db.Exec(ctx, query, id, receipt, completedAt)
	if err != nil {
		return false, infra.WrapRepoErr("failed to complete topup", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *TopUpRepository) Fail(ctx context.Context, id uuid.UUID) (bool, error) {
	const query = `
		UPDATE topups
		SET status = 'failed'
		WHERE id = $1 AND status = 'pending'`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to fail topup", err)
	}
	return tag.RowsAffected() == 1, nil
}
