package repository

import (
	"context"
	"encoding/json"

	"rayproxy/internal/infra"
	"rayproxy/internal/infra/db"
	"rayproxy/internal/pkg/errs"
	"rayproxy/internal/usecase/shared"

	"github.com/google/uuid"
)

type EmailPurchaseRepository struct {
	db db.DBTX
}

func NewEmailPurchaseRepository(dbtx db.DBTX) *EmailPurchaseRepository {
	return &EmailPurchaseRepository{db: dbtx}
}

// Create stores the credential batch as a jsonb document; credentials are
// frozen at purchase time like proxy leases.
func (r *EmailPurchaseRepository) Create(ctx context.Context, params shared.CreateEmailPurchaseParams) (uuid.UUID, error) {
	const query = `
		INSERT INTO email_purchases (id, user_id, order_id, emails, quantity, domain,
		                             total_price, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	payload, err := json.Marshal(params.Emails)
	if err != nil {
		return uuid.Nil, errs.Wrap(err, "failed to encode purchased emails")
	}

	id := uuid.New()
	_, err = r.db.Exec(ctx, query,
		id, params.UserID, params.OrderID, payload, params.Quantity,
		params.Domain, params.TotalPrice, params.PurchasedAt)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create email purchase", err)
	}
	return id, nil
}
