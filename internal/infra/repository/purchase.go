package repository

import (
	"context"
	"time"

	"rayproxy/internal/infra"
	"rayproxy/internal/infra/db"
	"rayproxy/internal/usecase/shared"

	"github.com/google/uuid"
)

type PurchaseRepository struct {
	db db.DBTX
}

func NewPurchaseRepository(dbtx db.DBTX) *PurchaseRepository {
	return &PurchaseRepository{db: dbtx}
}

// Create freezes the proxy credentials into the lease so later edits to the
// inventory row never alter what the buyer already paid for.
func (r *PurchaseRepository) Create(ctx context.Context, params shared.CreatePurchaseParams) (uuid.UUID, error) {
	const query = `
		INSERT INTO purchases (id, user_id, proxy_id, order_id, ip, port, username,
		                       password, country, country_code, expires_at, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	id := uuid.New()
	_, err := r.db.Exec(ctx, query,
		id, params.UserID, params.ProxyID, params.OrderID,
		params.Proxy.IP, params.Proxy.Port, params.Proxy.Username, params.Proxy.Password,
		params.Proxy.Country, params.Proxy.CountryCode,
		params.ExpiresAt, params.PurchasedAt)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create purchase", err)
	}
	return id, nil
}

func (r *PurchaseRepository) HeldProxyIDs(ctx context.Context, userID uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	const query = `
		SELECT proxy_id FROM purchases
		WHERE user_id = $1 AND expires_at > $2`

	rows, err := r.db.Query(ctx, query, userID, now)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list held proxy ids", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan proxy id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read purchase rows", err)
	}
	return ids, nil
}
