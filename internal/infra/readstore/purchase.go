package readstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"rayproxy/internal/infra"
	"rayproxy/internal/infra/db"
	"rayproxy/internal/pkg/errs"
	"rayproxy/internal/usecase/queries"
	"rayproxy/internal/usecase/shared"
)

type PurchaseReadStore struct {
	db db.DBTX
}

func NewPurchaseReadStore(dbtx db.DBTX) *PurchaseReadStore {
	return &PurchaseReadStore{db: dbtx}
}

type purchaseRow struct {
	ID          uuid.UUID
	IP          string
	Port        int
	Username    string
	Password    string
	Country     string
	CountryCode string
	ExpiresAt   time.Time
	PurchasedAt time.Time
}

func (r *PurchaseReadStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]queries.PurchaseView, error) {
	const query = `
		SELECT id, ip, port, username, password, country, country_code, expires_at, purchased_at
		FROM purchases
		WHERE user_id = $1
		ORDER BY purchased_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list purchases", err)
	}
	defer rows.Close()

	views := []queries.PurchaseView{}
	for rows.Next() {
		var row purchaseRow
		if err := rows.Scan(&row.ID, &row.IP, &row.Port, &row.Username, &row.Password,
			&row.Country, &row.CountryCode, &row.ExpiresAt, &row.PurchasedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan purchase row", err)
		}

		var view queries.PurchaseView
		if err := copier.Copy(&view, &row); err != nil {
			return nil, errs.Wrap(err, "failed to convert purchase row")
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read purchase rows", err)
	}
	return views, nil
}

func (r *PurchaseReadStore) ListEmailPurchasesByUser(ctx context.Context, userID uuid.UUID) ([]queries.EmailPurchaseView, error) {
	const query = `
		SELECT id, emails, quantity, domain, total_price, purchased_at
		FROM email_purchases
		WHERE user_id = $1
		ORDER BY purchased_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list email purchases", err)
	}
	defer rows.Close()

	views := []queries.EmailPurchaseView{}
	for rows.Next() {
		var v queries.EmailPurchaseView
		var payload []byte
		if err := rows.Scan(&v.ID, &payload, &v.Quantity, &v.Domain, &v.TotalPrice, &v.PurchasedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan email purchase row", err)
		}

		var emails []shared.PurchasedEmail
		if err := json.Unmarshal(payload, &emails); err != nil {
			return nil, errs.Wrap(err, "failed to decode purchased emails")
		}
		v.Emails = emails
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read email purchase rows", err)
	}
	return views, nil
}
