package readstore

import (
	"context"

	"github.com/google/uuid"

	"rayproxy/internal/infra"
	"rayproxy/internal/infra/db"
	"rayproxy/internal/usecase/queries"
)

type AdminReadStore struct {
	db db.DBTX
}

func NewAdminReadStore(dbtx db.DBTX) *AdminReadStore {
	return &AdminReadStore{db: dbtx}
}

func (r *AdminReadStore) ListProxies(ctx context.Context) ([]queries.ProxyAdminView, error) {
	const query = `
		SELECT id, ip, port, country, country_code, max_usage, current_usage,
		       expires_at, is_active, status
		FROM proxies
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list proxies", err)
	}
	defer rows.Close()

	views := []queries.ProxyAdminView{}
	for rows.Next() {
		var v queries.ProxyAdminView
		if err := rows.Scan(&v.ID, &v.IP, &v.Port, &v.Country, &v.CountryCode,
			&v.MaxUsage, &v.CurrentUsage, &v.ExpiresAt, &v.IsActive, &v.Status); err != nil {
			return nil, infra.WrapRepoErr("failed to scan proxy row", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read proxy rows", err)
	}
	return views, nil
}

// ListOrders flattens every payment-bearing row into one listing so an
// operator can trace a callback reference regardless of what it paid for.
func (r *AdminReadStore) ListOrders(ctx context.Context) ([]queries.OrderAdminView, error) {
	const query = `
		SELECT id, user_id, 'proxy' AS kind, country AS detail, price AS amount, status,
		       COALESCE(checkout_request_id, ''), COALESCE(receipt_number, ''), created_at
		FROM orders
		UNION ALL
		SELECT id, user_id, 'email', domain, total_price, status,
		       COALESCE(checkout_request_id, ''), COALESCE(receipt_number, ''), created_at
		FROM email_orders
		UNION ALL
		SELECT id, user_id, 'topup', phone_number, amount, status,
		       COALESCE(checkout_request_id, ''), COALESCE(receipt_number, ''), created_at
		FROM topups
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	defer rows.Close()

	views := []queries.OrderAdminView{}
	for rows.Next() {
		var v queries.OrderAdminView
		if err := rows.Scan(&v.ID, &v.UserID, &v.Kind, &v.Detail, &v.Amount, &v.Status,
			&v.CheckoutRequestID, &v.ReceiptNumber, &v.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order row", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order rows", err)
	}
	return views, nil
}

func (r *AdminReadStore) ListEmails(ctx context.Context, domainID *uuid.UUID) ([]queries.EmailAdminView, error) {
	const query = `
		SELECT e.id, e.address, d.domain, e.domain_id, e.status, e.created_at
		FROM emails e
		JOIN email_domains d ON d.id = e.domain_id
		WHERE $1::uuid IS NULL OR e.domain_id = $1
		ORDER BY e.created_at DESC`

	rows, err := r.db.Query(ctx, query, domainID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list emails", err)
	}
	defer rows.Close()

	views := []queries.EmailAdminView{}
	for rows.Next() {
		var v queries.EmailAdminView
		if err := rows.Scan(&v.ID, &v.Address, &v.Domain, &v.DomainID, &v.Status, &v.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan email row", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read email rows", err)
	}
	return views, nil
}

func (r *AdminReadStore) ListPricing(ctx context.Context) ([]queries.PricingView, error) {
	const query = `
		SELECT id, country, country_code, daily, is_enabled
		FROM pricing
		ORDER BY country`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list pricing", err)
	}
	defer rows.Close()

	views := []queries.PricingView{}
	for rows.Next() {
		var v queries.PricingView
		if err := rows.Scan(&v.ID, &v.Country, &v.CountryCode, &v.Daily, &v.IsEnabled); err != nil {
			return nil, infra.WrapRepoErr("failed to scan pricing row", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read pricing rows", err)
	}
	return views, nil
}

func (r *AdminReadStore) ListEmailDomains(ctx context.Context) ([]queries.EmailDomainView, error) {
	const query = `
		SELECT id, domain, kind, COALESCE(server, ''), is_enabled
		FROM email_domains
		ORDER BY domain`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list email domains", err)
	}
	defer rows.Close()

	views := []queries.EmailDomainView{}
	for rows.Next() {
		var v queries.EmailDomainView
		if err := rows.Scan(&v.ID, &v.Domain, &v.Kind, &v.Server, &v.IsEnabled); err != nil {
			return nil, infra.WrapRepoErr("failed to scan email domain row", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read email domain rows", err)
	}
	return views, nil
}
