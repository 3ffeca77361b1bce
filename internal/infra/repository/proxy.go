package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"rayproxy/internal/domain/proxy"
	"rayproxy/internal/infra"
	"rayproxy/internal/infra/db"
	"rayproxy/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProxyRepository struct {
	db db.DBTX
}

func NewProxyRepository(dbtx db.DBTX) *ProxyRepository {
	return &ProxyRepository{db: dbtx}
}

const proxyColumns = `id, ip, port, username, password, country, country_code,
       max_usage, current_usage, expires_at, is_active, status`

func scanProxy(row pgx.Row) (*shared.ProxySnapshot, error) {
	var p shared.ProxySnapshot
	err := row.Scan(&p.ID, &p.IP, &p.Port, &p.Username, &p.Password,
		&p.Country, &p.CountryCode, &p.MaxUsage, &p.CurrentUsage,
		&p.ExpiresAt, &p.IsActive, &p.Status)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SelectCandidate prefers the proxy with the most remaining life so buyers
// land on the longest-lived unit first. Units the buyer already leases are
// excluded regardless of remaining slots.
func (r *ProxyRepository) SelectCandidate(ctx context.Context, country string, buyerID uuid.UUID, expiresAfter, now time.Time) (*shared.ProxySnapshot, error) {
	const query = `
		SELECT ` + proxyColumns + `
		FROM proxies
		WHERE country = $1
		  AND is_active
		  AND status = 'available'
		  AND current_usage < max_usage
		  AND expires_at > $2
		  AND id NOT IN (
		      SELECT proxy_id FROM purchases
		      WHERE user_id = $3 AND expires_at > $4
		  )
		ORDER BY expires_at DESC
		LIMIT 1`

	p, err := scanProxy(r.db.QueryRow(ctx, query, country, expiresAfter, buyerID, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("no proxy candidate", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to select proxy candidate", err)
	}
	return p, nil
}

// AcquireSlot re-checks activity, expiry and capacity inside the UPDATE
// itself. Zero rows means a concurrent buyer took the last slot, the operator
// deactivated the unit, or it expired since selection.
func (r *ProxyRepository) AcquireSlot(ctx context.Context, id uuid.UUID, now time.Time) (*shared.ProxySnapshot, error) {
	const query = `
		UPDATE proxies
		SET current_usage = current_usage + 1, updated_at = NOW()
		WHERE id = $1
		  AND is_active
		  AND status = 'available'
		  AND expires_at > $2
		  AND current_usage < max_usage
		RETURNING ` + proxyColumns

	p, err := scanProxy(r.db.QueryRow(ctx, query, id, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("proxy slot unavailable", err, infra.KindConflict)
		}
		return nil, infra.WrapRepoErr("failed to acquire proxy slot", err)
	}
	return p, nil
}

func (r *ProxyRepository) DeactivateExhausted(ctx context.Context, id uuid.UUID) error {
	const query = `
		UPDATE proxies
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND current_usage >= max_usage`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return infra.WrapRepoErr("failed to deactivate exhausted proxy", err)
	}
	return nil
}

func (r *ProxyRepository) Create(ctx context.Context, p *proxy.Proxy) error {
	const query = `
		INSERT INTO proxies (id, ip, port, username, password, country, country_code,
		                     max_usage, current_usage, expires_at, is_active, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		p.ID(), p.IP(), p.Port(), p.Username(), p.Password(),
		p.Country(), p.CountryCode(), p.MaxUsage(), p.ExpiresAt(),
		p.IsActive(), string(p.Status()))
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("proxy already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create proxy", err)
	}
	return nil
}

func (r *ProxyRepository) CreateBatch(ctx context.Context, ps []*proxy.Proxy) (int, error) {
	created := 0
	for _, p := range ps {
		if err := r.Create(ctx, p); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}

func (r *ProxyRepository) Update(ctx context.Context, id uuid.UUID, params shared.UpdateProxyParams) error {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if params.MaxUsage != nil {
		appendSet("max_usage", *params.MaxUsage)
	}
	if params.ExpiresAt != nil {
		appendSet("expires_at", *params.ExpiresAt)
	}
	if params.IsActive != nil {
		appendSet("is_active", *params.IsActive)
	}
	if params.Status != nil {
		appendSet("status", *params.Status)
	}

	query := "UPDATE proxies SET " + strings.Join(sets, ", ") + " WHERE id = $1"
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update proxy", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("proxy not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *ProxyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM proxies WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete proxy", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("proxy not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *ProxyRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `
		UPDATE proxies
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'available' AND expires_at <= $1`

	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to mark expired proxies", err)
	}
	return tag.RowsAffected(), nil
}
