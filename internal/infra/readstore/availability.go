package readstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"rayproxy/internal/infra"
	"rayproxy/internal/infra/db"
	"rayproxy/internal/usecase/queries"
)

type AvailabilityReadStore struct {
	db db.DBTX
}

func NewAvailabilityReadStore(dbtx db.DBTX) *AvailabilityReadStore {
	return &AvailabilityReadStore{db: dbtx}
}

// Slots are counted, not rows: SUM(max_usage - current_usage) over sellable
// units is what buyers can actually purchase.
const countryAvailabilityQuery = `
	SELECT pr.country, pr.country_code, pr.daily,
	       COALESCE(SUM(GREATEST(p.max_usage - p.current_usage, 0)), 0) AS available_slots
	FROM pricing pr
	LEFT JOIN proxies p
	       ON p.country = pr.country
	      AND p.is_active
	      AND p.status = 'available'
	      AND p.expires_at > NOW()
	WHERE pr.is_enabled
	GROUP BY pr.country, pr.country_code, pr.daily`

func (r *AvailabilityReadStore) ListCountryAvailability(ctx context.Context) ([]queries.CountryAvailabilityView, error) {
	rows, err := r.db.Query(ctx, countryAvailabilityQuery+` ORDER BY pr.country`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list country availability", err)
	}
	defer rows.Close()

	views := []queries.CountryAvailabilityView{}
	for rows.Next() {
		var v queries.CountryAvailabilityView
		if err := rows.Scan(&v.Country, &v.CountryCode, &v.DailyPrice, &v.AvailableSlots); err != nil {
			return nil, infra.WrapRepoErr("failed to scan country availability", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read country availability", err)
	}
	return views, nil
}

func (r *AvailabilityReadStore) GetCountryAvailability(ctx context.Context, country string) (*queries.CountryAvailabilityView, error) {
	query := countryAvailabilityQuery + ` HAVING pr.country = $1`

	var v queries.CountryAvailabilityView
	err := r.db.QueryRow(ctx, query, country).Scan(&v.Country, &v.CountryCode, &v.DailyPrice, &v.AvailableSlots)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("country not on sale", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get country availability", err)
	}
	return &v, nil
}

func (r *AvailabilityReadStore) ListEmailAvailability(ctx context.Context) ([]queries.EmailAvailabilityView, error) {
	const query = `
		SELECT d.id, d.domain, d.kind, ep.price_per_email,
		       COUNT(e.id) FILTER (WHERE e.status = 'available') AS available
		FROM email_domains d
		JOIN email_pricing ep ON ep.domain_id = d.id AND ep.is_enabled
		LEFT JOIN emails e ON e.domain_id = d.id
		WHERE d.is_enabled
		GROUP BY d.id, d.domain, d.kind, ep.price_per_email
		ORDER BY d.domain`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list email availability", err)
	}
	defer rows.Close()

	views := []queries.EmailAvailabilityView{}
	for rows.Next() {
		var v queries.EmailAvailabilityView
		if err := rows.Scan(&v.DomainID, &v.Domain, &v.Kind, &v.PricePerEmail, &v.Available); err != nil {
			return nil, infra.WrapRepoErr("failed to scan email availability", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read email availability", err)
	}
	return views, nil
}
