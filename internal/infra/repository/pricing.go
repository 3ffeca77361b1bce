package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"rayproxy/internal/infra"
	"rayproxy/internal/infra/db"
	"rayproxy/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PricingRepository struct {
	db db.DBTX
}

func NewPricingRepository(dbtx db.DBTX) *PricingRepository {
	return &PricingRepository{db: dbtx}
}

func (r *PricingRepository) FindEnabledByCountry(ctx context.Context, country string) (*shared.PricingSnapshot, error) {
	const query = `
		SELECT id, country, country_code, daily, is_enabled
		FROM pricing
		WHERE country = $1 AND is_enabled`

	var p shared.PricingSnapshot
	err := r.db.QueryRow(ctx, query, country).Scan(&p.ID, &p.Country, &p.CountryCode, &p.Daily, &p.IsEnabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("pricing not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find pricing", err)
	}
	return &p, nil
}

func (r *PricingRepository) Create(ctx context.Context, country, countryCode string, daily int64) (uuid.UUID, error) {
	const query = `
		INSERT INTO pricing (id, country, country_code, daily, is_enabled)
		VALUES ($1, $2, $3, $4, TRUE)`

	id := uuid.New()
	if _, err := r.db.Exec(ctx, query, id, country, countryCode, daily); err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("pricing for country already exists", err, infra.KindDuplicateKey)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create pricing", err)
	}
	return id, nil
}

func (r *PricingRepository) Update(ctx context.Context, id uuid.UUID, daily *int64, isEnabled *bool) error {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}

	if daily != nil {
		args = append(args, *daily)
		sets = append(sets, "daily = $"+strconv.Itoa(len(args)))
	}
	if isEnabled != nil {
		args = append(args, *isEnabled)
		sets = append(sets, "is_enabled = $"+strconv.Itoa(len(args)))
	}

	query := "UPDATE pricing SET " + strings.Join(sets, ", ") + " WHERE id = $1"
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update pricing", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("pricing not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *PricingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM pricing WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete pricing", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("pricing not found", nil, infra.KindNotFound)
	}
	return nil
}
