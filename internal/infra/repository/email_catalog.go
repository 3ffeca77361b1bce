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

type EmailCatalogRepository struct {
	db db.DBTX
}

func NewEmailCatalogRepository(dbtx db.DBTX) *EmailCatalogRepository {
	return &EmailCatalogRepository{db: dbtx}
}

func (r *EmailCatalogRepository) FindEnabledDomainByID(ctx context.Context, id uuid.UUID) (*shared.EmailDomainSnapshot, error) {
	const query = `
		SELECT id, domain, kind, COALESCE(server, ''), is_enabled
		FROM email_domains
		WHERE id = $1 AND is_enabled`

	var d shared.EmailDomainSnapshot
	err := r.db.QueryRow(ctx, query, id).Scan(&d.ID, &d.Domain, &d.Kind, &d.Server, &d.IsEnabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("email domain not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find email domain", err)
	}
	return &d, nil
}

func (r *EmailCatalogRepository) FindEnabledPricingByDomain(ctx context.Context, domainID uuid.UUID) (*shared.EmailPricingSnapshot, error) {
	const query = `
		SELECT id, domain_id, price_per_email, is_enabled
		FROM email_pricing
		WHERE domain_id = $1 AND is_enabled`

	var p shared.EmailPricingSnapshot
	err := r.db.QueryRow(ctx, query, domainID).Scan(&p.ID, &p.DomainID, &p.PricePerEmail, &p.IsEnabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("email pricing not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find email pricing", err)
	}
	return &p, nil
}

func (r *EmailCatalogRepository) CreateDomain(ctx context.Context, domain, kind, server string) (uuid.UUID, error) {
	const query = `
		INSERT INTO email_domains (id, domain, kind, server, is_enabled)
		VALUES ($1, $2, $3, NULLIF($4, ''), TRUE)`

	id := uuid.New()
	if _, err := r.db.Exec(ctx, query, id, domain, kind, server); err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("email domain already exists", err, infra.KindDuplicateKey)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create email domain", err)
	}
	return id, nil
}

func (r *EmailCatalogRepository) UpdateDomain(ctx context.Context, id uuid.UUID, isEnabled *bool, server *string) error {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}

	if isEnabled != nil {
		args = append(args, *isEnabled)
		sets = append(sets, "is_enabled = $"+strconv.Itoa(len(args)))
	}
	if server != nil {
		args = append(args, *server)
		sets = append(sets, "server = $"+strconv.Itoa(len(args)))
	}

	query := "UPDATE email_domains SET " + strings.Join(sets, ", ") + " WHERE id = $1"
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update email domain", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("email domain not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *EmailCatalogRepository) DeleteDomain(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM email_domains WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete email domain", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("email domain not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *EmailCatalogRepository) CreatePricing(ctx context.Context, domainID uuid.UUID, pricePerEmail int64) (uuid.UUID, error) {
	const query = `
		INSERT INTO email_pricing (id, domain_id, price_per_email, is_enabled)
		VALUES ($1, $2, $3, TRUE)`

	id := uuid.New()
	if _, err := r.db.Exec(ctx, query, id, domainID, pricePerEmail); err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("pricing for domain already exists", err, infra.KindDuplicateKey)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create email pricing", err)
	}
	return id, nil
}

func (r *EmailCatalogRepository) UpdatePricing(ctx context.Context, id uuid.UUID, pricePerEmail *int64, isEnabled *bool) error {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}

	if pricePerEmail != nil {
		args = append(args, *pricePerEmail)
		sets = append(sets, "price_per_email = $"+strconv.Itoa(len(args)))
	}
	if isEnabled != nil {
		args = append(args, *isEnabled)
		sets = append(sets, "is_enabled = $"+strconv.Itoa(len(args)))
	}

	query := "UPDATE email_pricing SET " + strings.Join(sets, ", ") + " WHERE id = $1"
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update email pricing", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("email pricing not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *EmailCatalogRepository) DeletePricing(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM email_pricing WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete email pricing", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("email pricing not found", nil, infra.KindNotFound)
	}
	return nil
}
