package repository

import (
	"context"

	"rayproxy/internal/domain/email"
	"rayproxy/internal/infra"
	"rayproxy/internal/infra/db"
	"rayproxy/internal/usecase/shared"

	"github.com/google/uuid"
)

type EmailRepository struct {
	db db.DBTX
}

func NewEmailRepository(dbtx db.DBTX) *EmailRepository {
	return &EmailRepository{db: dbtx}
}

// LockAvailable locks up to limit available rows for the transaction.
// SKIP LOCKED makes concurrent buyers pick disjoint rows instead of queueing
// on the same ones.
func (r *EmailRepository) LockAvailable(ctx context.Context, domainID uuid.UUID, limit int) ([]shared.EmailSnapshot, error) {
	const query = `
		SELECT e.id, e.address, e.password, d.domain, e.domain_id, d.server, e.status
		FROM emails e
		JOIN email_domains d ON d.id = e.domain_id
		WHERE e.domain_id = $1 AND e.status = 'available'
		ORDER BY e.created_at
		LIMIT $2
		FOR UPDATE OF e SKIP LOCKED`

	rows, err := r.db.Query(ctx, query, domainID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock available emails", err)
	}
	defer rows.Close()

	var out []shared.EmailSnapshot
	for rows.Next() {
		var e shared.EmailSnapshot
		if err := rows.Scan(&e.ID, &e.Address, &e.Password, &e.Domain, &e.DomainID, &e.Server, &e.Status); err != nil {
			return nil, infra.WrapRepoErr("failed to scan email row", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read email rows", err)
	}
	return out, nil
}

func (r *EmailRepository) CountAvailable(ctx context.Context, domainID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM emails WHERE domain_id = $1 AND status = 'available'`

	var count int
	if err := r.db.QueryRow(ctx, query, domainID).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count available emails", err)
	}
	return count, nil
}

// MarkSold reports the number of rows that actually transitioned; the caller
// aborts the transaction unless every requested row did.
func (r *EmailRepository) MarkSold(ctx context.Context, ids []uuid.UUID) (int64, error) {
	const query = `
		UPDATE emails
		SET status = 'sold', sold_at = NOW()
		WHERE id = ANY($1) AND status = 'available'`

	tag, err := r.db.Exec(ctx, query, ids)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to mark emails sold", err)
	}
	return tag.RowsAffected(), nil
}

func (r *EmailRepository) CreateBatch(ctx context.Context, es []*email.Email) (int, error) {
	const query = `
		INSERT INTO emails (id, address, password, domain_id, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address) DO NOTHING`

	created := 0
	for _, e := range es {
		tag, err := r.db.Exec(ctx, query, e.ID(), e.Address(), e.Password(), e.DomainID(), string(e.Status()))
		if err != nil {
			return created, infra.WrapRepoErr("failed to create email", err)
		}
		created += int(tag.RowsAffected())
	}
	return created, nil
}

func (r *EmailRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM emails WHERE id = $1 AND status = 'available'`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete email", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("email not found or already sold", nil, infra.KindNotFound)
	}
	return nil
}
