package readstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"rayproxy/internal/infra"
	"rayproxy/internal/infra/db"
	"rayproxy/internal/usecase/queries"
)

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(dbtx db.DBTX) *UserReadStore {
	return &UserReadStore{db: dbtx}
}

func (r *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	const query = `
		SELECT id, email, role, balance, is_active
		FROM users
		WHERE id = $1`

	var v queries.AuthorizedUserView
	err := r.db.QueryRow(ctx, query, id).Scan(&v.ID, &v.Email, &v.Role, &v.Balance, &v.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}
	return &v, nil
}

func (r *UserReadStore) FindByEmail(ctx context.Context, email string) (*queries.AuthorizedUserView, string, error) {
	const query = `
		SELECT id, email, role, balance, is_active, password_hash
		FROM users
		WHERE email = $1`

	var v queries.AuthorizedUserView
	var passwordHash string
	err := r.db.QueryRow(ctx, query, email).Scan(&v.ID, &v.Email, &v.Role, &v.Balance, &v.IsActive, &passwordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("failed to find user by email", err)
	}
	return &v, passwordHash, nil
}
