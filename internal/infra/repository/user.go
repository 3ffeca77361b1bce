package repository

import (
	"context"
	"errors"

	"rayproxy/internal/domain/user"
	"rayproxy/internal/infra"
	"rayproxy/internal/infra/db"
	"rayproxy/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	db db.DBTX
}

func NewUserRepository(dbtx db.DBTX) *UserRepository {
	return &UserRepository{db: dbtx}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, role, balance, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		u.ID(), u.Email().Value(), u.PasswordHash(), string(u.Role()), u.Balance(), u.IsActive())
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("email already registered", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create user", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.UserSnapshot, error) {
	const query = `
		SELECT id, email, password_hash, role, balance, is_active
		FROM users
		WHERE id = $1`

	var u shared.UserSnapshot
	err := r.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Balance, &u.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user", err)
	}
	return &u, nil
}

// DebitBalance is conditional on sufficient funds; KindConflict means the
// balance dropped below the amount between the caller's check and the debit.
func (r *UserRepository) DebitBalance(ctx context.Context, id uuid.UUID, amount int64) error {
	const query = `
		UPDATE users
		SET balance = balance - $2, updated_at = NOW()
		WHERE id = $1 AND balance >= $2`

	tag, err := r.db.Exec(ctx, query, id, amount)
	if err != nil {
		return infra.WrapRepoErr("failed to debit balance", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("insufficient balance", nil, infra.KindConflict)
	}
	return nil
}

func (r *UserRepository) CreditBalance(ctx context.Context, id uuid.UUID, amount int64) error {
	const query = `
		UPDATE users
		SET balance = balance + $2, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, amount)
	if err != nil {
		return infra.WrapRepoErr("failed to credit balance", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return nil
}
