//go:build unit

package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reqdto "rayproxy/internal/handler/dto/request"
	"rayproxy/internal/infra"
	"rayproxy/internal/pkg/jwt"
	"rayproxy/internal/pkg/password"
	"rayproxy/internal/usecase/queries"
)

type fakeUserReadStore struct {
	byEmail map[string]*queries.AuthorizedUserView
	byID    map[uuid.UUID]*queries.AuthorizedUserView
	hashes  map[string]string
}

func newFakeUserReadStore() *fakeUserReadStore {
	return &fakeUserReadStore{
		byEmail: map[string]*queries.AuthorizedUserView{},
		byID:    map[uuid.UUID]*queries.AuthorizedUserView{},
		hashes:  map[string]string{},
	}
}

func (f *fakeUserReadStore) add(email, plainPassword string, active bool) uuid.UUID {
	hash, _ := password.HashPassword(plainPassword)
	view := &queries.AuthorizedUserView{
		ID:       uuid.New(),
		Email:    email,
		Role:     "user",
		IsActive: active,
	}
	f.byEmail[email] = view
	f.byID[view.ID] = view
	f.hashes[email] = hash
	return view.ID
}

func (f *fakeUserReadStore) FindByID(_ context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return v, nil
}

func (f *fakeUserReadStore) FindByEmail(_ context.Context, email string) (*queries.AuthorizedUserView, string, error) {
	v, ok := f.byEmail[email]
	if !ok {
		return nil, "", infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return v, f.hashes[email], nil
}

func newAuthCommands(store *fakeUserReadStore) AuthCommands {
	svc := jwt.NewService("test-secret", time.Hour, 24*time.Hour)
	return NewAuthCommands(&fakeUoW{tx: newFakeTx()}, store, svc)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials issue a token pair", func(t *testing.T) {
		store := newFakeUserReadStore()
		userID := store.add("buyer@example.com", "pass12345", true)

		result, err := newAuthCommands(store).Login(ctx, reqdto.LoginRequest{
			Email:    "buyer@example.com",
			Password: "pass12345",
		})
		require.NoError(t, err)
		assert.Equal(t, userID, result.UserID)
		assert.NotEmpty(t, result.TokenPair.AccessToken)
		assert.NotEmpty(t, result.TokenPair.RefreshToken)
	})

	t.Run("wrong password and unknown email fail alike", func(t *testing.T) {
		store := newFakeUserReadStore()
		store.add("buyer@example.com", "pass12345", true)
		a := newAuthCommands(store)

		_, errWrongPw := a.Login(ctx, reqdto.LoginRequest{Email: "buyer@example.com", Password: "wrong-pass"})
		_, errNoUser := a.Login(ctx, reqdto.LoginRequest{Email: "ghost@example.com", Password: "pass12345"})

		assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
		assert.ErrorIs(t, errNoUser, ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		store := newFakeUserReadStore()
		store.add("frozen@example.com", "pass12345", false)

		_, err := newAuthCommands(store).Login(ctx, reqdto.LoginRequest{
			Email:    "frozen@example.com",
			Password: "pass12345",
		})
		assert.ErrorIs(t, err, ErrUserInactive)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("issues tokens for a new account", func(t *testing.T) {
		result, err := newAuthCommands(newFakeUserReadStore()).Register(ctx, reqdto.RegisterRequest{
			Email:    "new@example.com",
			Password: "pass12345",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, result.UserID)
		assert.NotEmpty(t, result.TokenPair.AccessToken)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := newAuthCommands(newFakeUserReadStore()).Register(ctx, reqdto.RegisterRequest{
			Email:    "new@example.com",
			Password: "short",
		})
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("malformed email", func(t *testing.T) {
		_, err := newAuthCommands(newFakeUserReadStore()).Register(ctx, reqdto.RegisterRequest{
			Email:    "not-an-email",
			Password: "pass12345",
		})
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("refresh token rotates into a new pair", func(t *testing.T) {
		store := newFakeUserReadStore()
		store.add("buyer@example.com", "pass12345", true)
		a := newAuthCommands(store)

		login, err := a.Login(ctx, reqdto.LoginRequest{Email: "buyer@example.com", Password: "pass12345"})
		require.NoError(t, err)

		pair, err := a.RefreshToken(ctx, login.TokenPair.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
	})

	t.Run("access token is not accepted as a refresh token", func(t *testing.T) {
		store := newFakeUserReadStore()
		store.add("buyer@example.com", "pass12345", true)
		a := newAuthCommands(store)

		login, err := a.Login(ctx, reqdto.LoginRequest{Email: "buyer@example.com", Password: "pass12345"})
		require.NoError(t, err)

		_, err = a.RefreshToken(ctx, login.TokenPair.AccessToken)
		assert.ErrorIs(t, err, ErrTokenValidation)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := newAuthCommands(newFakeUserReadStore()).RefreshToken(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrTokenValidation)
	})
}
