package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"rngenius/internal/user/store"
	dErrors "rngenius/pkg/domain-errors"
)

func newTestService() *Service {
	return New(store.NewMemoryStore(), WithBcryptCost(bcrypt.MinCost))
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	u, err := svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "Secret1!pass")
	require.NoError(t, err)
	require.NotZero(t, u.ID)
	assert.NotEqual(t, "Secret1!pass", u.PasswordHash)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "Ada", "Again", "ada@example.com", "Secret1!pass")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		de, _ := dErrors.From(err)
		assert.Equal(t, "User with this email already exists", de.Message)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := svc.Register(ctx, "Bob", "Short", "bob@example.com", "weakpass")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := svc.Register(ctx, "Bob", "Mail", "not-an-email", "Secret1!pass")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	u, err := svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "Secret1!pass")
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, "ada@example.com", "Secret1!pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "ada@example.com", "Wrong1!pass")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		de, _ := dErrors.From(err)
		assert.Equal(t, "Invalid password", de.Message)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "ghost@example.com", "Secret1!pass")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
		de, _ := dErrors.From(err)
		assert.Equal(t, "No user with this email", de.Message)
	})
}

func TestLookups(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	u, err := svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "Secret1!pass")
	require.NoError(t, err)

	byID, err := svc.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byID.Email)

	_, err = svc.GetByID(ctx, 999)
	require.Error(t, err)
	de, _ := dErrors.From(err)
	assert.Equal(t, "No user with this id", de.Message)
}

func TestRefreshTokenRotation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	u, err := svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "Secret1!pass")
	require.NoError(t, err)

	first, err := svc.RotateRefreshToken(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, svc.CheckRefreshToken(ctx, u.ID, first))

	second, err := svc.RotateRefreshToken(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// rotation invalidates the old token
	err = svc.CheckRefreshToken(ctx, u.ID, first)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	de, _ := dErrors.From(err)
	assert.Equal(t, "Invalid refresh token", de.Message)

	require.NoError(t, svc.CheckRefreshToken(ctx, u.ID, second))
}

func TestCheckRefreshTokenWithoutRotation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	u, err := svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "Secret1!pass")
	require.NoError(t, err)

	err = svc.CheckRefreshToken(ctx, u.ID, "anything")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	u, err := svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "Secret1!pass")
	require.NoError(t, err)

	t.Run("wrong old password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, u.ID, "Wrong1!pass", "Newpass1!")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("weak new password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, u.ID, "Secret1!pass", "short")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	require.NoError(t, svc.ChangePassword(ctx, u.ID, "Secret1!pass", "Newpass1!"))
	_, err = svc.Authenticate(ctx, "ada@example.com", "Newpass1!")
	require.NoError(t, err)
}
