package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rngenius/pkg/domain"
	dErrors "rngenius/pkg/domain-errors"
)

func TestCreateAndValidate(t *testing.T) {
	m := New("test-signing-key", time.Hour)

	token, err := m.CreateToken(domain.UserID(42), time.Now())
	require.NoError(t, err)

	userID, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID(42), userID)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := New("test-signing-key", time.Hour)

	token, err := m.CreateToken(domain.UserID(42), time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsWrongKey(t *testing.T) {
	token, err := New("key-one", time.Hour).CreateToken(domain.UserID(42), time.Now())
	require.NoError(t, err)

	_, err = New("key-two", time.Hour).ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestRequesterIDAllowsExpired(t *testing.T) {
	m := New("test-signing-key", time.Hour)

	token, err := m.CreateToken(domain.UserID(7), time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	userID, err := m.RequesterID(token)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID(7), userID)
}

func TestRequesterIDStillChecksSignature(t *testing.T) {
	token, err := New("key-one", time.Hour).CreateToken(domain.UserID(7), time.Now())
	require.NoError(t, err)

	_, err = New("key-two", time.Hour).RequesterID(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
