package authlockout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "rngenius/pkg/domain-errors"
)

func TestLockoutAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	svc := New(NewMemoryStore(), 3, time.Minute)

	for range 2 {
		require.NoError(t, svc.Check(ctx, "ada@example.com"))
		svc.RecordFailure(ctx, "ada@example.com")
	}
	require.NoError(t, svc.Check(ctx, "ada@example.com"))
	svc.RecordFailure(ctx, "ada@example.com")

	err := svc.Check(ctx, "ada@example.com")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	// other accounts are unaffected
	assert.NoError(t, svc.Check(ctx, "bob@example.com"))
}

func TestResetClearsLockout(t *testing.T) {
	ctx := context.Background()
	svc := New(NewMemoryStore(), 1, time.Minute)

	svc.RecordFailure(ctx, "ada@example.com")
	require.Error(t, svc.Check(ctx, "ada@example.com"))

	svc.Reset(ctx, "ada@example.com")
	assert.NoError(t, svc.Check(ctx, "ada@example.com"))
}

func TestWindowExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	svc := New(store, 1, time.Minute)

	svc.RecordFailure(ctx, "ada@example.com")
	require.Error(t, svc.Check(ctx, "ada@example.com"))

	now = now.Add(2 * time.Minute)
	assert.NoError(t, svc.Check(ctx, "ada@example.com"))
}
