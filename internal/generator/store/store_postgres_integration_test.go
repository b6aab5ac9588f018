//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rngenius/internal/generator/models"
	"rngenius/internal/platform/database"
	"rngenius/pkg/domain"
	"rngenius/pkg/platform/sentinel"
	"rngenius/pkg/testutil/containers"
)

func setupPostgres(t *testing.T) (*Postgres, domain.UserID) {
	t.Helper()
	pc := containers.NewPostgresContainer(t)
	ctx := context.Background()
	require.NoError(t, database.EnsureSchema(ctx, pc.DB))

	var ownerID domain.UserID
	err := pc.DB.QueryRowContext(ctx,
		`INSERT INTO users (first_name, last_name, email, password_hash)
		 VALUES ('Owner', 'Test', 'owner@example.com', 'x') RETURNING id`,
	).Scan(&ownerID)
	require.NoError(t, err)

	return NewPostgres(pc.DB), ownerID
}

func TestPostgresGeneratorRoundTrip(t *testing.T) {
	pg, ownerID := setupPostgres(t)
	ctx := context.Background()

	g := &models.Generator{Title: "Dinner", IconNumber: 4, OwnerID: ownerID}
	require.NoError(t, pg.Generators().Add(ctx, g))
	require.NotZero(t, g.ID)

	got, err := pg.Generators().FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dinner", got.Title)
	assert.Equal(t, 4, got.IconNumber)
	assert.Equal(t, ownerID, got.OwnerID)

	got.Title = "Lunch"
	require.NoError(t, pg.Generators().Update(ctx, got))
	got, err = pg.Generators().FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", got.Title)

	require.NoError(t, pg.Generators().Delete(ctx, g.ID))
	_, err = pg.Generators().FindByID(ctx, g.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresOptionCategoriesArray(t *testing.T) {
	pg, ownerID := setupPostgres(t)
	ctx := context.Background()

	g := &models.Generator{Title: "Dinner", IconNumber: 1, OwnerID: ownerID}
	require.NoError(t, pg.Generators().Add(ctx, g))

	o := &models.Option{
		GeneratorID: g.ID,
		Name:        "Sushi",
		Categories:  []string{"japanese", "fish"},
		Description: "fresh",
	}
	require.NoError(t, pg.Options().Add(ctx, o))

	got, err := pg.Options().FindByGeneratorIDAndName(ctx, g.ID, "Sushi")
	require.NoError(t, err)
	assert.Equal(t, []string{"japanese", "fish"}, got.Categories)
	assert.Equal(t, "fresh", got.Description)

	got.Categories = append(got.Categories, "rice")
	require.NoError(t, pg.Options().Update(ctx, got))

	all, err := pg.Options().FindByGeneratorID(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Categories, 3)
}

func TestPostgresParticipantUniqueness(t *testing.T) {
	pg, ownerID := setupPostgres(t)
	ctx := context.Background()

	g := &models.Generator{Title: "Dinner", IconNumber: 1, OwnerID: ownerID}
	require.NoError(t, pg.Generators().Add(ctx, g))

	p := &models.Participant{GeneratorID: g.ID, UserID: ownerID, Notifications: true}
	require.NoError(t, pg.Participants().Add(ctx, p))

	dup := &models.Participant{GeneratorID: g.ID, UserID: ownerID}
	assert.ErrorIs(t, pg.Participants().Add(ctx, dup), sentinel.ErrConflict)

	found, err := pg.Participants().FindByUserAndGenerator(ctx, ownerID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
	assert.True(t, found.Notifications)
}

func TestPostgresSelectionsAndResults(t *testing.T) {
	pg, ownerID := setupPostgres(t)
	ctx := context.Background()

	g := &models.Generator{Title: "Dinner", IconNumber: 1, OwnerID: ownerID}
	require.NoError(t, pg.Generators().Add(ctx, g))
	o := &models.Option{GeneratorID: g.ID, Name: "Sushi", Categories: []string{"japanese"}}
	require.NoError(t, pg.Options().Add(ctx, o))
	p := &models.Participant{GeneratorID: g.ID, UserID: ownerID}
	require.NoError(t, pg.Participants().Add(ctx, p))

	sel := &models.Selection{ParticipantID: p.ID, OptionID: o.ID}
	require.NoError(t, pg.Selections().Add(ctx, sel))

	sel.Favorised = true
	require.NoError(t, pg.Selections().Update(ctx, sel))

	got, err := pg.Selections().FindByParticipantAndOption(ctx, p.ID, o.ID)
	require.NoError(t, err)
	assert.True(t, got.Favorised)

	r := &models.Result{GeneratorID: g.ID, UserID: ownerID, OptionID: o.ID, CreatedAt: time.Now().UTC()}
	require.NoError(t, pg.Results().Add(ctx, r))

	results, err := pg.Results().FindByGeneratorID(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, ownerID, results[0].UserID)

	require.NoError(t, pg.Results().DeleteByGeneratorID(ctx, g.ID))
	results, err = pg.Results().FindByGeneratorID(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, results)
}
