package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rngenius/internal/generator/models"
	"rngenius/pkg/domain"
	"rngenius/pkg/platform/sentinel"
)

func TestMemoryGenerators(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	g := &models.Generator{Title: "Dinner", IconNumber: 1, OwnerID: 1}
	require.NoError(t, mem.Generators().Add(ctx, g))
	require.NotZero(t, g.ID)

	got, err := mem.Generators().FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dinner", got.Title)

	got.Title = "Lunch"
	require.NoError(t, mem.Generators().Update(ctx, got))
	got, err = mem.Generators().FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", got.Title)

	require.NoError(t, mem.Generators().Delete(ctx, g.ID))
	_, err = mem.Generators().FindByID(ctx, g.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemoryGeneratorsNotFound(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	_, err := mem.Generators().FindByID(ctx, 42)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.ErrorIs(t, mem.Generators().Delete(ctx, 42), sentinel.ErrNotFound)
	assert.ErrorIs(t, mem.Generators().Update(ctx, &models.Generator{ID: 42}), sentinel.ErrNotFound)
}

func TestMemoryOptionsByGeneratorAndName(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	g := &models.Generator{Title: "Dinner", IconNumber: 1, OwnerID: 1}
	require.NoError(t, mem.Generators().Add(ctx, g))

	sushi := &models.Option{GeneratorID: g.ID, Name: "Sushi", Categories: []string{"japanese"}}
	pizza := &models.Option{GeneratorID: g.ID, Name: "Pizza", Categories: []string{"italian"}}
	require.NoError(t, mem.Options().Add(ctx, sushi))
	require.NoError(t, mem.Options().Add(ctx, pizza))

	all, err := mem.Options().FindByGeneratorID(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Sushi", all[0].Name)

	got, err := mem.Options().FindByGeneratorIDAndName(ctx, g.ID, "Pizza")
	require.NoError(t, err)
	assert.Equal(t, pizza.ID, got.ID)

	// lookup is case sensitive
	_, err = mem.Options().FindByGeneratorIDAndName(ctx, g.ID, "pizza")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemoryOptionsCloneCategories(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	o := &models.Option{GeneratorID: 1, Name: "Sushi", Categories: []string{"japanese"}}
	require.NoError(t, mem.Options().Add(ctx, o))

	got, err := mem.Options().FindByID(ctx, o.ID)
	require.NoError(t, err)
	got.Categories[0] = "mutated"

	again, err := mem.Options().FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"japanese"}, again.Categories)
}

func TestMemoryParticipantsUniquePerGenerator(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	p := &models.Participant{GeneratorID: 1, UserID: 7, Notifications: true}
	require.NoError(t, mem.Participants().Add(ctx, p))

	dup := &models.Participant{GeneratorID: 1, UserID: 7}
	assert.ErrorIs(t, mem.Participants().Add(ctx, dup), sentinel.ErrConflict)

	other := &models.Participant{GeneratorID: 2, UserID: 7}
	require.NoError(t, mem.Participants().Add(ctx, other))

	mine, err := mem.Participants().FindByUserID(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	found, err := mem.Participants().FindByUserAndGenerator(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
}

func TestMemorySelectionsLookups(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	s1 := &models.Selection{ParticipantID: 1, OptionID: 10}
	s2 := &models.Selection{ParticipantID: 1, OptionID: 11}
	s3 := &models.Selection{ParticipantID: 2, OptionID: 10}
	for _, s := range []*models.Selection{s1, s2, s3} {
		require.NoError(t, mem.Selections().Add(ctx, s))
	}

	byOption, err := mem.Selections().FindByOptionID(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, byOption, 2)

	byParticipant, err := mem.Selections().FindByParticipantID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byParticipant, 2)

	got, err := mem.Selections().FindByParticipantAndOption(ctx, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, s3.ID, got.ID)

	got.Favorised = true
	require.NoError(t, mem.Selections().Update(ctx, got))
	got, err = mem.Selections().FindByParticipantAndOption(ctx, 2, 10)
	require.NoError(t, err)
	assert.True(t, got.Favorised)
}

func TestMemoryResults(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	for i := 0; i < 3; i++ {
		require.NoError(t, mem.Results().Add(ctx, &models.Result{GeneratorID: 1, UserID: 1, OptionID: domain.OptionID(i + 1), CreatedAt: time.Now()}))
	}
	require.NoError(t, mem.Results().Add(ctx, &models.Result{GeneratorID: 2, UserID: 1, OptionID: 9, CreatedAt: time.Now()}))

	got, err := mem.Results().FindByGeneratorID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	require.NoError(t, mem.Results().DeleteByGeneratorID(ctx, 1))
	got, err = mem.Results().FindByGeneratorID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, got)

	other, err := mem.Results().FindByGeneratorID(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}
