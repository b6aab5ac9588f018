package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "rngenius/pkg/domain-errors"
)

func TestGeneratorValidate(t *testing.T) {
	g := &Generator{Title: "Friday dinner", IconNumber: 3}
	require.NoError(t, g.Validate())

	t.Run("blank title", func(t *testing.T) {
		bad := &Generator{IconNumber: 3}
		err := bad.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		de, ok := dErrors.From(err)
		require.True(t, ok)
		assert.Equal(t, "Generator data is required", de.Message)
	})

	t.Run("non positive icon", func(t *testing.T) {
		bad := &Generator{Title: "Friday dinner"}
		err := bad.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestOptionValidate(t *testing.T) {
	o := &Option{Name: "Sushi", Categories: []string{"japanese"}}
	require.NoError(t, o.Validate())

	t.Run("missing name", func(t *testing.T) {
		bad := &Option{Categories: []string{"japanese"}}
		err := bad.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		de, ok := dErrors.From(err)
		require.True(t, ok)
		assert.Equal(t, "Option data is required", de.Message)
	})

	t.Run("missing categories", func(t *testing.T) {
		bad := &Option{Name: "Sushi"}
		err := bad.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestOptionMergeFrom(t *testing.T) {
	existing := &Option{
		Name:        "Sushi",
		Description: "old",
		Categories:  []string{"japanese", "fish"},
	}
	incoming := &Option{
		Name:        "Sushi",
		Description: "fresh",
		Categories:  []string{"fish", "rice"},
	}

	existing.MergeFrom(incoming)

	assert.Equal(t, []string{"japanese", "fish", "rice"}, existing.Categories)
	assert.Equal(t, "fresh", existing.Description)
}

func TestOptionMergeFromKeepsDescriptionWhenEmpty(t *testing.T) {
	existing := &Option{Name: "Sushi", Description: "old", Categories: []string{"japanese"}}
	incoming := &Option{Name: "Sushi", Categories: []string{"japanese"}}

	existing.MergeFrom(incoming)

	assert.Equal(t, "old", existing.Description)
}

func TestOptionRemoveCategory(t *testing.T) {
	o := &Option{Name: "Sushi", Categories: []string{"japanese", "fish"}}

	empty := o.RemoveCategory("fish")
	assert.False(t, empty)
	assert.Equal(t, []string{"japanese"}, o.Categories)

	empty = o.RemoveCategory("japanese")
	assert.True(t, empty)
	assert.Empty(t, o.Categories)
}

func TestSelectionToggleFavorised(t *testing.T) {
	s := &Selection{}

	s.ToggleFavorised()
	assert.True(t, s.Favorised)
	assert.False(t, s.Excluded)

	s.ToggleFavorised()
	assert.False(t, s.Favorised)
	assert.False(t, s.Excluded)
}

func TestSelectionToggleFavorisedClearsExclusion(t *testing.T) {
	s := &Selection{Excluded: true}

	s.ToggleFavorised()
	assert.True(t, s.Favorised)
	assert.False(t, s.Excluded)
}

func TestSelectionToggleExcludedClearsFavorite(t *testing.T) {
	s := &Selection{Favorised: true}

	s.ToggleExcluded()
	assert.True(t, s.Excluded)
	assert.False(t, s.Favorised)

	s.ToggleExcluded()
	assert.False(t, s.Excluded)
	assert.False(t, s.Favorised)
}

func TestSelectionMarkIsIdempotent(t *testing.T) {
	s := &Selection{}

	s.MarkFavorised()
	s.MarkFavorised()
	assert.True(t, s.Favorised)
	assert.False(t, s.Excluded)

	s.MarkExcluded()
	s.MarkExcluded()
	assert.True(t, s.Excluded)
	assert.False(t, s.Favorised)
}
