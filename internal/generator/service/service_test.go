package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"rngenius/internal/generator/models"
	"rngenius/internal/generator/store"
	"rngenius/pkg/domain"
	dErrors "rngenius/pkg/domain-errors"
)

// =============================================================================
// Generator Service Test Suite
// =============================================================================
// The service holds every business rule: membership and owner gates, the
// option merge path, eager selection creation, and the deletion cascades.
// All of it runs here against the in-memory stores.

const (
	ownerID  = domain.UserID(1)
	memberID = domain.UserID(2)
	otherID  = domain.UserID(3)
)

type stubDirectory struct {
	byEmail map[string]domain.UserID
}

func (d stubDirectory) IDByEmail(_ context.Context, email string) (domain.UserID, error) {
	if uid, ok := d.byEmail[email]; ok {
		return uid, nil
	}
	return 0, dErrors.New(dErrors.CodeNotFound, "user", "No user with this email")
}

type GeneratorServiceSuite struct {
	suite.Suite
	mem     *store.Memory
	service *Service
}

func TestGeneratorServiceSuite(t *testing.T) {
	suite.Run(t, new(GeneratorServiceSuite))
}

func (s *GeneratorServiceSuite) SetupTest() {
	s.mem = store.NewMemory()
	directory := stubDirectory{byEmail: map[string]domain.UserID{
		"owner@example.com":  ownerID,
		"member@example.com": memberID,
		"other@example.com":  otherID,
	}}
	s.service = New(s.mem, directory)
}

// newGenerator creates a generator owned by ownerID.
func (s *GeneratorServiceSuite) newGenerator() *models.Generator {
	g, err := s.service.AddGenerator(context.Background(), ownerID,
		&models.Generator{Title: "Dinner", IconNumber: 2})
	s.Require().NoError(err)
	return g
}

// withMember enrolls memberID into the generator.
func (s *GeneratorServiceSuite) withMember(g *models.Generator) *models.Participant {
	p, err := s.service.AddParticipant(context.Background(), ownerID, g.ID, "member@example.com")
	s.Require().NoError(err)
	return p
}

func (s *GeneratorServiceSuite) addOption(g *models.Generator, name string, categories ...string) *models.Option {
	o, err := s.service.AddOption(context.Background(), ownerID, g.ID,
		&models.Option{Name: name, Categories: categories})
	s.Require().NoError(err)
	return o
}

func (s *GeneratorServiceSuite) assertCode(err error, code dErrors.Code, message string) {
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, code), "expected code %s, got %v", code, err)
	de, ok := dErrors.From(err)
	s.Require().True(ok)
	s.Equal(message, de.Message)
}

// =============================================================================
// Generator Lifecycle
// =============================================================================

func (s *GeneratorServiceSuite) TestAddGenerator() {
	ctx := context.Background()

	s.Run("creator becomes owner and participant", func() {
		g := s.newGenerator()
		s.NotZero(g.ID)
		s.Equal(ownerID, g.OwnerID)

		detail, err := s.service.GetGenerator(ctx, ownerID, g.ID)
		s.Require().NoError(err)
		s.Require().Len(detail.Participants, 1)
		s.Equal(ownerID, detail.Participants[0].UserID)
	})

	s.Run("nil payload rejected", func() {
		_, err := s.service.AddGenerator(ctx, ownerID, nil)
		s.assertCode(err, dErrors.CodeInvalidInput, "Generator data is required")
	})

	s.Run("blank title rejected", func() {
		_, err := s.service.AddGenerator(ctx, ownerID, &models.Generator{IconNumber: 1})
		s.assertCode(err, dErrors.CodeInvalidInput, "Generator data is required")
	})
}

func (s *GeneratorServiceSuite) TestGetGenerator() {
	ctx := context.Background()
	g := s.newGenerator()
	s.addOption(g, "Sushi", "japanese")

	s.Run("member sees detail", func() {
		detail, err := s.service.GetGenerator(ctx, ownerID, g.ID)
		s.Require().NoError(err)
		s.Equal("Dinner", detail.Generator.Title)
		s.Len(detail.Options, 1)
		s.Len(detail.Participants, 1)
	})

	s.Run("unknown id", func() {
		_, err := s.service.GetGenerator(ctx, ownerID, 999)
		s.assertCode(err, dErrors.CodeNotFound, "No generator with this id")
	})

	s.Run("non member forbidden", func() {
		_, err := s.service.GetGenerator(ctx, otherID, g.ID)
		s.assertCode(err, dErrors.CodeForbidden, "You are not authorized to view this generator")
	})
}

func (s *GeneratorServiceSuite) TestGetMyGenerators() {
	ctx := context.Background()
	g := s.newGenerator()
	s.withMember(g)

	second, err := s.service.AddGenerator(ctx, memberID, &models.Generator{Title: "Movies", IconNumber: 5})
	s.Require().NoError(err)

	mine, err := s.service.GetMyGenerators(ctx, memberID)
	s.Require().NoError(err)
	s.Require().Len(mine, 2)
	s.Equal(g.ID, mine[0].ID)
	s.Equal(second.ID, mine[1].ID)

	none, err := s.service.GetMyGenerators(ctx, otherID)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *GeneratorServiceSuite) TestUpdateGenerator() {
	ctx := context.Background()
	g := s.newGenerator()
	s.withMember(g)

	s.Run("owner updates", func() {
		updated, err := s.service.UpdateGenerator(ctx, ownerID, g.ID, "Lunch", 7)
		s.Require().NoError(err)
		s.Equal("Lunch", updated.Title)
		s.Equal(7, updated.IconNumber)
	})

	s.Run("member forbidden", func() {
		_, err := s.service.UpdateGenerator(ctx, memberID, g.ID, "Nope", 1)
		s.assertCode(err, dErrors.CodeForbidden, "You are not authorized to update this generator")
	})

	s.Run("invalid payload", func() {
		_, err := s.service.UpdateGenerator(ctx, ownerID, g.ID, "", 1)
		s.assertCode(err, dErrors.CodeInvalidInput, "Generator data is required")
	})
}

func (s *GeneratorServiceSuite) TestDeleteGeneratorCascades() {
	ctx := context.Background()
	g := s.newGenerator()
	member := s.withMember(g)
	o := s.addOption(g, "Sushi", "japanese")

	_, err := s.service.Generate(ctx, ownerID, g.ID)
	s.Require().NoError(err)

	s.Run("non owner forbidden", func() {
		err := s.service.DeleteGenerator(ctx, memberID, g.ID)
		s.assertCode(err, dErrors.CodeForbidden, "You are not authorized to delete this generator")
	})

	s.Run("owner delete removes everything", func() {
		s.Require().NoError(s.service.DeleteGenerator(ctx, ownerID, g.ID))

		_, err := s.mem.Generators().FindByID(ctx, g.ID)
		s.Error(err)
		options, _ := s.mem.Options().FindByGeneratorID(ctx, g.ID)
		s.Empty(options)
		participants, _ := s.mem.Participants().FindByGeneratorID(ctx, g.ID)
		s.Empty(participants)
		selections, _ := s.mem.Selections().FindByParticipantID(ctx, member.ID)
		s.Empty(selections)
		bySel, _ := s.mem.Selections().FindByOptionID(ctx, o.ID)
		s.Empty(bySel)
		results, _ := s.mem.Results().FindByGeneratorID(ctx, g.ID)
		s.Empty(results)
	})
}

// =============================================================================
// Option Lifecycle
// =============================================================================

func (s *GeneratorServiceSuite) TestAddOptionCreatesSelections() {
	ctx := context.Background()
	g := s.newGenerator()
	member := s.withMember(g)

	o := s.addOption(g, "Sushi", "japanese")

	ownerDetail, err := s.service.GetGenerator(ctx, ownerID, g.ID)
	s.Require().NoError(err)
	ownerParticipant := ownerDetail.Participants[0]

	for _, p := range []domain.ParticipantID{ownerParticipant.ID, member.ID} {
		sel, err := s.mem.Selections().FindByParticipantAndOption(ctx, p, o.ID)
		s.Require().NoError(err)
		s.False(sel.Favorised)
		s.False(sel.Excluded)
	}
}

func (s *GeneratorServiceSuite) TestAddOptionMergesByName() {
	ctx := context.Background()
	g := s.newGenerator()

	first := s.addOption(g, "Pizza", "dinner")
	selectionsBefore, err := s.mem.Selections().FindByOptionID(ctx, first.ID)
	s.Require().NoError(err)

	merged, err := s.service.AddOption(ctx, ownerID, g.ID,
		&models.Option{Name: "Pizza", Categories: []string{"food"}, Description: "with cheese"})
	s.Require().NoError(err)

	s.Run("union preserves order and appends", func() {
		s.Equal(first.ID, merged.ID)
		s.Equal([]string{"dinner", "food"}, merged.Categories)
		s.Equal("with cheese", merged.Description)
	})

	s.Run("no new selections in the merge path", func() {
		after, err := s.mem.Selections().FindByOptionID(ctx, first.ID)
		s.Require().NoError(err)
		s.Len(after, len(selectionsBefore))
	})

	s.Run("match is case sensitive", func() {
		other, err := s.service.AddOption(ctx, ownerID, g.ID,
			&models.Option{Name: "pizza", Categories: []string{"food"}})
		s.Require().NoError(err)
		s.NotEqual(first.ID, other.ID)
	})
}

func (s *GeneratorServiceSuite) TestAddOptionAuthorization() {
	ctx := context.Background()
	g := s.newGenerator()

	s.Run("non member forbidden", func() {
		_, err := s.service.AddOption(ctx, otherID, g.ID,
			&models.Option{Name: "Sushi", Categories: []string{"japanese"}})
		s.assertCode(err, dErrors.CodeForbidden, "You are not authorized to view this generator")
	})

	s.Run("unknown generator", func() {
		_, err := s.service.AddOption(ctx, ownerID, 999,
			&models.Option{Name: "Sushi", Categories: []string{"japanese"}})
		s.assertCode(err, dErrors.CodeNotFound, "No generator with this id")
	})

	s.Run("nil payload", func() {
		_, err := s.service.AddOption(ctx, ownerID, g.ID, nil)
		s.assertCode(err, dErrors.CodeInvalidInput, "Option data is required")
	})

	s.Run("empty categories", func() {
		_, err := s.service.AddOption(ctx, ownerID, g.ID, &models.Option{Name: "Sushi"})
		s.assertCode(err, dErrors.CodeInvalidInput, "Option data is required")
	})
}

func (s *GeneratorServiceSuite) TestDeleteCategorizedOption() {
	ctx := context.Background()
	g := s.newGenerator()
	s.withMember(g)
	o := s.addOption(g, "Sushi", "japanese", "fish")

	s.Run("non owner forbidden", func() {
		err := s.service.DeleteCategorizedOption(ctx, memberID, o.ID, "fish")
		s.assertCode(err, dErrors.CodeForbidden, "You are not authorized to delete this option")
	})

	s.Run("removes one category", func() {
		s.Require().NoError(s.service.DeleteCategorizedOption(ctx, ownerID, o.ID, "fish"))
		got, err := s.mem.Options().FindByID(ctx, o.ID)
		s.Require().NoError(err)
		s.Equal([]string{"japanese"}, got.Categories)
	})

	s.Run("removing the last category deletes the option", func() {
		s.Require().NoError(s.service.DeleteCategorizedOption(ctx, ownerID, o.ID, "japanese"))
		_, err := s.mem.Options().FindByID(ctx, o.ID)
		s.Error(err)
		selections, _ := s.mem.Selections().FindByOptionID(ctx, o.ID)
		s.Empty(selections)
	})

	s.Run("unknown option", func() {
		err := s.service.DeleteCategorizedOption(ctx, ownerID, 999, "japanese")
		s.assertCode(err, dErrors.CodeNotFound, "No option with this id")
	})
}

func (s *GeneratorServiceSuite) TestPurgeOption() {
	ctx := context.Background()
	g := s.newGenerator()
	s.withMember(g)
	o := s.addOption(g, "Sushi", "japanese", "fish")

	s.Run("non owner forbidden", func() {
		err := s.service.PurgeOption(ctx, memberID, o.ID)
		s.assertCode(err, dErrors.CodeForbidden, "You are not authorized to delete this option")
	})

	s.Run("owner purges regardless of categories", func() {
		s.Require().NoError(s.service.PurgeOption(ctx, ownerID, o.ID))
		_, err := s.mem.Options().FindByID(ctx, o.ID)
		s.Error(err)
		selections, _ := s.mem.Selections().FindByOptionID(ctx, o.ID)
		s.Empty(selections)
	})
}

// =============================================================================
// Selection Toggling
// =============================================================================

func (s *GeneratorServiceSuite) TestFavoriseOptionToggles() {
	ctx := context.Background()
	g := s.newGenerator()
	s.withMember(g)
	o := s.addOption(g, "Sushi", "japanese")

	sel, err := s.service.FavoriseOption(ctx, memberID, o.ID)
	s.Require().NoError(err)
	s.True(sel.Favorised)
	s.False(sel.Excluded)

	sel, err = s.service.FavoriseOption(ctx, memberID, o.ID)
	s.Require().NoError(err)
	s.False(sel.Favorised)
	s.False(sel.Excluded)
}

func (s *GeneratorServiceSuite) TestExcludeClearsFavorite() {
	ctx := context.Background()
	g := s.newGenerator()
	o := s.addOption(g, "Sushi", "japanese")

	_, err := s.service.FavoriseOption(ctx, ownerID, o.ID)
	s.Require().NoError(err)

	sel, err := s.service.ExcludeOption(ctx, ownerID, o.ID)
	s.Require().NoError(err)
	s.True(sel.Excluded)
	s.False(sel.Favorised)

	sel, err = s.service.FavoriseOption(ctx, ownerID, o.ID)
	s.Require().NoError(err)
	s.True(sel.Favorised)
	s.False(sel.Excluded)
}

func (s *GeneratorServiceSuite) TestToggleWithoutSelection() {
	ctx := context.Background()
	g := s.newGenerator()
	o := s.addOption(g, "Sushi", "japanese")

	s.Run("non member", func() {
		_, err := s.service.FavoriseOption(ctx, otherID, o.ID)
		s.assertCode(err, dErrors.CodeNotFound, "No selection with this participant and option")
	})

	s.Run("unknown option", func() {
		_, err := s.service.ExcludeOption(ctx, ownerID, 999)
		s.assertCode(err, dErrors.CodeNotFound, "No option with this id")
	})
}

func (s *GeneratorServiceSuite) TestCategoryMarks() {
	ctx := context.Background()
	g := s.newGenerator()
	sushi := s.addOption(g, "Sushi", "japanese", "fish")
	ramen := s.addOption(g, "Ramen", "japanese")
	pizza := s.addOption(g, "Pizza", "italian")

	s.Require().NoError(s.service.FavoriseCategory(ctx, ownerID, g.ID, "japanese"))

	detail, err := s.service.GetGenerator(ctx, ownerID, g.ID)
	s.Require().NoError(err)
	me := detail.Participants[0]

	s.Run("matching options favorised", func() {
		for _, optID := range []domain.OptionID{sushi.ID, ramen.ID} {
			sel, err := s.mem.Selections().FindByParticipantAndOption(ctx, me.ID, optID)
			s.Require().NoError(err)
			s.True(sel.Favorised)
		}
	})

	s.Run("non matching untouched", func() {
		sel, err := s.mem.Selections().FindByParticipantAndOption(ctx, me.ID, pizza.ID)
		s.Require().NoError(err)
		s.False(sel.Favorised)
		s.False(sel.Excluded)
	})

	s.Run("re-applying keeps state", func() {
		s.Require().NoError(s.service.FavoriseCategory(ctx, ownerID, g.ID, "japanese"))
		sel, err := s.mem.Selections().FindByParticipantAndOption(ctx, me.ID, sushi.ID)
		s.Require().NoError(err)
		s.True(sel.Favorised)
	})

	s.Run("exclude overrides favorite", func() {
		s.Require().NoError(s.service.ExcludeCategory(ctx, ownerID, g.ID, "fish"))
		sel, err := s.mem.Selections().FindByParticipantAndOption(ctx, me.ID, sushi.ID)
		s.Require().NoError(err)
		s.True(sel.Excluded)
		s.False(sel.Favorised)
	})

	s.Run("non member forbidden", func() {
		err := s.service.FavoriseCategory(ctx, otherID, g.ID, "japanese")
		s.assertCode(err, dErrors.CodeForbidden, "You are not authorized to view this generator")
	})
}

// =============================================================================
// Participant Lifecycle
// =============================================================================

func (s *GeneratorServiceSuite) TestAddParticipant() {
	ctx := context.Background()
	g := s.newGenerator()
	o := s.addOption(g, "Sushi", "japanese")

	s.Run("owner adds by email, selections created", func() {
		p, err := s.service.AddParticipant(ctx, ownerID, g.ID, "member@example.com")
		s.Require().NoError(err)
		s.Equal(memberID, p.UserID)

		sel, err := s.mem.Selections().FindByParticipantAndOption(ctx, p.ID, o.ID)
		s.Require().NoError(err)
		s.False(sel.Favorised)
		s.False(sel.Excluded)
	})

	s.Run("already joined", func() {
		_, err := s.service.AddParticipant(ctx, ownerID, g.ID, "member@example.com")
		s.assertCode(err, dErrors.CodeConflict, "Participant already joined this generator")
	})

	s.Run("unknown email", func() {
		_, err := s.service.AddParticipant(ctx, ownerID, g.ID, "ghost@example.com")
		s.assertCode(err, dErrors.CodeNotFound, "No user with this email")
	})

	s.Run("non owner forbidden", func() {
		_, err := s.service.AddParticipant(ctx, memberID, g.ID, "other@example.com")
		s.assertCode(err, dErrors.CodeForbidden, "You are not authorized to add participants to this generator")
	})
}

func (s *GeneratorServiceSuite) TestRemoveParticipant() {
	ctx := context.Background()
	g := s.newGenerator()
	member := s.withMember(g)

	s.Run("non owner forbidden", func() {
		err := s.service.RemoveParticipant(ctx, memberID, g.ID, ownerID)
		s.assertCode(err, dErrors.CodeForbidden, "You are not authorized to delete participants from this generator")
	})

	s.Run("self removal rejected before lookup", func() {
		err := s.service.RemoveParticipant(ctx, ownerID, g.ID, ownerID)
		s.assertCode(err, dErrors.CodeConflict, "You cannot remove yourself from your own generator")
	})

	s.Run("unknown member", func() {
		err := s.service.RemoveParticipant(ctx, ownerID, g.ID, otherID)
		s.assertCode(err, dErrors.CodeNotFound, "Participant not found in this generator")
	})

	s.Run("owner removes member and selections cascade", func() {
		s.Require().NoError(s.service.RemoveParticipant(ctx, ownerID, g.ID, memberID))
		_, err := s.mem.Participants().FindByID(ctx, member.ID)
		s.Error(err)
		selections, _ := s.mem.Selections().FindByParticipantID(ctx, member.ID)
		s.Empty(selections)
	})
}

func (s *GeneratorServiceSuite) TestLeaveGenerator() {
	ctx := context.Background()
	g := s.newGenerator()
	member := s.withMember(g)
	s.addOption(g, "Sushi", "japanese")

	s.Run("owner cannot leave", func() {
		err := s.service.LeaveGenerator(ctx, ownerID, g.ID)
		s.assertCode(err, dErrors.CodeConflict, "You cannot leave your own generator")
	})

	s.Run("member leaves, selections cascade", func() {
		s.Require().NoError(s.service.LeaveGenerator(ctx, memberID, g.ID))
		_, err := s.mem.Participants().FindByID(ctx, member.ID)
		s.Error(err)
		selections, _ := s.mem.Selections().FindByParticipantID(ctx, member.ID)
		s.Empty(selections)

		// owner is still a participant
		detail, err := s.service.GetGenerator(ctx, ownerID, g.ID)
		s.Require().NoError(err)
		s.Len(detail.Participants, 1)
	})

	s.Run("non member", func() {
		err := s.service.LeaveGenerator(ctx, otherID, g.ID)
		s.assertCode(err, dErrors.CodeNotFound, "Participant not found in this generator")
	})
}

func (s *GeneratorServiceSuite) TestToggleNotifications() {
	ctx := context.Background()
	g := s.newGenerator()

	p, err := s.service.ToggleNotifications(ctx, ownerID, g.ID)
	s.Require().NoError(err)
	s.True(p.Notifications)

	p, err = s.service.ToggleNotifications(ctx, ownerID, g.ID)
	s.Require().NoError(err)
	s.False(p.Notifications)

	_, err = s.service.ToggleNotifications(ctx, otherID, g.ID)
	s.assertCode(err, dErrors.CodeNotFound, "Participant not found in this generator")
}

func (s *GeneratorServiceSuite) TestGetMyNotifiedResults() {
	ctx := context.Background()
	g := s.newGenerator()
	s.addOption(g, "Sushi", "japanese")
	s.withMember(g)

	quiet, err := s.service.AddGenerator(ctx, memberID, &models.Generator{Title: "Movies", IconNumber: 1})
	s.Require().NoError(err)
	_, err = s.service.AddOption(ctx, memberID, quiet.ID, &models.Option{Name: "Alien", Categories: []string{"scifi"}})
	s.Require().NoError(err)

	// notifications on for the first generator only
	_, err = s.service.ToggleNotifications(ctx, memberID, g.ID)
	s.Require().NoError(err)

	for range 3 {
		_, err := s.service.Generate(ctx, ownerID, g.ID)
		s.Require().NoError(err)
	}
	_, err = s.service.Generate(ctx, memberID, quiet.ID)
	s.Require().NoError(err)

	results, err := s.service.GetMyNotifiedResults(ctx, memberID)
	s.Require().NoError(err)
	s.Require().Len(results, 3)

	s.Run("sorted by id descending", func() {
		for i := 1; i < len(results); i++ {
			s.Greater(results[i-1].ID.Int64(), results[i].ID.Int64())
		}
	})

	s.Run("only notified generators contribute", func() {
		for _, r := range results {
			s.Equal(g.ID, r.GeneratorID)
		}
	})

	s.Run("no notifications means no results", func() {
		none, err := s.service.GetMyNotifiedResults(ctx, ownerID)
		s.Require().NoError(err)
		s.Empty(none)
	})
}

// wideIDStores overrides the participant and result stores with canned data
// carrying ids further apart than 32 bits, so the descending sort cannot rely
// on truncating subtraction.
type wideIDStores struct {
	*store.Memory
}

func (s wideIDStores) Participants() store.ParticipantStore {
	return wideIDParticipants{s.Memory.Participants()}
}

func (s wideIDStores) Results() store.ResultStore {
	return wideIDResults{s.Memory.Results()}
}

type wideIDParticipants struct {
	store.ParticipantStore
}

func (wideIDParticipants) FindByUserID(_ context.Context, id domain.UserID) ([]*models.Participant, error) {
	return []*models.Participant{
		{ID: 1, GeneratorID: 1, UserID: id, Notifications: true},
	}, nil
}

type wideIDResults struct {
	store.ResultStore
}

func (wideIDResults) FindByGeneratorID(_ context.Context, id domain.GeneratorID) ([]*models.Result, error) {
	return []*models.Result{
		{ID: 3, GeneratorID: id},
		{ID: domain.ResultID(1 << 33), GeneratorID: id},
		{ID: 1, GeneratorID: id},
		{ID: domain.ResultID(1<<33 + 2), GeneratorID: id},
	}, nil
}

func (s *GeneratorServiceSuite) TestGetMyNotifiedResultsOrdersLargeIDs() {
	svc := New(wideIDStores{Memory: store.NewMemory()}, stubDirectory{})

	results, err := svc.GetMyNotifiedResults(context.Background(), memberID)
	s.Require().NoError(err)
	s.Require().Len(results, 4)

	ids := make([]int64, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID.Int64())
	}
	s.Equal([]int64{1<<33 + 2, 1 << 33, 3, 1}, ids)
}
