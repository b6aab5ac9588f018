package service

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"rngenius/internal/generator/models"
	"rngenius/pkg/domain"
	dErrors "rngenius/pkg/domain-errors"
	audit "rngenius/pkg/platform/audit"
	"rngenius/pkg/platform/sentinel"
)

// selectionFor resolves the requester's selection for an option, with the
// canonical not-found error when the requester has no membership-backed
// selection for it.
func (s *Service) selectionFor(ctx context.Context, requester domain.UserID, optionID domain.OptionID) (*models.Selection, error) {
	o, err := s.getOption(ctx, optionID)
	if err != nil {
		return nil, err
	}
	p, err := s.memberOf(ctx, requester, o.GeneratorID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "selection", "No selection with this participant and option")
	}
	sel, err := s.selections.FindByParticipantAndOption(ctx, p.ID, optionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "selection", "No selection with this participant and option")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "selection", "Could not load selection")
	}
	return sel, nil
}

// FavoriseOption toggles the requester's favorite flag on an option.
// Favorising an excluded option clears the exclusion.
func (s *Service) FavoriseOption(ctx context.Context, requester domain.UserID, optionID domain.OptionID) (*models.Selection, error) {
	return s.toggleSelection(ctx, requester, optionID, (*models.Selection).ToggleFavorised)
}

// ExcludeOption toggles the requester's exclusion flag on an option.
func (s *Service) ExcludeOption(ctx context.Context, requester domain.UserID, optionID domain.OptionID) (*models.Selection, error) {
	return s.toggleSelection(ctx, requester, optionID, (*models.Selection).ToggleExcluded)
}

func (s *Service) toggleSelection(ctx context.Context, requester domain.UserID, optionID domain.OptionID, toggle func(*models.Selection)) (*models.Selection, error) {
	sel, err := s.selectionFor(ctx, requester, optionID)
	if err != nil {
		return nil, err
	}
	toggle(sel)
	if err := s.selections.Update(ctx, sel); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "selection", "Could not update selection")
	}
	return sel, nil
}

// AddParticipant enrolls the user with the given email. Owner only. The
// new participant gets one neutral selection per existing option.
func (s *Service) AddParticipant(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID, email string) (*models.Participant, error) {
	g, err := s.getGenerator(ctx, generatorID)
	if err != nil {
		return nil, err
	}
	if !isOwner(g, requester) {
		return nil, dErrors.New(dErrors.CodeForbidden, "generator", "You are not authorized to add participants to this generator")
	}

	userID, err := s.users.IDByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	p := &models.Participant{GeneratorID: generatorID, UserID: userID}
	if err := s.participants.Add(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "participant", "Participant already joined this generator")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "participant", "Could not create participant")
	}

	options, err := s.options.FindByGeneratorID(ctx, generatorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "option", "Could not load options")
	}
	for _, o := range options {
		sel := &models.Selection{ParticipantID: p.ID, OptionID: o.ID}
		if err := s.selections.Add(ctx, sel); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "selection", "Could not create selection")
		}
	}

	s.auditor.Emit(ctx, audit.Event{
		Action:  audit.EventParticipantAdded,
		ActorID: requester,
		Subject: subjectGenerator(generatorID),
		Detail:  email,
	})
	return p, nil
}

// RemoveParticipant removes another user's membership. Owner only, and the
// owner can never target themself.
func (s *Service) RemoveParticipant(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID, participantUserID domain.UserID) error {
	g, err := s.getGenerator(ctx, generatorID)
	if err != nil {
		return err
	}
	if !isOwner(g, requester) {
		return dErrors.New(dErrors.CodeForbidden, "generator", "You are not authorized to delete participants from this generator")
	}
	if participantUserID == requester {
		return dErrors.New(dErrors.CodeConflict, "participant", "You cannot remove yourself from your own generator")
	}

	p, err := s.participants.FindByUserAndGenerator(ctx, participantUserID, generatorID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "participant", "Participant not found in this generator")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "participant", "Could not load participant")
	}

	if err := s.removeMembership(ctx, p); err != nil {
		return err
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:  audit.EventParticipantRemoved,
		ActorID: requester,
		Subject: subjectGenerator(generatorID),
	})
	return nil
}

// LeaveGenerator removes the requester's own membership. The owner cannot
// leave their own generator.
func (s *Service) LeaveGenerator(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID) error {
	g, err := s.getGenerator(ctx, generatorID)
	if err != nil {
		return err
	}
	if isOwner(g, requester) {
		return dErrors.New(dErrors.CodeConflict, "generator", "You cannot leave your own generator")
	}

	p, err := s.participants.FindByUserAndGenerator(ctx, requester, generatorID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "participant", "Participant not found in this generator")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "participant", "Could not load participant")
	}

	if err := s.removeMembership(ctx, p); err != nil {
		return err
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:  audit.EventParticipantLeft,
		ActorID: requester,
		Subject: subjectGenerator(generatorID),
	})
	return nil
}

// removeMembership deletes a participant and their selections.
func (s *Service) removeMembership(ctx context.Context, p *models.Participant) error {
	selections, err := s.selections.FindByParticipantID(ctx, p.ID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "selection", "Could not load selections")
	}
	for _, sel := range selections {
		if err := s.selections.Delete(ctx, sel.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "selection", "Could not delete selection")
		}
	}
	if err := s.participants.Delete(ctx, p.ID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "participant", "Could not delete participant")
	}
	return nil
}

// ToggleNotifications flips whether the requester sees this generator's
// results in their feed.
func (s *Service) ToggleNotifications(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID) (*models.Participant, error) {
	if _, err := s.getGenerator(ctx, generatorID); err != nil {
		return nil, err
	}
	p, err := s.participants.FindByUserAndGenerator(ctx, requester, generatorID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "participant", "Participant not found in this generator")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "participant", "Could not load participant")
	}

	p.Notifications = !p.Notifications
	if err := s.participants.Update(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "participant", "Could not update participant")
	}
	return p, nil
}

// GetMyNotifiedResults gathers results from every generator where the
// requester has notifications enabled, newest first. Generators are
// fetched concurrently, result ids are monotonic so they double as a
// recency ordering.
func (s *Service) GetMyNotifiedResults(ctx context.Context, requester domain.UserID) ([]*models.Result, error) {
	memberships, err := s.participants.FindByUserID(ctx, requester)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "participant", "Could not load participants")
	}

	var (
		mu      sync.Mutex
		results []*models.Result
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range memberships {
		if !p.Notifications {
			continue
		}
		g.Go(func() error {
			found, err := s.results.FindByGeneratorID(ctx, p.GeneratorID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "result", "Could not load results")
			}
			mu.Lock()
			results = append(results, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *models.Result) int {
		return cmp.Compare(b.ID, a.ID)
	})
	return results, nil
}
