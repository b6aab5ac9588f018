package service

import (
	"context"
	"errors"

	"rngenius/internal/generator/models"
	"rngenius/pkg/domain"
	dErrors "rngenius/pkg/domain-errors"
	audit "rngenius/pkg/platform/audit"
	"rngenius/pkg/platform/sentinel"
)

// AddOption adds an option to a generator. Any member may add. When an
// option with the exact same name already exists the submission is merged
// into it: categories are unioned in order, the description overwritten,
// and no new selections are created. Otherwise the option is created with
// one neutral selection per current participant.
func (s *Service) AddOption(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID, o *models.Option) (*models.Option, error) {
	if o == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "option", "Option data is required")
	}
	if _, err := s.getGenerator(ctx, generatorID); err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, requester, generatorID); err != nil {
		return nil, err
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.options.FindByGeneratorIDAndName(ctx, generatorID, o.Name)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "option", "Could not load option")
	}
	if existing != nil {
		existing.MergeFrom(o)
		if err := s.options.Update(ctx, existing); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "option", "Could not update option")
		}
		return existing, nil
	}

	o.GeneratorID = generatorID
	if err := s.options.Add(ctx, o); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "option", "Could not create option")
	}

	participants, err := s.participants.FindByGeneratorID(ctx, generatorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "participant", "Could not load participants")
	}
	for _, p := range participants {
		sel := &models.Selection{ParticipantID: p.ID, OptionID: o.ID}
		if err := s.selections.Add(ctx, sel); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "selection", "Could not create selection")
		}
	}

	s.auditor.Emit(ctx, audit.Event{
		Action:  audit.EventOptionAdded,
		ActorID: requester,
		Subject: subjectOption(o.ID),
		Detail:  o.Name,
	})
	return o, nil
}

// getOption loads an option or fails with the canonical not-found error.
func (s *Service) getOption(ctx context.Context, id domain.OptionID) (*models.Option, error) {
	o, err := s.options.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "option", "No option with this id")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "option", "Could not load option")
	}
	return o, nil
}

// DeleteCategorizedOption removes one category from an option. Owner only.
// Removing the last category deletes the option entirely, together with
// its selections and the generator's results that reference it.
func (s *Service) DeleteCategorizedOption(ctx context.Context, requester domain.UserID, optionID domain.OptionID, category string) error {
	o, err := s.getOption(ctx, optionID)
	if err != nil {
		return err
	}
	g, err := s.getGenerator(ctx, o.GeneratorID)
	if err != nil {
		return err
	}
	if !isOwner(g, requester) {
		return dErrors.New(dErrors.CodeForbidden, "option", "You are not authorized to delete this option")
	}

	if empty := o.RemoveCategory(category); empty {
		return s.deleteOption(ctx, requester, o)
	}
	if err := s.options.Update(ctx, o); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "option", "Could not update option")
	}
	return nil
}

// PurgeOption deletes an option unconditionally. Owner only.
func (s *Service) PurgeOption(ctx context.Context, requester domain.UserID, optionID domain.OptionID) error {
	o, err := s.getOption(ctx, optionID)
	if err != nil {
		return err
	}
	g, err := s.getGenerator(ctx, o.GeneratorID)
	if err != nil {
		return err
	}
	if !isOwner(g, requester) {
		return dErrors.New(dErrors.CodeForbidden, "option", "You are not authorized to delete this option")
	}
	return s.deleteOption(ctx, requester, o)
}

func (s *Service) deleteOption(ctx context.Context, requester domain.UserID, o *models.Option) error {
	if err := s.deleteSelectionsForOption(ctx, o.ID); err != nil {
		return err
	}
	if err := s.results.DeleteByOptionID(ctx, o.ID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "result", "Could not delete results")
	}
	if err := s.options.Delete(ctx, o.ID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "option", "Could not delete option")
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:  audit.EventOptionRemoved,
		ActorID: requester,
		Subject: subjectOption(o.ID),
		Detail:  o.Name,
	})
	return nil
}

// FavoriseCategory marks every option in the generator carrying the given
// category as a favorite of the requester. Unlike the per-option toggle
// this write is idempotent, re-applying a category keeps the state.
func (s *Service) FavoriseCategory(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID, category string) error {
	return s.markCategory(ctx, requester, generatorID, category, (*models.Selection).MarkFavorised)
}

// ExcludeCategory excludes every option in the generator carrying the
// given category for the requester.
func (s *Service) ExcludeCategory(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID, category string) error {
	return s.markCategory(ctx, requester, generatorID, category, (*models.Selection).MarkExcluded)
}

func (s *Service) markCategory(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID, category string, mark func(*models.Selection)) error {
	if _, err := s.getGenerator(ctx, generatorID); err != nil {
		return err
	}
	p, err := s.requireMember(ctx, requester, generatorID)
	if err != nil {
		return err
	}

	options, err := s.options.FindByGeneratorID(ctx, generatorID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "option", "Could not load options")
	}
	for _, o := range options {
		if !o.HasCategory(category) {
			continue
		}
		sel, err := s.selections.FindByParticipantAndOption(ctx, p.ID, o.ID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "selection", "No selection with this participant and option")
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "selection", "Could not load selection")
		}
		mark(sel)
		if err := s.selections.Update(ctx, sel); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "selection", "Could not update selection")
		}
	}
	return nil
}
