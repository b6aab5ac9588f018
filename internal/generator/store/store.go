// Package store persists generators and everything hanging off them. All
// implementations return sentinel.ErrNotFound for missing rows so callers
// can translate uniformly.
package store

import (
	"context"

	"rngenius/internal/generator/models"
	"rngenius/pkg/domain"
)

type GeneratorStore interface {
	Add(ctx context.Context, g *models.Generator) error
	Update(ctx context.Context, g *models.Generator) error
	FindByID(ctx context.Context, id domain.GeneratorID) (*models.Generator, error)
	Delete(ctx context.Context, id domain.GeneratorID) error
}

type OptionStore interface {
	Add(ctx context.Context, o *models.Option) error
	Update(ctx context.Context, o *models.Option) error
	FindByID(ctx context.Context, id domain.OptionID) (*models.Option, error)
	FindByGeneratorID(ctx context.Context, id domain.GeneratorID) ([]*models.Option, error)
	FindByGeneratorIDAndName(ctx context.Context, id domain.GeneratorID, name string) (*models.Option, error)
	Delete(ctx context.Context, id domain.OptionID) error
}

type ParticipantStore interface {
	Add(ctx context.Context, p *models.Participant) error
	Update(ctx context.Context, p *models.Participant) error
	FindByID(ctx context.Context, id domain.ParticipantID) (*models.Participant, error)
	FindByGeneratorID(ctx context.Context, id domain.GeneratorID) ([]*models.Participant, error)
	FindByUserID(ctx context.Context, id domain.UserID) ([]*models.Participant, error)
	FindByUserAndGenerator(ctx context.Context, userID domain.UserID, generatorID domain.GeneratorID) (*models.Participant, error)
	Delete(ctx context.Context, id domain.ParticipantID) error
}

type SelectionStore interface {
	Add(ctx context.Context, s *models.Selection) error
	Update(ctx context.Context, s *models.Selection) error
	FindByOptionID(ctx context.Context, id domain.OptionID) ([]*models.Selection, error)
	FindByParticipantID(ctx context.Context, id domain.ParticipantID) ([]*models.Selection, error)
	FindByParticipantAndOption(ctx context.Context, participantID domain.ParticipantID, optionID domain.OptionID) (*models.Selection, error)
	Delete(ctx context.Context, id domain.SelectionID) error
}

type ResultStore interface {
	Add(ctx context.Context, r *models.Result) error
	FindByGeneratorID(ctx context.Context, id domain.GeneratorID) ([]*models.Result, error)
	DeleteByGeneratorID(ctx context.Context, id domain.GeneratorID) error
	DeleteByOptionID(ctx context.Context, id domain.OptionID) error
}
