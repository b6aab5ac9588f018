// Package service owns the generator domain rules: membership and owner
// authorization, the option lifecycle, per-participant selections, the
// weighted draw, and the explicit deletion cascades. Stores are dumb CRUD
// collaborators, every business decision lives here.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"rngenius/internal/generator/models"
	"rngenius/internal/generator/store"
	"rngenius/internal/platform/metrics"
	"rngenius/pkg/domain"
	dErrors "rngenius/pkg/domain-errors"
	audit "rngenius/pkg/platform/audit"
	"rngenius/pkg/platform/sentinel"
)

// UserDirectory resolves users for participant management. Implementations
// return domain errors directly ("No user with this email").
type UserDirectory interface {
	IDByEmail(ctx context.Context, email string) (domain.UserID, error)
}

// Stores bundles the five persistence collaborators. Both the memory and
// the postgres implementations satisfy it.
type Stores interface {
	Generators() store.GeneratorStore
	Options() store.OptionStore
	Participants() store.ParticipantStore
	Selections() store.SelectionStore
	Results() store.ResultStore
}

type Service struct {
	generators   store.GeneratorStore
	options      store.OptionStore
	participants store.ParticipantStore
	selections   store.SelectionStore
	results      store.ResultStore
	users        UserDirectory

	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor *audit.Emitter
	tracer  trace.Tracer
	randInt func(n int) int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditor(a *audit.Emitter) Option {
	return func(s *Service) { s.auditor = a }
}

// WithRandInt replaces the draw's random source. Tests inject a fixed
// sequence to make outcomes deterministic.
func WithRandInt(f func(n int) int) Option {
	return func(s *Service) { s.randInt = f }
}

func New(stores Stores, users UserDirectory, opts ...Option) *Service {
	s := &Service{
		generators:   stores.Generators(),
		options:      stores.Options(),
		participants: stores.Participants(),
		selections:   stores.Selections(),
		results:      stores.Results(),
		users:        users,
		logger:       slog.Default(),
		tracer:       otel.Tracer("rngenius/generator"),
		randInt:      rand.Intn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GeneratorDetail is the full view of a generator for members.
type GeneratorDetail struct {
	Generator    *models.Generator
	Options      []*models.Option
	Participants []*models.Participant
}

// getGenerator loads a generator or fails with the canonical not-found
// error.
func (s *Service) getGenerator(ctx context.Context, id domain.GeneratorID) (*models.Generator, error) {
	g, err := s.generators.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "generator", "No generator with this id")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "generator", "Could not load generator")
	}
	return g, nil
}

// memberOf returns the requester's participant record for the generator,
// or nil when the requester is not a member.
func (s *Service) memberOf(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID) (*models.Participant, error) {
	p, err := s.participants.FindByUserAndGenerator(ctx, requester, generatorID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "participant", "Could not load participant")
	}
	return p, nil
}

func (s *Service) requireMember(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID) (*models.Participant, error) {
	p, err := s.memberOf(ctx, requester, generatorID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, dErrors.New(dErrors.CodeForbidden, "generator", "You are not authorized to view this generator")
	}
	return p, nil
}

func isOwner(g *models.Generator, requester domain.UserID) bool {
	return g.OwnerID == requester
}

// GetGenerator returns the full detail of one generator. Any participant
// may view it.
func (s *Service) GetGenerator(ctx context.Context, requester domain.UserID, id domain.GeneratorID) (*GeneratorDetail, error) {
	g, err := s.getGenerator(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, requester, id); err != nil {
		return nil, err
	}

	options, err := s.options.FindByGeneratorID(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "option", "Could not load options")
	}
	participants, err := s.participants.FindByGeneratorID(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "participant", "Could not load participants")
	}

	return &GeneratorDetail{Generator: g, Options: options, Participants: participants}, nil
}

// GetMyGenerators lists every generator the requester participates in.
func (s *Service) GetMyGenerators(ctx context.Context, requester domain.UserID) ([]*models.Generator, error) {
	memberships, err := s.participants.FindByUserID(ctx, requester)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "participant", "Could not load participants")
	}

	generators := make([]*models.Generator, 0, len(memberships))
	for _, p := range memberships {
		g, err := s.getGenerator(ctx, p.GeneratorID)
		if err != nil {
			return nil, err
		}
		generators = append(generators, g)
	}
	return generators, nil
}

// AddGenerator creates a generator and enrolls the creator as its first
// participant.
func (s *Service) AddGenerator(ctx context.Context, requester domain.UserID, g *models.Generator) (*models.Generator, error) {
	if g == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "generator", "Generator data is required")
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	g.OwnerID = requester

	if err := s.generators.Add(ctx, g); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "generator", "Could not create generator")
	}
	owner := &models.Participant{GeneratorID: g.ID, UserID: requester}
	if err := s.participants.Add(ctx, owner); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "participant", "Could not enroll owner")
	}

	s.metrics.IncrementGeneratorsCreated()
	s.auditor.Emit(ctx, audit.Event{
		Action:  audit.EventGeneratorCreated,
		ActorID: requester,
		Subject: subjectGenerator(g.ID),
		Detail:  g.Title,
	})
	s.logger.InfoContext(ctx, "generator created",
		"generator_id", g.ID.Int64(), "owner_id", requester.Int64())
	return g, nil
}

// UpdateGenerator changes title and icon. Owner only.
func (s *Service) UpdateGenerator(ctx context.Context, requester domain.UserID, id domain.GeneratorID, title string, iconNumber int) (*models.Generator, error) {
	g, err := s.getGenerator(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isOwner(g, requester) {
		return nil, dErrors.New(dErrors.CodeForbidden, "generator", "You are not authorized to update this generator")
	}

	g.Title = title
	g.IconNumber = iconNumber
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := s.generators.Update(ctx, g); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "generator", "Could not update generator")
	}

	s.auditor.Emit(ctx, audit.Event{
		Action:  audit.EventGeneratorUpdated,
		ActorID: requester,
		Subject: subjectGenerator(g.ID),
		Detail:  g.Title,
	})
	return g, nil
}

// DeleteGenerator destroys a generator and everything hanging off it.
// Dependents go first so no storage backend is left with dangling
// references: selections and results, then options and participants, then
// the generator itself.
func (s *Service) DeleteGenerator(ctx context.Context, requester domain.UserID, id domain.GeneratorID) error {
	g, err := s.getGenerator(ctx, id)
	if err != nil {
		return err
	}
	if !isOwner(g, requester) {
		return dErrors.New(dErrors.CodeForbidden, "generator", "You are not authorized to delete this generator")
	}

	options, err := s.options.FindByGeneratorID(ctx, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "option", "Could not load options")
	}
	for _, o := range options {
		if err := s.deleteSelectionsForOption(ctx, o.ID); err != nil {
			return err
		}
	}
	if err := s.results.DeleteByGeneratorID(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "result", "Could not delete results")
	}
	for _, o := range options {
		if err := s.options.Delete(ctx, o.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "option", "Could not delete option")
		}
	}
	participants, err := s.participants.FindByGeneratorID(ctx, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "participant", "Could not load participants")
	}
	for _, p := range participants {
		if err := s.participants.Delete(ctx, p.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "participant", "Could not delete participant")
		}
	}
	if err := s.generators.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "generator", "Could not delete generator")
	}

	s.auditor.Emit(ctx, audit.Event{
		Action:  audit.EventGeneratorDeleted,
		ActorID: requester,
		Subject: subjectGenerator(id),
		Detail:  g.Title,
	})
	s.logger.InfoContext(ctx, "generator deleted",
		"generator_id", id.Int64(), "owner_id", requester.Int64())
	return nil
}

func subjectGenerator(id domain.GeneratorID) string {
	return "generator:" + strconv.FormatInt(id.Int64(), 10)
}

func subjectOption(id domain.OptionID) string {
	return "option:" + strconv.FormatInt(id.Int64(), 10)
}

func (s *Service) deleteSelectionsForOption(ctx context.Context, optionID domain.OptionID) error {
	selections, err := s.selections.FindByOptionID(ctx, optionID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "selection", "Could not load selections")
	}
	for _, sel := range selections {
		if err := s.selections.Delete(ctx, sel.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "selection", "Could not delete selection")
		}
	}
	return nil
}
