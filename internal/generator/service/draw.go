package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"rngenius/internal/generator/models"
	"rngenius/pkg/domain"
	dErrors "rngenius/pkg/domain-errors"
	audit "rngenius/pkg/platform/audit"
	"rngenius/pkg/requestcontext"
)

// Generate draws one weighted-random option from the generator's pool and
// records a result. Weighting works by duplication: an option favorited by
// k participants enters the pool k+1 times. An option excluded by any
// single participant is vetoed entirely. An empty pool fails before any
// result is written.
func (s *Service) Generate(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID) (*models.Option, error) {
	ctx, span := s.tracer.Start(ctx, "generator.draw")
	defer span.End()
	span.SetAttributes(attribute.Int64("generator.id", generatorID.Int64()))

	if _, err := s.getGenerator(ctx, generatorID); err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, requester, generatorID); err != nil {
		return nil, err
	}

	options, err := s.options.FindByGeneratorID(ctx, generatorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "option", "Could not load options")
	}

	var pool []*models.Option
	for _, o := range options {
		selections, err := s.selections.FindByOptionID(ctx, o.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "selection", "Could not load selections")
		}

		excluded := false
		favorites := 0
		for _, sel := range selections {
			if sel.Excluded {
				excluded = true
				break
			}
			if sel.Favorised {
				favorites++
			}
		}
		if excluded {
			continue
		}
		for i := 0; i <= favorites; i++ {
			pool = append(pool, o)
		}
	}

	if len(pool) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "generator", "No valid options available")
	}

	drawn := pool[s.randInt(len(pool))]
	span.SetAttributes(
		attribute.Int("draw.pool_size", len(pool)),
		attribute.Int64("draw.option_id", drawn.ID.Int64()),
	)

	result := &models.Result{
		GeneratorID: generatorID,
		UserID:      requester,
		OptionID:    drawn.ID,
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := s.results.Add(ctx, result); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "result", "Could not record result")
	}

	s.metrics.IncrementDrawsCompleted()
	s.auditor.Emit(ctx, audit.Event{
		Action:  audit.EventDrawCompleted,
		ActorID: requester,
		Subject: subjectGenerator(generatorID),
		Detail:  drawn.Name,
	})
	s.logger.InfoContext(ctx, "draw completed",
		"generator_id", generatorID.Int64(),
		"option_id", drawn.ID.Int64(),
		"pool_size", len(pool),
	)
	return drawn, nil
}
