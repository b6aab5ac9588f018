package authlockout

import (
	"context"
	"log/slog"
	"time"

	dErrors "rngenius/pkg/domain-errors"
	audit "rngenius/pkg/platform/audit"
)

type Service struct {
	store       Store
	maxAttempts int
	window      time.Duration
	logger      *slog.Logger
	auditor     *audit.Emitter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditor(a *audit.Emitter) Option {
	return func(s *Service) { s.auditor = a }
}

func New(store Store, maxAttempts int, window time.Duration, opts ...Option) *Service {
	s := &Service{
		store:       store,
		maxAttempts: maxAttempts,
		window:      window,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check fails when the email has reached the failure threshold. Call
// before attempting the credential check.
func (s *Service) Check(ctx context.Context, email string) error {
	count, err := s.store.Count(ctx, email)
	if err != nil {
		// A broken counter must not lock everyone out.
		s.logger.WarnContext(ctx, "lockout check failed", "error", err)
		return nil
	}
	if count >= s.maxAttempts {
		return dErrors.New(dErrors.CodeUnauthorized, "user", "Too many failed login attempts, try again later")
	}
	return nil
}

// RecordFailure counts one failed login. Crossing the threshold emits an
// audit event.
func (s *Service) RecordFailure(ctx context.Context, email string) {
	count, err := s.store.Increment(ctx, email, s.window)
	if err != nil {
		s.logger.WarnContext(ctx, "lockout increment failed", "error", err)
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:  audit.EventLoginFailed,
		Subject: "user:" + email,
	})
	if count == s.maxAttempts {
		s.auditor.Emit(ctx, audit.Event{
			Action:  audit.EventAuthLockoutTriggered,
			Subject: "user:" + email,
		})
		s.logger.WarnContext(ctx, "login lockout triggered", "email", email)
	}
}

// Reset clears the failure count after a successful login.
func (s *Service) Reset(ctx context.Context, email string) {
	if err := s.store.Reset(ctx, email); err != nil {
		s.logger.WarnContext(ctx, "lockout reset failed", "error", err)
	}
}
