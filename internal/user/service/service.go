// Package service owns the user account rules: registration with the
// password policy, credential checks, and refresh token rotation.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"rngenius/internal/platform/metrics"
	"rngenius/internal/user/models"
	"rngenius/internal/user/store"
	"rngenius/pkg/domain"
	dErrors "rngenius/pkg/domain-errors"
	audit "rngenius/pkg/platform/audit"
	"rngenius/pkg/platform/sentinel"
)

type Service struct {
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor *audit.Emitter
	cost    int
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

// WithBcryptCost lowers the hashing cost in tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: slog.Default(),
		cost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account after validating the profile and the password
// policy. The email must not be in use.
func (s *Service) Register(ctx context.Context, firstName, lastName, email, password string) (*models.User, error) {
	u := &models.User{FirstName: firstName, LastName: lastName, Email: email}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := models.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "user", "Could not hash password")
	}
	u.PasswordHash = string(hash)

	if err := s.store.Add(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "user", "User with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "user", "Could not create user")
	}

	s.metrics.IncrementUsersRegistered()
	s.auditor.Emit(ctx, audit.Event{
		Action:  audit.EventUserRegistered,
		ActorID: u.ID,
		Subject: "user:" + u.Email,
	})
	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID.Int64())
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	u, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "user", "No user with this id")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "user", "Could not load user")
	}
	return u, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "user", "No user with this email")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "user", "Could not load user")
	}
	return u, nil
}

// Authenticate verifies the email/password pair and returns the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user", "Invalid password")
	}
	return u, nil
}

// RotateRefreshToken issues a fresh opaque refresh token for the user and
// stores only its bcrypt hash. The previous token stops working.
func (s *Service) RotateRefreshToken(ctx context.Context, id domain.UserID) (string, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	token := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(token), s.cost)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "user", "Could not hash refresh token")
	}
	u.RefreshTokenHash = string(hash)

	if err := s.store.Update(ctx, u); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "user", "Could not store refresh token")
	}
	return token, nil
}

// CheckRefreshToken verifies the presented refresh token against the stored
// hash.
func (s *Service) CheckRefreshToken(ctx context.Context, id domain.UserID, token string) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.RefreshTokenHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(u.RefreshTokenHash), []byte(token)) != nil {
		return dErrors.New(dErrors.CodeUnauthorized, "user", "Invalid refresh token")
	}
	return nil
}

// ChangePassword swaps the password after checking the old one and the
// policy for the new one.
func (s *Service) ChangePassword(ctx context.Context, id domain.UserID, oldPassword, newPassword string) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
		return dErrors.New(dErrors.CodeUnauthorized, "user", "Invalid password")
	}
	if err := models.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "user", "Could not hash password")
	}
	u.PasswordHash = string(hash)

	if err := s.store.Update(ctx, u); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "user", "Could not update user")
	}
	s.logger.InfoContext(ctx, "password changed", "user_id", id.Int64())
	return nil
}
