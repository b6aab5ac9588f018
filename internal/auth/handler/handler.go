// Package handler exposes account registration and the token lifecycle over
// HTTP. Login failures feed the lockout counter, successful logins clear it.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"rngenius/internal/platform/metrics"
	"rngenius/internal/platform/middleware"
	"rngenius/internal/transport/http/shared"
	userModel "rngenius/internal/user/models"
	"rngenius/pkg/domain"
	dErrors "rngenius/pkg/domain-errors"
	"rngenius/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/auth-mocks.go -package=mocks UserService,TokenManager,Lockout

// UserService is the account surface the auth endpoints need.
type UserService interface {
	Register(ctx context.Context, firstName, lastName, email, password string) (*userModel.User, error)
	Authenticate(ctx context.Context, email, password string) (*userModel.User, error)
	GetByID(ctx context.Context, id domain.UserID) (*userModel.User, error)
	RotateRefreshToken(ctx context.Context, id domain.UserID) (string, error)
	CheckRefreshToken(ctx context.Context, id domain.UserID, token string) error
	ChangePassword(ctx context.Context, id domain.UserID, oldPassword, newPassword string) error
}

// TokenManager mints and verifies access tokens. RequesterID must accept an
// expired token, the refresh flow presents one to prove identity.
type TokenManager interface {
	CreateToken(userID domain.UserID, now time.Time) (string, error)
	ValidateToken(token string) (domain.UserID, error)
	RequesterID(token string) (domain.UserID, error)
}

// Lockout throttles repeated failed logins per account.
type Lockout interface {
	Check(ctx context.Context, email string) error
	RecordFailure(ctx context.Context, email string)
	Reset(ctx context.Context, email string)
}

// Handler serves the /auth routes.
type Handler struct {
	logger  *slog.Logger
	users   UserService
	tokens  TokenManager
	lockout Lockout
	metrics *metrics.Metrics
}

// New creates an auth Handler.
func New(users UserService, tokens TokenManager, lockout Lockout, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		users:   users,
		tokens:  tokens,
		lockout: lockout,
		metrics: m,
	}
}

// Register mounts the auth routes. Only the password change requires a valid
// bearer token.
func (h *Handler) Register(r chi.Router) {
	ar := chi.NewRouter()
	ar.Use(middleware.RequestID)
	ar.Use(middleware.Recovery(h.logger))
	ar.Use(middleware.Logger(h.logger))
	ar.Use(middleware.Timeout(30 * time.Second))
	ar.Use(middleware.ContentTypeJSON)
	ar.Use(middleware.ClientMetadata)
	ar.Use(middleware.Latency(h.metrics))

	ar.Post("/register", h.handleRegister)
	ar.Post("/login", h.handleLogin)
	ar.Put("/refresh", h.handleRefresh)
	ar.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(h.tokens))
		pr.Put("/password", h.handleChangePassword)
	})

	r.Mount("/auth", ar)
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// UserResponse is the wire form of an account profile. Hashes never leave
// the service.
type UserResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// TokenResponse is the login and refresh payload.
type TokenResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	User         UserResponse `json:"user"`
}

func toUserResponse(u *userModel.User) UserResponse {
	return UserResponse{
		ID:        u.ID.Int64(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "user", "Invalid request body"))
		return
	}

	u, err := h.users.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(r.Context(), w, "register", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "user", "Invalid request body"))
		return
	}
	if !govalidator.IsEmail(req.Email) || req.Password == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "user", "Email and password are required"))
		return
	}

	if err := h.lockout.Check(ctx, req.Email); err != nil {
		shared.WriteError(w, err)
		return
	}

	u, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		h.lockout.RecordFailure(ctx, req.Email)
		h.writeServiceError(ctx, w, "login", err)
		return
	}
	h.lockout.Reset(ctx, req.Email)

	h.writeTokenResponse(ctx, w, u)
}

// handleRefresh exchanges a refresh token for a fresh token pair. The access
// token in the payload may be expired, only its signature has to hold.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "user", "Invalid request body"))
		return
	}

	userID, err := h.tokens.RequesterID(req.Token)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.users.CheckRefreshToken(ctx, userID, req.RefreshToken); err != nil {
		h.writeServiceError(ctx, w, "refresh", err)
		return
	}

	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, "refresh", err)
		return
	}
	h.writeTokenResponse(ctx, w, u)
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "user", "Invalid request body"))
		return
	}

	if err := h.users.ChangePassword(ctx, requestcontext.UserID(ctx), req.OldPassword, req.NewPassword); err != nil {
		h.writeServiceError(ctx, w, "change password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeTokenResponse mints an access token, rotates the refresh token and
// renders the pair with the profile.
func (h *Handler) writeTokenResponse(ctx context.Context, w http.ResponseWriter, u *userModel.User) {
	token, err := h.tokens.CreateToken(u.ID, requestcontext.Now(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "create token", err)
		return
	}
	refresh, err := h.users.RotateRefreshToken(ctx, u.ID)
	if err != nil {
		h.writeServiceError(ctx, w, "rotate refresh token", err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, TokenResponse{
		Token:        token,
		RefreshToken: refresh,
		User:         toUserResponse(u),
	})
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, action string, err error) {
	if de, ok := dErrors.From(err); !ok || de.Code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "auth handler failure",
			"action", action,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}
