// Package handler exposes the generator service over HTTP. Routes mirror the
// mobile client's API, every route requires a bearer token and the requester
// id always comes from the validated token, never from the payload.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rngenius/internal/generator/models"
	"rngenius/internal/generator/service"
	"rngenius/internal/platform/metrics"
	"rngenius/internal/platform/middleware"
	"rngenius/internal/transport/http/shared"
	"rngenius/pkg/domain"
	dErrors "rngenius/pkg/domain-errors"
	"rngenius/pkg/requestcontext"
)

// Service is the subset of generator operations the HTTP layer needs.
type Service interface {
	GetGenerator(ctx context.Context, requester domain.UserID, id domain.GeneratorID) (*service.GeneratorDetail, error)
	GetMyGenerators(ctx context.Context, requester domain.UserID) ([]*models.Generator, error)
	AddGenerator(ctx context.Context, requester domain.UserID, g *models.Generator) (*models.Generator, error)
	UpdateGenerator(ctx context.Context, requester domain.UserID, id domain.GeneratorID, title string, iconNumber int) (*models.Generator, error)
	DeleteGenerator(ctx context.Context, requester domain.UserID, id domain.GeneratorID) error

	AddOption(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID, o *models.Option) (*models.Option, error)
	DeleteCategorizedOption(ctx context.Context, requester domain.UserID, optionID domain.OptionID, category string) error
	PurgeOption(ctx context.Context, requester domain.UserID, optionID domain.OptionID) error
	Generate(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID) (*models.Option, error)

	FavoriseOption(ctx context.Context, requester domain.UserID, optionID domain.OptionID) (*models.Selection, error)
	ExcludeOption(ctx context.Context, requester domain.UserID, optionID domain.OptionID) (*models.Selection, error)
	FavoriseCategory(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID, category string) error
	ExcludeCategory(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID, category string) error

	AddParticipant(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID, email string) (*models.Participant, error)
	RemoveParticipant(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID, participantUserID domain.UserID) error
	LeaveGenerator(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID) error
	ToggleNotifications(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID) (*models.Participant, error)
	GetMyNotifiedResults(ctx context.Context, requester domain.UserID) ([]*models.Result, error)
}

// Handler serves the /generator routes.
type Handler struct {
	logger     *slog.Logger
	generators Service
	metrics    *metrics.Metrics
	validator  middleware.TokenValidator
}

// New creates a generator Handler.
func New(generators Service, validator middleware.TokenValidator, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:     logger,
		generators: generators,
		metrics:    m,
		validator:  validator,
	}
}

// Register mounts the generator routes with the full middleware chain.
func (h *Handler) Register(r chi.Router) {
	gr := chi.NewRouter()
	gr.Use(middleware.RequestID)
	gr.Use(middleware.Recovery(h.logger))
	gr.Use(middleware.Logger(h.logger))
	gr.Use(middleware.Timeout(30 * time.Second))
	gr.Use(middleware.ContentTypeJSON)
	gr.Use(middleware.ClientMetadata)
	gr.Use(middleware.Latency(h.metrics))
	gr.Use(middleware.RequireAuth(h.validator))

	gr.Get("/myGenerators", h.handleMyGenerators)
	gr.Get("/myResults", h.handleMyResults)
	gr.Post("/add", h.handleAddGenerator)
	gr.Get("/{id}", h.handleGetGenerator)
	gr.Put("/update/{id}", h.handleUpdateGenerator)
	gr.Delete("/delete/{id}", h.handleDeleteGenerator)

	gr.Put("/addOption/{generatorId}", h.handleAddOption)
	gr.Put("/deleteOption/{optionId}", h.handleDeleteOption)
	gr.Delete("/purgeOption/{optionId}", h.handlePurgeOption)
	gr.Get("/generate/{id}", h.handleGenerate)

	gr.Put("/favorise/{optionId}", h.handleFavoriseOption)
	gr.Put("/exclude/{optionId}", h.handleExcludeOption)
	gr.Put("/favoriseCategory/{generatorId}", h.handleFavoriseCategory)
	gr.Put("/excludeCategory/{generatorId}", h.handleExcludeCategory)

	gr.Put("/addParticipant/{generatorId}", h.handleAddParticipant)
	gr.Put("/removeParticipant/{generatorId}", h.handleRemoveParticipant)
	gr.Delete("/leave/{generatorId}", h.handleLeaveGenerator)
	gr.Put("/toggleNotifications/{generatorId}", h.handleToggleNotifications)

	r.Mount("/generator", gr)
}

// ===========================================================================
// Request / response payloads
// ===========================================================================

type generatorRequest struct {
	Title      string `json:"title"`
	IconNumber int    `json:"iconNumber"`
}

type optionRequest struct {
	Name        string   `json:"name"`
	Categories  []string `json:"categories"`
	Description string   `json:"description"`
}

// GeneratorResponse is the wire form of a generator.
type GeneratorResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	IconNumber int    `json:"iconNumber"`
	OwnerID    int64  `json:"ownerId"`
}

// OptionResponse is the wire form of an option.
type OptionResponse struct {
	ID          int64    `json:"id"`
	GeneratorID int64    `json:"generatorId"`
	Name        string   `json:"name"`
	Categories  []string `json:"categories"`
	Description string   `json:"description,omitempty"`
}

// ParticipantResponse is the wire form of a membership.
type ParticipantResponse struct {
	ID            int64 `json:"id"`
	GeneratorID   int64 `json:"generatorId"`
	UserID        int64 `json:"userId"`
	Notifications bool  `json:"notifications"`
}

// SelectionResponse is the wire form of a participant's stance on an option.
type SelectionResponse struct {
	ID        int64 `json:"id"`
	OptionID  int64 `json:"optionId"`
	Favorised bool  `json:"favorised"`
	Excluded  bool  `json:"excluded"`
}

// ResultResponse is the wire form of a draw record.
type ResultResponse struct {
	ID          int64     `json:"id"`
	GeneratorID int64     `json:"generatorId"`
	UserID      int64     `json:"userId"`
	OptionID    int64     `json:"optionId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GeneratorDetailResponse is the member view of a generator.
type GeneratorDetailResponse struct {
	Generator    GeneratorResponse     `json:"generator"`
	Options      []OptionResponse      `json:"options"`
	Participants []ParticipantResponse `json:"participants"`
}

func toGeneratorResponse(g *models.Generator) GeneratorResponse {
	return GeneratorResponse{
		ID:         g.ID.Int64(),
		Title:      g.Title,
		IconNumber: g.IconNumber,
		OwnerID:    g.OwnerID.Int64(),
	}
}

func toOptionResponse(o *models.Option) OptionResponse {
	return OptionResponse{
		ID:          o.ID.Int64(),
		GeneratorID: o.GeneratorID.Int64(),
		Name:        o.Name,
		Categories:  o.Categories,
		Description: o.Description,
	}
}

func toParticipantResponse(p *models.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:            p.ID.Int64(),
		GeneratorID:   p.GeneratorID.Int64(),
		UserID:        p.UserID.Int64(),
		Notifications: p.Notifications,
	}
}

func toSelectionResponse(sel *models.Selection) SelectionResponse {
	return SelectionResponse{
		ID:        sel.ID.Int64(),
		OptionID:  sel.OptionID.Int64(),
		Favorised: sel.Favorised,
		Excluded:  sel.Excluded,
	}
}

func toResultResponse(res *models.Result) ResultResponse {
	return ResultResponse{
		ID:          res.ID.Int64(),
		GeneratorID: res.GeneratorID.Int64(),
		UserID:      res.UserID.Int64(),
		OptionID:    res.OptionID.Int64(),
		CreatedAt:   res.CreatedAt,
	}
}

// ===========================================================================
// Generator CRUD
// ===========================================================================

func (h *Handler) handleGetGenerator(w http.ResponseWriter, r *http.Request) {
	generatorID, err := domain.ParseGeneratorID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "generator", "Invalid generator id"))
		return
	}

	detail, err := h.generators.GetGenerator(r.Context(), requestcontext.UserID(r.Context()), generatorID)
	if err != nil {
		h.writeServiceError(r.Context(), w, "get generator", err)
		return
	}

	resp := GeneratorDetailResponse{
		Generator:    toGeneratorResponse(detail.Generator),
		Options:      make([]OptionResponse, 0, len(detail.Options)),
		Participants: make([]ParticipantResponse, 0, len(detail.Participants)),
	}
	for _, o := range detail.Options {
		resp.Options = append(resp.Options, toOptionResponse(o))
	}
	for _, p := range detail.Participants {
		resp.Participants = append(resp.Participants, toParticipantResponse(p))
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleMyGenerators(w http.ResponseWriter, r *http.Request) {
	generators, err := h.generators.GetMyGenerators(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		h.writeServiceError(r.Context(), w, "list my generators", err)
		return
	}

	resp := make([]GeneratorResponse, 0, len(generators))
	for _, g := range generators {
		resp = append(resp, toGeneratorResponse(g))
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleAddGenerator(w http.ResponseWriter, r *http.Request) {
	var req generatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "generator", "Invalid request body"))
		return
	}

	g := &models.Generator{Title: req.Title, IconNumber: req.IconNumber}
	created, err := h.generators.AddGenerator(r.Context(), requestcontext.UserID(r.Context()), g)
	if err != nil {
		h.writeServiceError(r.Context(), w, "add generator", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toGeneratorResponse(created))
}

func (h *Handler) handleUpdateGenerator(w http.ResponseWriter, r *http.Request) {
	generatorID, err := domain.ParseGeneratorID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "generator", "Invalid generator id"))
		return
	}

	var req generatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "generator", "Invalid request body"))
		return
	}

	updated, err := h.generators.UpdateGenerator(r.Context(), requestcontext.UserID(r.Context()), generatorID, req.Title, req.IconNumber)
	if err != nil {
		h.writeServiceError(r.Context(), w, "update generator", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toGeneratorResponse(updated))
}

func (h *Handler) handleDeleteGenerator(w http.ResponseWriter, r *http.Request) {
	generatorID, err := domain.ParseGeneratorID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "generator", "Invalid generator id"))
		return
	}

	if err := h.generators.DeleteGenerator(r.Context(), requestcontext.UserID(r.Context()), generatorID); err != nil {
		h.writeServiceError(r.Context(), w, "delete generator", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===========================================================================
// Options
// ===========================================================================

func (h *Handler) handleAddOption(w http.ResponseWriter, r *http.Request) {
	generatorID, err := domain.ParseGeneratorID(chi.URLParam(r, "generatorId"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "generator", "Invalid generator id"))
		return
	}

	var req optionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "option", "Invalid request body"))
		return
	}

	o := &models.Option{Name: req.Name, Categories: req.Categories, Description: req.Description}
	saved, err := h.generators.AddOption(r.Context(), requestcontext.UserID(r.Context()), generatorID, o)
	if err != nil {
		h.writeServiceError(r.Context(), w, "add option", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toOptionResponse(saved))
}

func (h *Handler) handleDeleteOption(w http.ResponseWriter, r *http.Request) {
	optionID, err := domain.ParseOptionID(chi.URLParam(r, "optionId"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "option", "Invalid option id"))
		return
	}
	category := r.URL.Query().Get("category")
	if category == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "category", "Category is required"))
		return
	}

	if err := h.generators.DeleteCategorizedOption(r.Context(), requestcontext.UserID(r.Context()), optionID, category); err != nil {
		h.writeServiceError(r.Context(), w, "delete categorized option", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePurgeOption(w http.ResponseWriter, r *http.Request) {
	optionID, err := domain.ParseOptionID(chi.URLParam(r, "optionId"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "option", "Invalid option id"))
		return
	}

	if err := h.generators.PurgeOption(r.Context(), requestcontext.UserID(r.Context()), optionID); err != nil {
		h.writeServiceError(r.Context(), w, "purge option", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	generatorID, err := domain.ParseGeneratorID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "generator", "Invalid generator id"))
		return
	}

	drawn, err := h.generators.Generate(r.Context(), requestcontext.UserID(r.Context()), generatorID)
	if err != nil {
		h.writeServiceError(r.Context(), w, "generate", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toOptionResponse(drawn))
}

// ===========================================================================
// Selections
// ===========================================================================

func (h *Handler) handleFavoriseOption(w http.ResponseWriter, r *http.Request) {
	h.toggleSelection(w, r, h.generators.FavoriseOption, "favorise option")
}

func (h *Handler) handleExcludeOption(w http.ResponseWriter, r *http.Request) {
	h.toggleSelection(w, r, h.generators.ExcludeOption, "exclude option")
}

func (h *Handler) toggleSelection(
	w http.ResponseWriter,
	r *http.Request,
	toggle func(ctx context.Context, requester domain.UserID, optionID domain.OptionID) (*models.Selection, error),
	action string,
) {
	optionID, err := domain.ParseOptionID(chi.URLParam(r, "optionId"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "option", "Invalid option id"))
		return
	}

	sel, err := toggle(r.Context(), requestcontext.UserID(r.Context()), optionID)
	if err != nil {
		h.writeServiceError(r.Context(), w, action, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toSelectionResponse(sel))
}

func (h *Handler) handleFavoriseCategory(w http.ResponseWriter, r *http.Request) {
	h.markCategory(w, r, h.generators.FavoriseCategory, "favorise category")
}

func (h *Handler) handleExcludeCategory(w http.ResponseWriter, r *http.Request) {
	h.markCategory(w, r, h.generators.ExcludeCategory, "exclude category")
}

func (h *Handler) markCategory(
	w http.ResponseWriter,
	r *http.Request,
	mark func(ctx context.Context, requester domain.UserID, generatorID domain.GeneratorID, category string) error,
	action string,
) {
	generatorID, err := domain.ParseGeneratorID(chi.URLParam(r, "generatorId"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "generator", "Invalid generator id"))
		return
	}
	category := r.URL.Query().Get("category")
	if category == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "category", "Category is required"))
		return
	}

	if err := mark(r.Context(), requestcontext.UserID(r.Context()), generatorID, category); err != nil {
		h.writeServiceError(r.Context(), w, action, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===========================================================================
// Participants
// ===========================================================================

func (h *Handler) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	generatorID, err := domain.ParseGeneratorID(chi.URLParam(r, "generatorId"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "generator", "Invalid generator id"))
		return
	}
	email := r.URL.Query().Get("email")
	if email == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "email", "Email is required"))
		return
	}

	p, err := h.generators.AddParticipant(r.Context(), requestcontext.UserID(r.Context()), generatorID, email)
	if err != nil {
		h.writeServiceError(r.Context(), w, "add participant", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toParticipantResponse(p))
}

func (h *Handler) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	generatorID, err := domain.ParseGeneratorID(chi.URLParam(r, "generatorId"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "generator", "Invalid generator id"))
		return
	}
	participantUserID, err := domain.ParseUserID(r.URL.Query().Get("participantId"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "participant", "Invalid participant id"))
		return
	}

	if err := h.generators.RemoveParticipant(r.Context(), requestcontext.UserID(r.Context()), generatorID, participantUserID); err != nil {
		h.writeServiceError(r.Context(), w, "remove participant", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLeaveGenerator(w http.ResponseWriter, r *http.Request) {
	generatorID, err := domain.ParseGeneratorID(chi.URLParam(r, "generatorId"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "generator", "Invalid generator id"))
		return
	}

	if err := h.generators.LeaveGenerator(r.Context(), requestcontext.UserID(r.Context()), generatorID); err != nil {
		h.writeServiceError(r.Context(), w, "leave generator", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleToggleNotifications(w http.ResponseWriter, r *http.Request) {
	generatorID, err := domain.ParseGeneratorID(chi.URLParam(r, "generatorId"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "generator", "Invalid generator id"))
		return
	}

	p, err := h.generators.ToggleNotifications(r.Context(), requestcontext.UserID(r.Context()), generatorID)
	if err != nil {
		h.writeServiceError(r.Context(), w, "toggle notifications", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toParticipantResponse(p))
}

func (h *Handler) handleMyResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.generators.GetMyNotifiedResults(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		h.writeServiceError(r.Context(), w, "list notified results", err)
		return
	}

	resp := make([]ResultResponse, 0, len(results))
	for _, res := range results {
		resp = append(resp, toResultResponse(res))
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

// writeServiceError logs unexpected failures and renders the error envelope.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, action string, err error) {
	if de, ok := dErrors.From(err); !ok || de.Code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "generator handler failure",
			"action", action,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}
