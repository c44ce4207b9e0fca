package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"inward-backend/application/commands"
	"inward-backend/application/commands/bus"
	"inward-backend/application/queries"
	querybus "inward-backend/application/queries/bus"
	"inward-backend/pkg/auth"
	apperrors "inward-backend/pkg/errors"
)

// PatternsHandler handles pattern mirror and resonance HTTP requests
type PatternsHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *apperrors.ErrorHandler
	logger     *zap.Logger
}

// NewPatternsHandler creates a new patterns handler
func NewPatternsHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *PatternsHandler {
	return &PatternsHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// GetMirror handles GET /patterns/mirror
func (h *PatternsHandler) GetMirror(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetPatternMirrorQuery{UserID: userCtx.UserID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// DismissMirror handles POST /patterns/mirror/dismiss
func (h *PatternsHandler) DismissMirror(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.DismissPatternMirrorCommand{UserID: userCtx.UserID}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"dismissed": true,
	})
}

// MarkResonanceRequest represents the request body for marking resonance
type MarkResonanceRequest struct {
	Resonated bool `json:"resonated"`
}

// MarkResonance handles POST /statelogs/{logID}/resonance
func (h *PatternsHandler) MarkResonance(w http.ResponseWriter, r *http.Request) {
	logID := chi.URLParam(r, "logID")
	if logID == "" {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "State log ID is required")
		return
	}

	var req MarkResonanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.MarkResonanceCommand{
		UserID:     userCtx.UserID,
		StateLogID: logID,
		Resonated:  req.Resonated,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":        logID,
		"resonated": req.Resonated,
	})
}
