package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"inward-backend/application/queries"
	querybus "inward-backend/application/queries/bus"
	"inward-backend/pkg/auth"
	apperrors "inward-backend/pkg/errors"
)

// SynthesisHandler handles synthesis HTTP requests
type SynthesisHandler struct {
	queryBus *querybus.QueryBus
	errors   *apperrors.ErrorHandler
	logger   *zap.Logger
}

// NewSynthesisHandler creates a new synthesis handler
func NewSynthesisHandler(queryBus *querybus.QueryBus, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) *SynthesisHandler {
	return &SynthesisHandler{
		queryBus: queryBus,
		errors:   errorHandler,
		logger:   logger,
	}
}

// Synthesize handles POST /synthesis. Rate-limit and quota failures
// from the model backend carry their own status codes so the client
// can distinguish "try later" from "out of credit"; every other model
// failure already became a fallback payload upstream.
func (h *SynthesisHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.SynthesizeQuery{UserID: userCtx.UserID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
