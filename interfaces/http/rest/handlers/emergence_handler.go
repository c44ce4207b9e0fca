package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"inward-backend/application/queries"
	querybus "inward-backend/application/queries/bus"
	"inward-backend/pkg/auth"
	apperrors "inward-backend/pkg/errors"
)

// EmergenceHandler handles emergence-related HTTP requests
type EmergenceHandler struct {
	queryBus *querybus.QueryBus
	errors   *apperrors.ErrorHandler
	logger   *zap.Logger
}

// NewEmergenceHandler creates a new emergence handler
func NewEmergenceHandler(queryBus *querybus.QueryBus, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) *EmergenceHandler {
	return &EmergenceHandler{
		queryBus: queryBus,
		errors:   errorHandler,
		logger:   logger,
	}
}

// GetEmergence handles GET /emergence. Pass refresh=true to discard
// any cached finding and recompute.
func (h *EmergenceHandler) GetEmergence(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := queries.GetEmergenceQuery{
		UserID:  userCtx.UserID,
		Refresh: r.URL.Query().Get("refresh") == "true",
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
