package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"inward-backend/application/queries"
	querybus "inward-backend/application/queries/bus"
	"inward-backend/pkg/auth"
	apperrors "inward-backend/pkg/errors"
)

// InsightsHandler handles insight HTTP requests
type InsightsHandler struct {
	queryBus *querybus.QueryBus
	errors   *apperrors.ErrorHandler
	logger   *zap.Logger
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(queryBus *querybus.QueryBus, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) *InsightsHandler {
	return &InsightsHandler{
		queryBus: queryBus,
		errors:   errorHandler,
		logger:   logger,
	}
}

// GetSpotlight handles GET /insights/spotlight
func (h *InsightsHandler) GetSpotlight(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetSpotlightInsightQuery{UserID: userCtx.UserID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
