package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"inward-backend/application/queries"
	querybus "inward-backend/application/queries/bus"
	"inward-backend/pkg/auth"
	apperrors "inward-backend/pkg/errors"
)

// RollupHandler handles activity rollup HTTP requests
type RollupHandler struct {
	queryBus *querybus.QueryBus
	errors   *apperrors.ErrorHandler
	logger   *zap.Logger
}

// NewRollupHandler creates a new rollup handler
func NewRollupHandler(queryBus *querybus.QueryBus, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) *RollupHandler {
	return &RollupHandler{
		queryBus: queryBus,
		errors:   errorHandler,
		logger:   logger,
	}
}

// GetActivity handles GET /rollup/activity
func (h *RollupHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetActivityRollupQuery{UserID: userCtx.UserID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
