package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/service"
	"github.com/chatforge/console/pkg/httpx"
)

type StatsHandler struct {
	StatsService *service.StatsService
}

// HandleStats godoc
//
//	@Summary		Usage Statistics Endpoint
//	@Description	Dashboard metrics for a client: total interactions, active days, average response time and top queries.
//	@Tags			Stats
//	@Produce		json
//	@Param			id	path		string					true	"Client ID"
//	@Success		200	{object}	domain.InteractionStats	"the metrics"
//	@Security		BearerAuth
//	@Router			/v1/clients/{id}/stats [get].
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := r.PathValue("id")

	if !canAccessClient(ctx, clientID) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Cannot access this client")
		return
	}

	stats, err := h.StatsService.Stats(ctx, clientID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to compute statistics")
		return
	}
	if stats.TopQueries == nil {
		stats.TopQueries = []domain.QueryCount{}
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

type ingestRequest struct {
	Agent          string `json:"agent"` // agent slug from the embed attributes
	Query          string `json:"query"`
	ResponseTimeMS int64  `json:"response_time_ms"`
}

// HandleIngest godoc
//
//	@Summary		Interaction Ingest Endpoint
//	@Description	Public endpoint the embedded widget posts each exchange to, keyed by its agent slug.
//	@Tags			Stats
//	@Accept			json
//	@Success		202	"accepted"
//	@Failure		404	{object}	httpx.ErrorResponse	"unknown agent"
//	@Router			/v1/widget/interactions [post].
func (h *StatsHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	err := h.StatsService.Ingest(r.Context(), req.Agent, req.Query, req.ResponseTimeMS)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "agent and query are required")
		case errors.Is(err, service.ErrClientNotFound), errors.Is(err, service.ErrClientDeleted):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Unknown agent")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to record interaction")
		}
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
