package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/service"
	"github.com/chatforge/console/pkg/httpx"
)

type ActivitiesHandler struct {
	ActivityService *service.ActivityService
}

type activityResponse struct {
	ID          string                  `json:"id"`
	Kind        string                  `json:"kind"`
	Description string                  `json:"description"`
	Metadata    domain.ActivityMetadata `json:"metadata"`
	CreatedAt   time.Time               `json:"created_at"`
}

// HandleList godoc
//
//	@Summary		Activity Log Endpoint
//	@Description	Newest-first activity entries for a client account.
//	@Tags			Activities
//	@Produce		json
//	@Param			id		path	string	true	"Client ID"
//	@Param			limit	query	int		false	"Max entries, capped at 50"
//	@Success		200		{array}	activityResponse	"activities"
//	@Security		BearerAuth
//	@Router			/v1/clients/{id}/activities [get].
func (h *ActivitiesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := r.PathValue("id")

	if !canAccessClient(ctx, clientID) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Cannot access this client")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := h.ActivityService.List(ctx, clientID, limit)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list activities")
		return
	}

	out := make([]activityResponse, 0, len(activities))
	for _, a := range activities {
		out = append(out, activityResponse{
			ID:          a.ID,
			Kind:        string(a.Kind),
			Description: a.Description,
			Metadata:    a.Metadata,
			CreatedAt:   a.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
