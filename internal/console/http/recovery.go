package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chatforge/console/internal/console/service"
	"github.com/chatforge/console/pkg/httpx"
)

type RecoveryHandler struct {
	ClientService *service.ClientService
}

type recoverRequest struct {
	Token string `json:"token"`
}

// HandleRecover godoc
//
//	@Summary		Recover Client Endpoint
//	@Description	Consume a recovery token from the deletion notice email and restore the client account.
//	@Description	The token is single-use even under concurrent attempts.
//	@Tags			Recovery
//	@Accept			json
//	@Produce		json
//	@Param			request	body		recoverRequest		true	"Recovery token"
//	@Success		200		{object}	clientResponse		"the restored client"
//	@Failure		404		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/recover [post].
func (h *RecoveryHandler) HandleRecover(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	client, err := h.ClientService.Recover(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, service.ErrRecoveryInvalid) {
			httpx.WriteError(w, http.StatusNotFound, "recovery_invalid", "This recovery link is invalid or has expired")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to recover client")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toClientResponse(client))
}
