package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/service"
	"github.com/chatforge/console/pkg/httpx"
)

type InvitationsHandler struct {
	InvitationService *service.InvitationService
}

type issueInvitationRequest struct {
	ClientID string `json:"client_id"`
	Email    string `json:"email"`
}

type invitationResponse struct {
	ID         string     `json:"id"`
	ClientID   string     `json:"client_id"`
	Email      string     `json:"email"`
	Status     string     `json:"status"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Notified   bool       `json:"notified"`
	CreatedAt  time.Time  `json:"created_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
}

func toInvitationResponse(inv domain.Invitation, now time.Time) invitationResponse {
	status := inv.Status
	if status == domain.InvitationStatusPending && now.After(inv.ExpiresAt) {
		status = "expired"
	}
	return invitationResponse{
		ID:         inv.ID,
		ClientID:   inv.ClientID,
		Email:      inv.Email,
		Status:     status,
		ExpiresAt:  inv.ExpiresAt,
		Notified:   inv.NotifiedAt != nil,
		CreatedAt:  inv.CreatedAt,
		AcceptedAt: inv.AcceptedAt,
	}
}

// HandleIssue godoc
//
//	@Summary		Issue Invitation Endpoint
//	@Description	Create a pending setup invitation for a client's contact email and send the setup link.
//	@Description	If delivery fails the invitation is still created with notified=false and can be resent.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		issueInvitationRequest	true	"Invitation request"
//	@Success		201		{object}	invitationResponse		"the invitation; the token only travels in the email"
//	@Failure		400		{object}	httpx.ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invitations [post].
func (h *InvitationsHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req issueInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	inv, err := h.InvitationService.Issue(ctx, req.ClientID, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "client_id and email are required and the client must be active")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to issue invitation")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toInvitationResponse(inv, time.Now().UTC()))
}

// HandleResend godoc
//
//	@Summary		Resend Invitation Endpoint
//	@Description	Rotate the setup token on a pending invitation and email a fresh link. The previous link stops working.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path		string				true	"Invitation ID"
//	@Success		200	{object}	invitationResponse	"the refreshed invitation"
//	@Failure		404	{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id}/resend [post].
func (h *InvitationsHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	inv, err := h.InvitationService.Resend(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrInvitationInvalid) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "No pending invitation with that id")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to resend invitation")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toInvitationResponse(inv, time.Now().UTC()))
}

// HandleList godoc
//
//	@Summary		List Invitations Endpoint
//	@Description	List a client's invitations, newest first.
//	@Tags			Invitations
//	@Produce		json
//	@Param			client_id	query	string				true	"Client ID"
//	@Success		200			{array}	invitationResponse	"invitations"
//	@Security		BearerAuth
//	@Router			/v1/invitations [get].
func (h *InvitationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "client_id is required")
		return
	}

	invs, err := h.InvitationService.ListByClient(ctx, clientID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list invitations")
		return
	}

	now := time.Now().UTC()
	out := make([]invitationResponse, 0, len(invs))
	for _, inv := range invs {
		out = append(out, toInvitationResponse(inv, now))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type provisionRequest struct {
	ClientID string `json:"client_id"`
	Email    string `json:"email"`
}

// HandleProvision godoc
//
//	@Summary		Provision User Endpoint
//	@Description	Create a client user immediately with an emailed temporary passphrase instead of the invitation flow.
//	@Description	The account must change its password at first sign-in.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		provisionRequest	true	"Provision request"
//	@Success		201		{object}	map[string]string	"user_id"
//	@Failure		409		{object}	httpx.ErrorResponse	"email already has an account"
//	@Security		BearerAuth
//	@Router			/v1/users/provision [post].
func (h *InvitationsHandler) HandleProvision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	user, err := h.InvitationService.ProvisionWithTemporaryPassword(ctx, req.ClientID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict, "email_taken", "Email already has an account")
		case errors.Is(err, service.ErrInvalidRequest):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "client_id and email are required")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to provision user")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"user_id": user.ID})
}
