package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chatforge/console/internal/console/service"
	"github.com/chatforge/console/pkg/httpx"
)

// SetupHandler serves the account-setup flow reached from invitation
// emails: verify the token for the form, then redeem it with the chosen
// password.
type SetupHandler struct {
	InvitationService *service.InvitationService
	IdentityService   *service.IdentityService
	Sessions          *SessionHandler
}

type setupVerifyResponse struct {
	Email    string `json:"email"`
	ClientID string `json:"client_id"`
}

// HandleVerify godoc
//
//	@Summary		Verify Setup Token Endpoint
//	@Description	Check a setup token without consuming it so the setup page can render the form.
//	@Description	Unknown, expired and used tokens all produce the same 404 body.
//	@Tags			Setup
//	@Produce		json
//	@Param			token	query		string				true	"Setup token from the invitation email"
//	@Success		200		{object}	setupVerifyResponse	"email, client_id"
//	@Failure		404		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/setup [get].
func (h *SetupHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	inv, err := h.InvitationService.Verify(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		if errors.Is(err, service.ErrInvitationInvalid) {
			httpx.WriteError(w, http.StatusNotFound, "invitation_invalid", "This setup link is invalid or has expired")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to verify setup link")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, setupVerifyResponse{
		Email:    inv.Email,
		ClientID: inv.ClientID,
	})
}

type redeemRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// HandleRedeem godoc
//
//	@Summary		Redeem Setup Token Endpoint
//	@Description	Consume a setup token, provision the client user and sign them in. Redeeming an
//	@Description	already-used token with the matching password behaves like a sign-in, so a
//	@Description	double-clicked email link does not error.
//	@Tags			Setup
//	@Accept			json
//	@Produce		json
//	@Param			request	body		redeemRequest		true	"Token and chosen password"
//	@Success		200		{object}	sessionResponse		"token, role, expires_at, redirect_to"
//	@Failure		404		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/setup [post].
func (h *SetupHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	user, err := h.InvitationService.Redeem(ctx, req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvitationInvalid):
			httpx.WriteError(w, http.StatusNotFound, "invitation_invalid", "This setup link is invalid or has expired")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict, "email_taken", "Email already has an account")
		case errors.Is(err, service.ErrInvalidRequest):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "token and password are required")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to complete setup")
		}
		return
	}

	session, err := h.IdentityService.SessionForUser(ctx, user)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Account created but sign-in failed")
		return
	}

	h.Sessions.setCookie(w, session.Token, session.ExpiresAt)
	writeSession(w, r, session)
}
