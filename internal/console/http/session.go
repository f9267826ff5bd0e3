package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/chatforge/console/internal/console/service"
	"github.com/chatforge/console/pkg/httpx"
)

type SessionHandler struct {
	IdentityService *service.IdentityService
	Secure          bool // mark cookies Secure outside local development
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OTPCode  string `json:"otp_code,omitempty"`
}

type sessionResponse struct {
	Token                  string `json:"token"`
	Role                   string `json:"role"`
	ClientID               string `json:"client_id,omitempty"`
	ExpiresAt              int64  `json:"expires_at"`
	RedirectTo             string `json:"redirect_to"`
	PasswordChangeRequired bool   `json:"password_change_required,omitempty"`
}

// HandleSignIn godoc
//
//	@Summary		Sign In Endpoint
//	@Description	Authenticate with email and password (plus a TOTP code when MFA is enabled) and receive a session token.
//	@Description	The token is also set as a session cookie for browser navigation.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		signInRequest		true	"Credentials"
//	@Success		200		{object}	sessionResponse		"token, role, expires_at, redirect_to"
//	@Failure		401		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/session [post].
func (h *SessionHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	session, err := h.IdentityService.SignIn(ctx, req.Email, req.Password, req.OTPCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMFARequired):
			httpx.WriteError(w, http.StatusUnauthorized, "mfa_required", "A one-time code is required")
		case errors.Is(err, service.ErrBadCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Sign-in failed")
		}
		return
	}

	h.setCookie(w, session.Token, session.ExpiresAt)
	writeSession(w, r, session)
}

// writeSession answers a successful authentication, honouring a safe
// ?redirect= target captured by the page gate.
func writeSession(w http.ResponseWriter, r *http.Request, session service.Session) {
	redirectTo := roleHome(session.Role)
	if target := r.URL.Query().Get("redirect"); safeRedirect(target) {
		redirectTo = target
	}

	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		Token:                  session.Token,
		Role:                   string(session.Role),
		ClientID:               session.ClientID,
		ExpiresAt:              session.ExpiresAt.Unix(),
		RedirectTo:             redirectTo,
		PasswordChangeRequired: session.User.PasswordChangeRequired,
	})
}

// safeRedirect accepts only local absolute paths, rejecting protocol-relative
// and absolute URLs that would make the parameter an open redirect.
func safeRedirect(target string) bool {
	return len(target) > 1 && target[0] == '/' && target[1] != '/'
}

type principalResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ClientID  string `json:"client_id,omitempty"`
	ExpiresAt int64  `json:"expires_at"`
}

// HandleWhoAmI godoc
//
//	@Summary		Current Session Endpoint
//	@Description	Echo the authenticated principal: user id, email, resolved role and client binding.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	principalResponse	"user_id, email, role, client_id, expires_at"
//	@Failure		401	{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/session [get].
func (h *SessionHandler) HandleWhoAmI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims := httpx.ClaimsFromContext(ctx)
	if claims == nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	resp := principalResponse{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Role:     httpx.RoleFromContext(ctx),
		ClientID: httpx.ClientIDFromContext(ctx),
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Unix()
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleSignOut godoc
//
//	@Summary		Sign Out Endpoint
//	@Description	Clear the session cookie. Bearer clients simply drop the token.
//	@Tags			Session
//	@Success		204	"no content"
//	@Router			/v1/session [delete].
func (h *SessionHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword godoc
//
//	@Summary		Change Password Endpoint
//	@Description	Replace the caller's password after verifying the current one. Clears any pending forced-change flag.
//	@Tags			Session
//	@Accept			json
//	@Success		204	"no content"
//	@Failure		401	{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/session/password [post].
func (h *SessionHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	userID := httpx.UserIDFromContext(ctx)
	err := h.IdentityService.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Current password did not match")
		case errors.Is(err, service.ErrInvalidRequest):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "New password is required")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Password change failed")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) setCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
