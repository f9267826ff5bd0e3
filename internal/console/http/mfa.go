package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chatforge/console/internal/console/service"
	"github.com/chatforge/console/pkg/httpx"
)

type MFAHandler struct {
	MFAService *service.MFAService
}

type enrollResponse struct {
	Secret     string `json:"secret"`
	ProvingURL string `json:"otpauth_url"`
}

// HandleEnroll godoc
//
//	@Summary		Begin MFA Enrollment Endpoint
//	@Description	Generate a TOTP secret for the caller. MFA only switches on after the first code is confirmed.
//	@Tags			MFA
//	@Produce		json
//	@Success		200	{object}	enrollResponse		"secret, otpauth_url"
//	@Failure		409	{object}	httpx.ErrorResponse	"already enabled"
//	@Security		BearerAuth
//	@Router			/v1/mfa/totp/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	enrollment, err := h.MFAService.BeginEnrollment(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		if errors.Is(err, service.ErrMFAAlreadyEnabled) {
			httpx.WriteError(w, http.StatusConflict, "mfa_enabled", "MFA is already enabled")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to begin enrollment")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, enrollResponse{
		Secret:     enrollment.Secret,
		ProvingURL: enrollment.ProvingURL,
	})
}

type confirmRequest struct {
	Code string `json:"code"`
}

// HandleConfirm godoc
//
//	@Summary		Confirm MFA Enrollment Endpoint
//	@Description	Validate the first TOTP code against the pending secret and switch MFA on.
//	@Tags			MFA
//	@Accept			json
//	@Success		204	"no content"
//	@Failure		400	{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/mfa/totp/confirm [post].
func (h *MFAHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	err := h.MFAService.ConfirmEnrollment(ctx, httpx.UserIDFromContext(ctx), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMFACodeInvalid):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_code", "One-time code did not verify")
		case errors.Is(err, service.ErrMFANotEnrolled):
			httpx.WriteError(w, http.StatusBadRequest, "not_enrolled", "Begin enrollment first")
		case errors.Is(err, service.ErrMFAAlreadyEnabled):
			httpx.WriteError(w, http.StatusConflict, "mfa_enabled", "MFA is already enabled")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to confirm enrollment")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type disableRequest struct {
	Password string `json:"password"`
}

// HandleDisable godoc
//
//	@Summary		Disable MFA Endpoint
//	@Description	Turn MFA off for the caller after re-verifying the account password.
//	@Tags			MFA
//	@Accept			json
//	@Success		204	"no content"
//	@Failure		401	{object}	httpx.ErrorResponse	"password did not match"
//	@Security		BearerAuth
//	@Router			/v1/mfa/totp [delete].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req disableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	err := h.MFAService.Disable(ctx, httpx.UserIDFromContext(ctx), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Password did not match")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to disable MFA")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
