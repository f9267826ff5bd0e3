package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/service"
	"github.com/chatforge/console/pkg/httpx"
)

type SourcesHandler struct {
	SourceService *service.SourceService
}

type addSourceRequest struct {
	Kind        string `json:"kind"` // "website" or "drive"
	URL         string `json:"url"`
	RefreshRate int    `json:"refresh_rate,omitempty"` // days; 0 means crawl once
}

// HandleAdd godoc
//
//	@Summary		Add Content Source Endpoint
//	@Description	Register a website URL or Google Drive link as a knowledge source for the client's chatbot.
//	@Description	Drive links are verified for link-sharing access before being accepted.
//	@Tags			Sources
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Client ID"
//	@Param			request	body		addSourceRequest		true	"Source to add"
//	@Success		201		{object}	domain.ContentSource	"the created source"
//	@Failure		400		{object}	httpx.ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/clients/{id}/sources [post].
func (h *SourcesHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := r.PathValue("id")

	if !canAccessClient(ctx, clientID) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Cannot access this client")
		return
	}

	var req addSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	actorID := httpx.UserIDFromContext(ctx)

	var (
		src domain.ContentSource
		err error
	)
	switch req.Kind {
	case domain.SourceKindWebsite:
		src, err = h.SourceService.AddWebsite(ctx, actorID, clientID, req.URL, req.RefreshRate)
	case domain.SourceKindDrive:
		src, err = h.SourceService.AddDrive(ctx, actorID, clientID, req.URL, req.RefreshRate)
	default:
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", `kind must be "website" or "drive"`)
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSourceURL):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "url must be a valid http(s) address")
		case errors.Is(err, domain.ErrInvalidDriveLink):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Not a recognizable Google Drive link")
		case errors.Is(err, service.ErrDriveNotShared):
			httpx.WriteError(w, http.StatusBadRequest, "drive_not_shared",
				"The Drive file must be shared as 'anyone with the link'")
		default:
			writeClientError(w, err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, src)
}

// HandleList godoc
//
//	@Summary		List Content Sources Endpoint
//	@Description	List a client's content sources, newest first.
//	@Tags			Sources
//	@Produce		json
//	@Param			id	path	string					true	"Client ID"
//	@Success		200	{array}	domain.ContentSource	"sources"
//	@Security		BearerAuth
//	@Router			/v1/clients/{id}/sources [get].
func (h *SourcesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := r.PathValue("id")

	if !canAccessClient(ctx, clientID) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Cannot access this client")
		return
	}

	sources, err := h.SourceService.List(ctx, clientID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list sources")
		return
	}
	if sources == nil {
		sources = []domain.ContentSource{}
	}
	httpx.WriteJSON(w, http.StatusOK, sources)
}

// HandleRemove godoc
//
//	@Summary		Remove Content Source Endpoint
//	@Description	Delete a content source. The source must belong to the client in the path.
//	@Tags			Sources
//	@Param			id			path	string	true	"Client ID"
//	@Param			source_id	path	string	true	"Source ID"
//	@Success		204	"no content"
//	@Failure		404	{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/clients/{id}/sources/{source_id} [delete].
func (h *SourcesHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := r.PathValue("id")

	if !canAccessClient(ctx, clientID) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Cannot access this client")
		return
	}

	err := h.SourceService.Remove(ctx, httpx.UserIDFromContext(ctx), clientID, r.PathValue("source_id"))
	if err != nil {
		if errors.Is(err, service.ErrSourceNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Source not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to remove source")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
