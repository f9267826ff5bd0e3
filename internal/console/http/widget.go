package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/service"
	"github.com/chatforge/console/pkg/httpx"
)

// maxLogoBytes caps logo uploads at 2 MiB.
const maxLogoBytes = 2 << 20

type WidgetHandler struct {
	ClientService *service.ClientService
}

// HandleGetConfig godoc
//
//	@Summary		Get Widget Configuration Endpoint
//	@Description	Fetch the widget configuration for a client, with defaults filled in.
//	@Tags			Widget
//	@Produce		json
//	@Param			id	path		string				true	"Client ID"
//	@Success		200	{object}	domain.WidgetConfig	"the widget configuration"
//	@Security		BearerAuth
//	@Router			/v1/clients/{id}/widget [get].
func (h *WidgetHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if !canAccessClient(ctx, id) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Cannot access this client")
		return
	}

	client, err := h.ClientService.Get(ctx, id)
	if err != nil {
		writeClientError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, client.Widget.Normalized())
}

// HandleUpdateConfig godoc
//
//	@Summary		Update Widget Configuration Endpoint
//	@Description	Replace the widget configuration. Colors must be #rrggbb, position one of bottom-right/bottom-left, URLs http(s).
//	@Tags			Widget
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Client ID"
//	@Param			request	body		domain.WidgetConfig	true	"Widget configuration"
//	@Success		200		{object}	domain.WidgetConfig	"the stored configuration"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/clients/{id}/widget [put].
func (h *WidgetHandler) HandleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if !canAccessClient(ctx, id) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Cannot access this client")
		return
	}

	var cfg domain.WidgetConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	stored, err := h.ClientService.UpdateWidget(ctx, httpx.UserIDFromContext(ctx), id, cfg)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		writeClientError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stored)
}

// HandleUploadLogo godoc
//
//	@Summary		Upload Widget Logo Endpoint
//	@Description	Store a widget logo image (png, jpeg, svg or webp, max 2 MiB) and record its public URL in the widget configuration.
//	@Tags			Widget
//	@Accept			png
//	@Produce		json
//	@Param			id	path		string				true	"Client ID"
//	@Success		200	{object}	map[string]string	"logo_url"
//	@Failure		415	{object}	httpx.ErrorResponse	"unsupported content type"
//	@Security		BearerAuth
//	@Router			/v1/clients/{id}/widget/logo [post].
func (h *WidgetHandler) HandleUploadLogo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if !canAccessClient(ctx, id) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Cannot access this client")
		return
	}

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "image/png"),
		strings.HasPrefix(contentType, "image/jpeg"),
		strings.HasPrefix(contentType, "image/svg+xml"),
		strings.HasPrefix(contentType, "image/webp"):
	default:
		httpx.WriteError(w, http.StatusUnsupportedMediaType, "unsupported_media_type",
			"Logo must be image/png, image/jpeg, image/svg+xml or image/webp")
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxLogoBytes)
	url, err := h.ClientService.UploadLogo(ctx, httpx.UserIDFromContext(ctx), id, contentType, body)
	if err != nil {
		writeClientError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"logo_url": url})
}

// HandleEmbed godoc
//
//	@Summary		Widget Embed Snippet Endpoint
//	@Description	Render the script tag a client pastes into their website to load the chat widget.
//	@Tags			Widget
//	@Produce		json
//	@Param			id	path		string				true	"Client ID"
//	@Success		200	{object}	map[string]string	"snippet"
//	@Security		BearerAuth
//	@Router			/v1/clients/{id}/widget/embed [get].
func (h *WidgetHandler) HandleEmbed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if !canAccessClient(ctx, id) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Cannot access this client")
		return
	}

	snippet, err := h.ClientService.EmbedSnippet(ctx, id)
	if err != nil {
		writeClientError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"snippet": snippet})
}
