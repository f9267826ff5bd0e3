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

type ClientsHandler struct {
	ClientService *service.ClientService
}

type clientRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	Company      string `json:"company,omitempty"`
	Description  string `json:"description,omitempty"`
}

type clientResponse struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	ContactEmail        string     `json:"contact_email"`
	Company             string     `json:"company,omitempty"`
	Description         string     `json:"description,omitempty"`
	AgentSlug           string     `json:"agent_slug"`
	Status              string     `json:"status"`
	DeletionScheduledAt *time.Time `json:"deletion_scheduled_at,omitempty"`
	PurgeAfter          *time.Time `json:"purge_after,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func toClientResponse(c domain.ClientAccount) clientResponse {
	return clientResponse{
		ID:                  c.ID,
		Name:                c.Name,
		ContactEmail:        c.ContactEmail,
		Company:             c.Company,
		Description:         c.Description,
		AgentSlug:           c.AgentSlug,
		Status:              c.Status,
		DeletionScheduledAt: c.DeletionScheduledAt,
		PurgeAfter:          c.PurgeAfter,
		CreatedAt:           c.CreatedAt,
	}
}

// HandleCreate godoc
//
//	@Summary		Create Client Endpoint
//	@Description	Provision a new client account with a derived agent slug and default widget configuration. Admin only.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Param			request	body		clientRequest		true	"Client fields"
//	@Success		201		{object}	clientResponse		"the created client"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/clients [post].
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	client, err := h.ClientService.Create(ctx, httpx.UserIDFromContext(ctx), service.CreateParams{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Company:      req.Company,
		Description:  req.Description,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name and contact_email are required")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create client")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toClientResponse(client))
}

// HandleList godoc
//
//	@Summary		List Clients Endpoint
//	@Description	List all client accounts, newest first, including ones scheduled for deletion. Admin only.
//	@Tags			Clients
//	@Produce		json
//	@Success		200	{array}	clientResponse	"clients"
//	@Security		BearerAuth
//	@Router			/v1/clients [get].
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	clients, err := h.ClientService.List(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list clients")
		return
	}

	out := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientResponse(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCount godoc
//
//	@Summary		Active Client Count Endpoint
//	@Description	Count client accounts not scheduled for deletion. Admin only.
//	@Tags			Clients
//	@Produce		json
//	@Success		200	{object}	map[string]int64	"active_clients"
//	@Security		BearerAuth
//	@Router			/v1/clients/count [get].
func (h *ClientsHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.ClientService.CountActive(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to count clients")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"active_clients": n})
}

// HandleGet godoc
//
//	@Summary		Get Client Endpoint
//	@Description	Fetch one client account. Admins may fetch any; client principals only their own.
//	@Tags			Clients
//	@Produce		json
//	@Param			id	path		string				true	"Client ID"
//	@Success		200	{object}	clientResponse		"the client"
//	@Failure		404	{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/clients/{id} [get].
func (h *ClientsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
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
	httpx.WriteJSON(w, http.StatusOK, toClientResponse(client))
}

// HandleUpdate godoc
//
//	@Summary		Update Client Endpoint
//	@Description	Update the profile fields of a client account. The agent slug never changes after creation.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Client ID"
//	@Param			request	body		clientRequest		true	"Client fields"
//	@Success		200		{object}	clientResponse		"the updated client"
//	@Failure		409		{object}	httpx.ErrorResponse	"client scheduled for deletion"
//	@Security		BearerAuth
//	@Router			/v1/clients/{id} [put].
func (h *ClientsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if !canAccessClient(ctx, id) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Cannot access this client")
		return
	}

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	client, err := h.ClientService.Update(ctx, httpx.UserIDFromContext(ctx), id, service.UpdateParams{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Company:      req.Company,
		Description:  req.Description,
	})
	if err != nil {
		writeClientError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toClientResponse(client))
}

// HandleDelete godoc
//
//	@Summary		Schedule Client Deletion Endpoint
//	@Description	Soft-delete a client account. Data is kept for the recovery window and a recovery link is emailed to the contact address. Admin only.
//	@Tags			Clients
//	@Produce		json
//	@Param			id	path		string			true	"Client ID"
//	@Success		200	{object}	clientResponse	"the client with its deletion schedule"
//	@Security		BearerAuth
//	@Router			/v1/clients/{id} [delete].
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	client, err := h.ClientService.ScheduleDeletion(ctx, httpx.UserIDFromContext(ctx), id)
	if err != nil {
		writeClientError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toClientResponse(client))
}

func writeClientError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrClientNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Client not found")
	case errors.Is(err, service.ErrClientDeleted):
		httpx.WriteError(w, http.StatusConflict, "client_deleted", "Client is scheduled for deletion")
	case errors.Is(err, service.ErrInvalidRequest):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid client fields")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Client operation failed")
	}
}
