package handler

import (
	"encoding/json"
	"net/http"

	"portfolio-api/internal/model"
	"portfolio-api/internal/service"
	"portfolio-api/pkg/apierror"
)

type ContactHandler struct {
	service *service.ContactService
}

func NewContactHandler(service *service.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

func (h *ContactHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("Invalid JSON body"))
		return
	}

	_, warning, err := h.service.SubmitContact(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.APIResponse{
		Success: true,
		Message: "Message received",
		Warning: warning,
	})
}

func (h *ContactHandler) SubmitWorkRequest(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.WorkRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("Invalid JSON body"))
		return
	}

	_, warning, err := h.service.SubmitWorkRequest(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.APIResponse{
		Success: true,
		Message: "Work request received",
		Warning: warning,
	})
}

// ListMessages is admin-only; kind filter defaults to contact messages.
func (h *ContactHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	kind := model.MessageKind(r.URL.Query().Get("kind"))
	if kind != model.MessageKindWorkRequest {
		kind = model.MessageKindContact
	}

	messages, err := h.service.ListMessages(r.Context(), kind)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", messages)
}
