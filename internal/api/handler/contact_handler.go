package handler

import (
	"encoding/json"
	"net/http"

	"autohaven/internal/api/middleware"
	"autohaven/internal/app/service"
	"autohaven/internal/common"

	"github.com/go-chi/chi/v5"
)

type ContactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(cs *service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: cs}
}

func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.submit)
	r.With(middleware.RequireAuthenticated, middleware.AdminOnly).Get("/", h.list)
}

func (h *ContactHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req service.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	msg, err := h.contactService.Submit(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithData(w, http.StatusCreated, msg)
}

func (h *ContactHandler) list(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	messages, total, err := h.contactService.List(r.Context(), middleware.CallerFromContext(r.Context()), page, limit)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.PageResponse{
		Success:    true,
		Count:      len(messages),
		Pagination: common.Pagination{Page: page, Limit: limit, Total: total},
		Data:       messages,
	})
}
