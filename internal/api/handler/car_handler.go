package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"autohaven/internal/api/middleware"
	"autohaven/internal/app/service"
	"autohaven/internal/common"
	"autohaven/internal/domain/filter"
	"autohaven/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type CarHandler struct {
	catalogService *service.CatalogService
}

func NewCarHandler(cs *service.CatalogService) *CarHandler {
	return &CarHandler{catalogService: cs}
}

func (h *CarHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listCars)   // GET /api/cars
	r.Get("/{id}", h.getCar) // GET /api/cars/{id}

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.RequireAuthenticated)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/", h.createCar)
		adminRouter.Put("/{id}", h.updateCar)
		adminRouter.Delete("/{id}", h.deleteCar)
	})
}

// pageParams reads page and limit; missing or unparsable values fall back to
// the service defaults.
func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return service.NormalizePage(page, limit)
}

func (h *CarHandler) listCars(w http.ResponseWriter, r *http.Request) {
	criteria, err := filter.ParseQuery(r.URL.Query())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	page, limit := pageParams(r)

	res, err := h.catalogService.List(r.Context(), page, limit, criteria)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.PageResponse{
		Success:    true,
		Count:      len(res.Items),
		Pagination: common.Pagination{Page: res.Page, Limit: res.Limit, Total: res.Total},
		Data:       res.Items,
	})
}

func (h *CarHandler) getCar(w http.ResponseWriter, r *http.Request) {
	car, err := h.catalogService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, car)
}

func (h *CarHandler) createCar(w http.ResponseWriter, r *http.Request) {
	var req service.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	car, err := h.catalogService.Create(r.Context(), middleware.CallerFromContext(r.Context()), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithData(w, http.StatusCreated, car)
}

func (h *CarHandler) updateCar(w http.ResponseWriter, r *http.Request) {
	var patch model.ListingPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	car, err := h.catalogService.Update(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, car)
}

func (h *CarHandler) deleteCar(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.Delete(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, struct{}{})
}
