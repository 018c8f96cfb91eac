package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/exoticmods/exoticbill/internal/httpx"
	"github.com/exoticmods/exoticbill/internal/services"
)

type EmployeeHandler struct {
	Svc *services.EmployeeService
}

func NewEmployeeHandler(svc *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{Svc: svc}
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.EmployeeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	emp, err := h.Svc.Create(in, actor(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, emp)
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.EmployeeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	emp, err := h.Svc.Update(chi.URLParam(r, "cid"), in, actor(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, emp)
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(chi.URLParam(r, "cid"), actor(r)); err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": chi.URLParam(r, "cid")})
}

func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Svc.Get(chi.URLParam(r, "cid"))
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, emp)
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	emps, err := h.Svc.List(r.URL.Query().Get("hood"))
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": emps, "count": len(emps)})
}

func (h *EmployeeHandler) CreateHood(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	hood, err := h.Svc.CreateHood(req.Name, actor(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, hood)
}

func (h *EmployeeHandler) ListHoods(w http.ResponseWriter, r *http.Request) {
	hoods, err := h.Svc.ListHoods()
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": hoods})
}
