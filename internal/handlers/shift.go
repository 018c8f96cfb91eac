package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/exoticmods/exoticbill/internal/httpx"
	"github.com/exoticmods/exoticbill/internal/services"
)

type ShiftHandler struct {
	Svc *services.ShiftService
}

func NewShiftHandler(svc *services.ShiftService) *ShiftHandler {
	return &ShiftHandler{Svc: svc}
}

type shiftReq struct {
	EmployeeCID string `json:"employee_cid"`
}

// Start: POST /shifts/start
func (h *ShiftHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req shiftReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	shift, err := h.Svc.Start(req.EmployeeCID, actor(r), time.Now())
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, shift)
}

// End: POST /shifts/end — returns the closed shift with duration, bill count
// and revenue filled in.
func (h *ShiftHandler) End(w http.ResponseWriter, r *http.Request) {
	var req shiftReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	shift, err := h.Svc.End(req.EmployeeCID, actor(r), time.Now())
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shift)
}

// List: GET /shifts?employee=&open=1
func (h *ShiftHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("open") == "1" {
		shifts, err := h.Svc.Open()
		if err != nil {
			writeErr(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"items": shifts, "count": len(shifts)})
		return
	}
	shifts, err := h.Svc.Recent(r.URL.Query().Get("employee"), 0)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": shifts, "count": len(shifts)})
}
