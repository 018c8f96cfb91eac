package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/exoticmods/exoticbill/internal/billing"
	"github.com/exoticmods/exoticbill/internal/httpx"
	"github.com/exoticmods/exoticbill/internal/models"
	"github.com/exoticmods/exoticbill/internal/services"
)

type BillHandler struct {
	Engine *billing.Engine
	Admin  *services.BillAdminService
}

func NewBillHandler(engine *billing.Engine, admin *services.BillAdminService) *BillHandler {
	return &BillHandler{Engine: engine, Admin: admin}
}

type saveBillReq struct {
	EmployeeCID string         `json:"employee_cid"`
	CustomerCID string         `json:"customer_cid"`
	Type        string         `json:"type"`
	Items       map[string]int `json:"items,omitempty"`
	BaseAmount  float64        `json:"base_amount,omitempty"`
	RepairKind  string         `json:"repair_kind,omitempty"`
	PartsCount  int            `json:"parts_count,omitempty"`
	Tier        string         `json:"tier,omitempty"`
}

// Create: POST /bills — runs the rule engine for one sale.
func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req saveBillReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in := billing.SaleInput{
		EmployeeCID: req.EmployeeCID,
		CustomerCID: req.CustomerCID,
		Type:        models.BillType(req.Type),
		Items:       req.Items,
		BaseAmount:  req.BaseAmount,
		RepairKind:  billing.RepairKind(req.RepairKind),
		PartsCount:  req.PartsCount,
		Tier:        models.Tier(req.Tier),
	}
	bill, err := h.Engine.SaveBill(in, time.Now())
	if err != nil {
		writeErr(w, err)
		return
	}
	if bill == nil {
		// Racer membership: free, nothing recorded.
		httpx.JSON(w, http.StatusOK, map[string]any{"recorded": false})
		return
	}
	httpx.JSON(w, http.StatusCreated, bill)
}

// List: GET /bills?employee=&customer=&limit=
func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	bills, err := h.Admin.List(r.URL.Query().Get("employee"), r.URL.Query().Get("customer"), limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": bills, "count": len(bills)})
}

// Delete: DELETE /bills/{id} — soft delete with audit.
func (h *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_bill_id", nil)
		return
	}
	if err := h.Admin.Delete(uint(id), actor(r), time.Now()); err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// ListDeleted: GET /bills/deleted
func (h *BillHandler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	bills, err := h.Admin.Deleted(0)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": bills, "count": len(bills)})
}

// Reset: POST /bills/reset — destructive, gated behind an explicit flag.
func (h *BillHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := h.Admin.Reset(req.Confirm, actor(r)); err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"reset": true})
}

// Summary: GET /summary?from=&to=
func (h *BillHandler) Summary(w http.ResponseWriter, r *http.Request) {
	from, to, err := timeWindow(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	sum, err := h.Engine.Summary(from, to)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}

// EmployeeSummary: GET /employees/{cid}/summary
func (h *BillHandler) EmployeeSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := timeWindow(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	sum, err := h.Engine.EmployeeSummary(chi.URLParam(r, "cid"), from, to)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}

// HoodLeaderboard: GET /summary/hoods
func (h *BillHandler) HoodLeaderboard(w http.ResponseWriter, r *http.Request) {
	from, to, err := timeWindow(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	rows, err := h.Engine.HoodLeaderboard(from, to)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": rows})
}
