package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/exoticmods/exoticbill/internal/billing"
	"github.com/exoticmods/exoticbill/internal/httpx"
	"github.com/exoticmods/exoticbill/internal/models"
	"github.com/exoticmods/exoticbill/internal/services"
)

type MembershipHandler struct {
	Engine *billing.Engine
	Svc    *services.MembershipService
}

func NewMembershipHandler(engine *billing.Engine, svc *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{Engine: engine, Svc: svc}
}

// Purchase: POST /memberships — a membership sale goes through the rule
// engine like any other bill (zero commission, replaces any prior active
// membership for the customer).
func (h *MembershipHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeCID string `json:"employee_cid"`
		CustomerCID string `json:"customer_cid"`
		Tier        string `json:"tier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	bill, err := h.Engine.SaveBill(billing.SaleInput{
		EmployeeCID: req.EmployeeCID,
		CustomerCID: req.CustomerCID,
		Type:        models.BillMembership,
		Tier:        models.Tier(req.Tier),
	}, time.Now())
	if err != nil {
		writeErr(w, err)
		return
	}
	if bill == nil {
		httpx.JSON(w, http.StatusOK, map[string]any{"recorded": false, "tier": req.Tier})
		return
	}
	httpx.JSON(w, http.StatusCreated, bill)
}

// Current: GET /memberships/{cid} — sweeps, then reads.
func (h *MembershipHandler) Current(w http.ResponseWriter, r *http.Request) {
	m, err := h.Svc.Current(chi.URLParam(r, "cid"), time.Now())
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

// History: GET /memberships/{cid}/history
func (h *MembershipHandler) History(w http.ResponseWriter, r *http.Request) {
	hist, err := h.Svc.History(chi.URLParam(r, "cid"))
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": hist, "count": len(hist)})
}
