package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/exoticmods/exoticbill/internal/httpx"
	"github.com/exoticmods/exoticbill/internal/services"
)

type LoyaltyHandler struct {
	Svc *services.LoyaltyService
}

func NewLoyaltyHandler(svc *services.LoyaltyService) *LoyaltyHandler {
	return &LoyaltyHandler{Svc: svc}
}

// Balance: GET /loyalty/{cid}
func (h *LoyaltyHandler) Balance(w http.ResponseWriter, r *http.Request) {
	acct, err := h.Svc.Balance(chi.URLParam(r, "cid"))
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, acct)
}

// Adjust: POST /loyalty/{cid}/adjust — body {"delta": n}
func (h *LoyaltyHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	acct, err := h.Svc.Adjust(chi.URLParam(r, "cid"), req.Delta, actor(r), time.Now())
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, acct)
}

// Top: GET /loyalty — highest balances first.
func (h *LoyaltyHandler) Top(w http.ResponseWriter, r *http.Request) {
	accts, err := h.Svc.Top(0)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": accts})
}
