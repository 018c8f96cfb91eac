package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/exoticmods/exoticbill/internal/models"
)

func TestMembershipPurchaseThenDiscountedRepair(t *testing.T) {
	h, _ := setupAPITest(t)

	purchase := `{"employee_cid":"E1","customer_cid":"C9","tier":"Tier1"}`
	req := httptest.NewRequest(http.MethodPost, "/memberships", strings.NewReader(purchase))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("purchase failed: %d %s", w.Code, w.Body.String())
	}

	getReq := httptest.NewRequest(http.MethodGet, "/memberships/C9", nil)
	getW := httptest.NewRecorder()
	h.ServeHTTP(getW, getReq)
	if getW.Code != http.StatusOK {
		t.Fatalf("current membership: %d", getW.Code)
	}
	var m models.Membership
	if err := json.Unmarshal(getW.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Tier != models.TierOne {
		t.Fatalf("tier = %s", m.Tier)
	}

	// Tier1 grants 20% off repairs: 1450 → 1160.
	repair := `{"employee_cid":"E1","customer_cid":"C9","type":"REPAIR","repair_kind":"normal","base_amount":1000}`
	repReq := httptest.NewRequest(http.MethodPost, "/bills", strings.NewReader(repair))
	repW := httptest.NewRecorder()
	h.ServeHTTP(repW, repReq)
	if repW.Code != http.StatusCreated {
		t.Fatalf("repair failed: %d %s", repW.Code, repW.Body.String())
	}
	var bill models.Bill
	if err := json.Unmarshal(repW.Body.Bytes(), &bill); err != nil {
		t.Fatalf("decode bill: %v", err)
	}
	if bill.Total < 1159.99 || bill.Total > 1160.01 {
		t.Fatalf("discounted total = %v, want 1160", bill.Total)
	}
}

func TestRacerPurchaseRecordsNothing(t *testing.T) {
	h, db := setupAPITest(t)

	purchase := `{"employee_cid":"E1","customer_cid":"C10","tier":"Racer"}`
	req := httptest.NewRequest(http.MethodPost, "/memberships", strings.NewReader(purchase))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("racer purchase: %d %s", w.Code, w.Body.String())
	}
	var bills int64
	if err := db.Model(&models.Bill{}).Count(&bills).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if bills != 0 {
		t.Fatalf("racer purchase recorded %d bills", bills)
	}
}

func TestShiftEndpoints(t *testing.T) {
	h, _ := setupAPITest(t)

	start := `{"employee_cid":"E1"}`
	req := httptest.NewRequest(http.MethodPost, "/shifts/start", strings.NewReader(start))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("start: %d %s", w.Code, w.Body.String())
	}

	// Starting twice conflicts.
	req2 := httptest.NewRequest(http.MethodPost, "/shifts/start", strings.NewReader(start))
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, req2)
	if w2.Code != http.StatusConflict {
		t.Fatalf("second start: %d", w2.Code)
	}

	endReq := httptest.NewRequest(http.MethodPost, "/shifts/end", strings.NewReader(start))
	endW := httptest.NewRecorder()
	h.ServeHTTP(endW, endReq)
	if endW.Code != http.StatusOK {
		t.Fatalf("end: %d %s", endW.Code, endW.Body.String())
	}
	var closed models.Shift
	if err := json.Unmarshal(endW.Body.Bytes(), &closed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if closed.EndedAt == nil {
		t.Fatal("shift not closed")
	}
}
