package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/exoticmods/exoticbill/internal/config"
	"github.com/exoticmods/exoticbill/internal/models"
	"github.com/exoticmods/exoticbill/internal/server"
)

func setupAPITest(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Bill{}, &models.DeletedBill{}, &models.Employee{}, &models.Hood{},
		&models.Membership{}, &models.MembershipHistory{}, &models.Item{},
		&models.LoyaltyAccount{}, &models.Shift{}, &models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	emp := models.Employee{CID: "E1", Name: "Vik", Rank: models.RankManager, Hood: models.DefaultHood}
	if err := db.Create(&emp).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	nos := models.Item{Name: "NOS", UnitPrice: 1500, Stock: 5}
	if err := db.Create(&nos).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return server.New(db, config.Config{LoyaltyEarnPerRs: 100}), db
}

func TestBillCreateAndListJSON(t *testing.T) {
	h, _ := setupAPITest(t)

	body := `{"employee_cid":"E1","customer_cid":"C1","type":"ITEMS","items":{"NOS":2}}`
	req := httptest.NewRequest(http.MethodPost, "/bills", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created models.Bill
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Total != 3000 || created.Commission != 0 {
		t.Fatalf("unexpected figures: %+v", created)
	}
	if created.Reference == "" {
		t.Fatal("missing bill reference")
	}

	listReq := httptest.NewRequest(http.MethodGet, "/bills?employee=E1", nil)
	listW := httptest.NewRecorder()
	h.ServeHTTP(listW, listReq)
	if listW.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", listW.Code)
	}
	var list struct {
		Items []models.Bill `json:"items"`
		Count int           `json:"count"`
	}
	if err := json.Unmarshal(listW.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Count != 1 || len(list.Items) != 1 {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestBillCreateRejectsOverstock(t *testing.T) {
	h, db := setupAPITest(t)

	body := `{"employee_cid":"E1","type":"ITEMS","items":{"NOS":99}}`
	req := httptest.NewRequest(http.MethodPost, "/bills", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
	var stock models.Item
	if err := db.Where("name = ?", "NOS").First(&stock).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	if stock.Stock != 5 {
		t.Fatalf("rejected sale mutated stock: %d", stock.Stock)
	}
}

func TestBillDeleteIsSoft(t *testing.T) {
	h, db := setupAPITest(t)

	body := `{"employee_cid":"E1","type":"REPAIR","repair_kind":"normal","base_amount":1000}`
	req := httptest.NewRequest(http.MethodPost, "/bills", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
	}
	var created models.Bill
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	delReq := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/bills/%d", created.ID), nil)
	delReq.Header.Set("X-Actor", "boss")
	delW := httptest.NewRecorder()
	h.ServeHTTP(delW, delReq)
	if delW.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", delW.Code, delW.Body.String())
	}

	var tomb models.DeletedBill
	if err := db.Where("bill_id = ?", created.ID).First(&tomb).Error; err != nil {
		t.Fatalf("tombstone missing: %v", err)
	}
	if tomb.DeletedBy != "boss" {
		t.Fatalf("deleter = %q", tomb.DeletedBy)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	h, _ := setupAPITest(t)

	body := `{"employee_cid":"E1","type":"UPGRADES","base_amount":1000}`
	req := httptest.NewRequest(http.MethodPost, "/bills", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
	}

	sumReq := httptest.NewRequest(http.MethodGet, "/summary", nil)
	sumW := httptest.NewRecorder()
	h.ServeHTTP(sumW, sumReq)
	if sumW.Code != http.StatusOK {
		t.Fatalf("summary failed: %d", sumW.Code)
	}
	var sum struct {
		Bills   int64   `json:"bills"`
		Revenue float64 `json:"revenue"`
	}
	if err := json.Unmarshal(sumW.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Bills != 1 || sum.Revenue != 1500 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestHealthEndpoints(t *testing.T) {
	h, _ := setupAPITest(t)
	for _, path := range []string{"/health", "/healthz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s returned %d", path, w.Code)
		}
	}
}
