package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/exoticmods/exoticbill/internal/httpx"
	"github.com/exoticmods/exoticbill/internal/models"
)

// ItemHandler keeps catalog admin DB-side logic local, the way the simpler
// CRUD surfaces do. Stock-affecting sales go through the billing engine, not
// through here.
type ItemHandler struct {
	DB *gorm.DB
}

func NewItemHandler(db *gorm.DB) *ItemHandler {
	return &ItemHandler{DB: db}
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	var items []models.Item
	if err := h.DB.Order("name").Find(&items).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_items", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// Create: POST /items — add a catalog entry.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string  `json:"name"`
		UnitPrice float64 `json:"unit_price"`
		Stock     int     `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.UnitPrice <= 0 || req.Stock < 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"name": "required", "unit_price": "positive", "stock": "non-negative"})
		return
	}
	var count int64
	if err := h.DB.Model(&models.Item{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "item_already_exists", nil)
		return
	}
	item := models.Item{Name: req.Name, UnitPrice: req.UnitPrice, Stock: req.Stock}
	if err := h.DB.Create(&item).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_item", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

// Restock: POST /items/{name}/restock — body {"quantity": n, "mode": "add"|"set"}
func (h *ItemHandler) Restock(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req struct {
		Quantity int    `json:"quantity"`
		Mode     string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.Mode == "" {
		req.Mode = "add"
	}
	if req.Quantity < 0 || (req.Mode == "add" && req.Quantity == 0) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"quantity": "non-negative"})
		return
	}
	var item models.Item
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", name).First(&item).Error; err != nil {
			return err
		}
		switch req.Mode {
		case "add":
			item.Stock += req.Quantity
		case "set":
			item.Stock = req.Quantity
		default:
			return gorm.ErrInvalidData
		}
		return tx.Save(&item).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "item_not_found", nil)
			return
		}
		if errors.Is(err, gorm.ErrInvalidData) {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_restock_mode", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_restock", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// UpdatePrice: POST /items/{name}/price — body {"unit_price": n}
func (h *ItemHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req struct {
		UnitPrice float64 `json:"unit_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.UnitPrice <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"unit_price": "positive"})
		return
	}
	res := h.DB.Model(&models.Item{}).Where("name = ?", name).Update("unit_price", req.UnitPrice)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_price", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "item_not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"name": name, "unit_price": req.UnitPrice})
}
