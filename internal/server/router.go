package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"github.com/exoticmods/exoticbill/internal/billing"
	"github.com/exoticmods/exoticbill/internal/config"
	"github.com/exoticmods/exoticbill/internal/handlers"
	"github.com/exoticmods/exoticbill/internal/httpx"
	"github.com/exoticmods/exoticbill/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	audit := services.NewAuditRecorder(db)
	memberships := services.NewMembershipService(db)
	engine := billing.NewEngine(db, memberships, cfg.LoyaltyEarnPerRs)
	billAdmin := services.NewBillAdminService(db, audit)
	employees := services.NewEmployeeService(db, audit)
	shifts := services.NewShiftService(db, audit)
	loyalty := services.NewLoyaltyService(db, audit)

	bh := handlers.NewBillHandler(engine, billAdmin)
	eh := handlers.NewEmployeeHandler(employees)
	ih := handlers.NewItemHandler(db)
	mh := handlers.NewMembershipHandler(engine, memberships)
	sh := handlers.NewShiftHandler(shifts)
	lh := handlers.NewLoyaltyHandler(loyalty)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- Health endpoints ---
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Lightweight DB check (SELECT 1) – detailed errors stay out of the body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/bills", func(r chi.Router) {
		r.Get("/", bh.List)
		r.Post("/", bh.Create)
		r.Get("/deleted", bh.ListDeleted)
		r.Post("/reset", bh.Reset)
		r.Delete("/{id}", bh.Delete)
	})

	r.Get("/summary", bh.Summary)
	r.Get("/summary/hoods", bh.HoodLeaderboard)

	r.Route("/employees", func(r chi.Router) {
		r.Get("/", eh.List)
		r.Post("/", eh.Create)
		r.Get("/{cid}", eh.Get)
		r.Put("/{cid}", eh.Update)
		r.Delete("/{cid}", eh.Delete)
		r.Get("/{cid}/summary", bh.EmployeeSummary)
	})

	r.Route("/hoods", func(r chi.Router) {
		r.Get("/", eh.ListHoods)
		r.Post("/", eh.CreateHood)
	})

	r.Route("/items", func(r chi.Router) {
		r.Get("/", ih.List)
		r.Post("/", ih.Create)
		r.Post("/{name}/restock", ih.Restock)
		r.Post("/{name}/price", ih.UpdatePrice)
	})

	r.Route("/memberships", func(r chi.Router) {
		r.Post("/", mh.Purchase)
		r.Get("/{cid}", mh.Current)
		r.Get("/{cid}/history", mh.History)
	})

	r.Route("/shifts", func(r chi.Router) {
		r.Get("/", sh.List)
		r.Post("/start", sh.Start)
		r.Post("/end", sh.End)
	})

	r.Route("/loyalty", func(r chi.Router) {
		r.Get("/", lh.Top)
		r.Get("/{cid}", lh.Balance)
		r.Post("/{cid}/adjust", lh.Adjust)
	})

	r.Get("/audit", func(w http.ResponseWriter, _ *http.Request) {
		entries, err := audit.Recent(0)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_audit", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"items": entries})
	})

	return r
}
