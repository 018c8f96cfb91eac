package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/exoticmods/exoticbill/internal/config"
	"github.com/exoticmods/exoticbill/internal/db"
	"github.com/exoticmods/exoticbill/internal/server"
	"github.com/exoticmods/exoticbill/internal/services"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	dbConn, err := db.ConnectAndMigrate(cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if *migrateOnlyFlag {
		log.Println("migrations completed; exiting as requested")
		return
	}
	log.Printf("Starting server env=%s port=%s db=%s", cfg.Env, cfg.Port, cfg.DatabasePath)

	// Expired memberships must be swept before any membership-dependent read.
	memberships := services.NewMembershipService(dbConn)
	if err := memberships.SweepExpired(time.Now()); err != nil {
		log.Fatalf("membership sweep failed: %v", err)
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: server.New(dbConn, cfg)}

	// Periodic sweep so memberships expire on time even with no traffic.
	// Every read path sweeps as well; this just keeps the table tidy.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := memberships.SweepExpired(time.Now()); err != nil {
					log.Printf("periodic membership sweep: %v", err)
				}
			case <-sweepDone:
				return
			}
		}
	}()

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")
	close(sweepDone)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
