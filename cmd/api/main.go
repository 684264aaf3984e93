package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/hdmotors/dealer-service/internal/config"
	"github.com/hdmotors/dealer-service/internal/events"
	"github.com/hdmotors/dealer-service/internal/handler"
	"github.com/hdmotors/dealer-service/internal/integrations/bookvalue"
	"github.com/hdmotors/dealer-service/internal/integrations/capture"
	"github.com/hdmotors/dealer-service/internal/middleware"
	"github.com/hdmotors/dealer-service/internal/models"
	"github.com/hdmotors/dealer-service/internal/repository"
	"github.com/hdmotors/dealer-service/internal/service"
	"github.com/hdmotors/dealer-service/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	captureClient := capture.NewClient(cfg, logger)
	svc := service.NewService(repo, captureClient, logger, cfg)
	h := handler.NewHandler(svc, logger)
	bookClient := bookvalue.NewClient(cfg, logger)

	// Realtime change stream: keep a live inventory snapshot current as the
	// store pushes row changes.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	inventory := events.NewStore(func(v models.Vehicle) int64 { return v.ID })
	if snapshot, err := repo.UnsoldInventory(); err != nil {
		logger.Warnf("Initial inventory fetch failed: %v", err)
	} else {
		inventory.Reset(snapshot)
	}
	listener, err := events.NewListener(cfg.DBConn, cfg.ChangeChannel, logger)
	if err != nil {
		logger.Warnf("Change listener unavailable, snapshots update on fetch only: %v", err)
	} else {
		go listener.Run(ctx)
		go applyInventoryChanges(listener.Changes(), inventory, logger)
	}

	// Nightly digest email
	mailer := email.NewSender(cfg, logger)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.DigestSchedule, func() {
		text, err := svc.DigestText()
		if err != nil {
			logger.Errorf("Failed to build nightly digest: %v", err)
			return
		}
		if err := mailer.SendDailyDigest(time.Now(), text); err != nil {
			logger.Errorf("Failed to send nightly digest: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule digest job: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/api").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/collections/weekly", h.CollectionsWeekly).Methods("GET")
	authRouter.HandleFunc("/collections/summary", h.CollectionsSummary).Methods("GET")
	authRouter.HandleFunc("/daily-log", h.LogDaily).Methods("POST")
	authRouter.HandleFunc("/amortization/quote", h.Quote).Methods("POST")
	authRouter.HandleFunc("/report-digest", h.ReportDigest).Methods("GET")
	authRouter.HandleFunc("/export/collections.csv", h.CollectionsCSV).Methods("GET")
	authRouter.HandleFunc("/export-sales-report", h.ExportSalesReport).Methods("POST")
	authRouter.HandleFunc("/shortcut-screenshot", h.Screenshot).Methods("POST")
	// Live inventory snapshot, kept current by the change stream
	authRouter.HandleFunc("/inventory", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(inventory.Snapshot())
	}).Methods("GET")
	// Book value lookup endpoint
	authRouter.HandleFunc("/book-value", func(w http.ResponseWriter, r *http.Request) {
		valuation, err := bookClient.Lookup(r.URL.Query().Get("vin"))
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get book value: %v", err), http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(valuation)
	}).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}

// applyInventoryChanges folds vehicle change events into the snapshot store.
// Changes for other tables are ignored.
func applyInventoryChanges(changes <-chan events.Change, store *events.Store[models.Vehicle], logger *logrus.Logger) {
	for c := range changes {
		if c.Table != "vehicles" {
			continue
		}
		var v models.Vehicle
		if c.Kind != events.Delete {
			if err := json.Unmarshal(c.Entity, &v); err != nil {
				logger.Warnf("Dropping undecodable vehicle change %d: %v", c.ID, err)
				continue
			}
		}
		store.Apply(c.Kind, c.ID, v)
	}
}
