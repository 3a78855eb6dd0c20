package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leadhawk/prospect-sync/internal/admin"
	"github.com/leadhawk/prospect-sync/internal/broker"
	"github.com/leadhawk/prospect-sync/internal/config"
	"github.com/leadhawk/prospect-sync/internal/db"
	"github.com/leadhawk/prospect-sync/internal/gateway"
	"github.com/leadhawk/prospect-sync/internal/handlers"
	"github.com/leadhawk/prospect-sync/internal/snapshot"
	syncer "github.com/leadhawk/prospect-sync/internal/sync"
)

func main() {
	cfg := config.Load()

	logger := config.InitLogger(cfg.LogLevel)
	slog.Info("starting", "port", cfg.Port, "backend", cfg.BackendBaseURL, "mongo_db", cfg.MongoDB)

	gw := gateway.New(cfg.BackendBaseURL, gateway.StaticToken(cfg.BackendToken), nil, logger)

	// one-off admin job, exits without serving HTTP
	task := flag.String("task", "", "admin task: seed")
	flag.Parse()
	if *task != "" {
		switch *task {
		case "seed":
			if err := admin.SeedCompanies(context.Background(), gw, slog.Default()); err != nil {
				slog.Error("seed_failed", "err", err)
				os.Exit(1)
			}
			slog.Info("seed_done")
			return
		default:
			slog.Error("unknown_admin_task", "task", *task)
			os.Exit(2)
		}
	}

	client, err := db.NewMongoClient(cfg.MongoURI)
	if err != nil {
		log.Fatalf("mongo connect error: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	pub, err := broker.NewPublisher(cfg.RabbitURI, cfg.RabbitQueue)
	if err != nil {
		log.Fatalf("rabbitmq connect error: %v", err)
	}
	defer pub.Close()

	snapshots := snapshot.NewStore(client.Database(cfg.MongoDB))

	sessions := handlers.NewSessions(func() handlers.Syncer {
		return syncer.New(gw, pub, snapshots, logger)
	})
	h := handlers.NewCompanyHandler(sessions)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/api/companies", h.Companies)
	mux.HandleFunc("/api/companies/", h.CompanyByID)
	mux.HandleFunc("/api/emails", h.Emails)
	mux.HandleFunc("/api/emails/", h.EmailByID)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           logMiddleware(mux),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("graceful shutdown error", "err", err)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("http_request",
			"method", r.Method, "path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
