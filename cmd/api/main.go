package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"libraryapi/internal/circulation"
	"libraryapi/internal/config"
	apphttp "libraryapi/internal/http"
	"libraryapi/internal/notify"
	"libraryapi/internal/overdue"
	"libraryapi/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	dbPool := mustOpenDB(cfg.DatabaseDSN)
	defer dbPool.Close()

	pg := store.NewPG(dbPool)
	notifier := notify.NewLogNotifier()
	service := circulation.NewService(pg, circulation.ClockFunc(time.Now), circulation.Config{
		MaxBorrowLimit: cfg.MaxBorrowLimit,
		BorrowDays:     cfg.BorrowDays,
		FinePerDay:     cfg.FinePerDay,
	}, notifier)

	scanner := overdue.NewScanner(service, notifier, cfg.OverdueCronSpec)
	if err := scanner.Start(); err != nil {
		log.Fatalf("overdue scanner: %v", err)
	}
	defer scanner.Stop()

	borrowHandler := apphttp.NewBorrowHandler(service)
	authHandler := apphttp.NewAuthHandler(pg.Users(), cfg.JWTSecret)

	router := http.NewServeMux()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := dbPool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("/auth/login", authHandler.Login)

	authed := apphttp.AuthMiddleware(cfg.JWTSecret)

	borrowMux := newBorrowMux(borrowHandler)

	router.Handle("/borrows", authed(borrowMux))
	router.Handle("/borrows/", authed(borrowMux))
	router.Handle("/me/", authed(borrowMux))
	router.Handle("/users/", authed(borrowMux))

	rateLimit := apphttp.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)
	handler := apphttp.RequestIDMiddleware(apphttp.AccessLogMiddleware(rateLimit.Middleware(router)))

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting server on %s", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func requireMethod(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func newBorrowMux(h *apphttp.BorrowHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/borrows", requireMethod(http.MethodPost, h.Create))
	mux.HandleFunc("/borrows/return", requireMethod(http.MethodPut, h.Return))
	mux.HandleFunc("/borrows/", requireMethod(http.MethodGet, h.Fine))
	mux.HandleFunc("/me/borrows", requireMethod(http.MethodGet, h.ListMine))
	mux.HandleFunc("/users/", requireMethod(http.MethodGet, h.ListForUser))
	return mux
}

func mustOpenDB(dsn string) *pgxpool.Pool {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("cannot create db pool: %v", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Fatalf("cannot ping database (%s): %v", redactDSN(dsn), err)
	}
	log.Println("database connection OK")
	return pool
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
