package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/hookguard/hookguard/internal/api/http"
	auth "github.com/hookguard/hookguard/internal/auth/middleware"
	"github.com/hookguard/hookguard/internal/cert"
	"github.com/hookguard/hookguard/internal/config"
	"github.com/hookguard/hookguard/internal/db"
	"github.com/hookguard/hookguard/internal/rbac"
	"github.com/hookguard/hookguard/internal/storage"
	syncx "github.com/hookguard/hookguard/internal/sync"
	"github.com/hookguard/hookguard/internal/training"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := training.NewSQLStore(dbh, cfg.DBDriver)
	events := syncx.NewEventRepo(dbh, cfg.SiteID)

	// --- Blob storage + certificate pipeline ---
	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}
	artifacts := cert.NewService(bs)
	gate := training.NewCertificationGate(artifacts, nil)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)
	sessions := api.NewQuizSessions()

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh, auth.LoginOptions{
		AdminUser:     cfg.AdminUser,
		AdminPassHash: cfg.AdminPassHash,
	}))

	// Protected API (JWT → sub/role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Course administration
		pr.With(rbac.Require("course:create")).
			Post("/courses", api.CreateCourseHandler(store))
		pr.With(rbac.Require("course:enroll")).
			Post("/courses/{courseID}/enroll", api.EnrollHandler(store))

		// Learner surface
		pr.With(rbac.Require("course:view")).
			Get("/courses", api.ListCoursesHandler(store))
		pr.With(rbac.Require("course:view")).
			Get("/courses/{courseID}", api.GetCourseHandler(store))
		pr.With(rbac.Require("video:complete")).
			Post("/courses/{courseID}/videos/{videoID}/ended", api.VideoEndedHandler(store, events))

		// Quiz attempt lifecycle
		pr.With(rbac.Require("quiz:attempt")).
			Post("/courses/{courseID}/videos/{videoID}/quiz", api.OpenQuizHandler(store, sessions))
		pr.With(rbac.Require("quiz:attempt")).
			Post("/quiz/{sessionID}/answers", api.SelectAnswerHandler(sessions))
		pr.With(rbac.Require("quiz:attempt")).
			Post("/quiz/{sessionID}/advance", api.AdvanceHandler(store, sessions, events))
		pr.With(rbac.Require("quiz:attempt")).
			Post("/quiz/{sessionID}/restart", api.RestartQuizHandler(sessions))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(store))

		// Certification
		pr.With(rbac.Require("certificate:download")).
			Get("/courses/{courseID}/certificate", api.CertificateHandler(store, gate, bs, events, dbh))

		// Event log export for central reporting
		pr.With(rbac.Require("events:export")).
			Get("/events", api.ListEventsHandler(events))

		// User administration
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
