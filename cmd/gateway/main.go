package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/gradewise/gradewise-backend/internal/api/http"
	"github.com/gradewise/gradewise-backend/internal/attendance"
	"github.com/gradewise/gradewise-backend/internal/audit"
	auth "github.com/gradewise/gradewise-backend/internal/auth/middleware"
	"github.com/gradewise/gradewise-backend/internal/config"
	"github.com/gradewise/gradewise-backend/internal/db"
	"github.com/gradewise/gradewise-backend/internal/rbac"
	"github.com/gradewise/gradewise-backend/internal/roster"
	"github.com/gradewise/gradewise-backend/internal/scoreconfig"
	"github.com/gradewise/gradewise-backend/internal/scores"
	"github.com/gradewise/gradewise-backend/internal/transcript"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	// --- Stores ---
	rosterStore := roster.NewSQLStore(dbh)
	attStore := attendance.NewSQLStore(dbh)
	cfgStore := scoreconfig.NewSQLStore(dbh)
	scoreStore := scores.NewSQLStore(dbh)
	transStore := transcript.NewSQLStore(dbh)
	events := audit.NewLog(dbh)

	// --- Services ---
	attSvc := attendance.NewService(attStore, rosterStore, events,
		attendance.WithTokenTTL(cfg.TokenTTL),
		attendance.WithGraceOffset(cfg.GraceOffset),
	)
	aggregator := attendance.NewAggregator(attStore, rosterStore)
	registry := scoreconfig.NewRegistry(cfgStore, events)
	workflow := scores.NewWorkflow(scoreStore, aggregator, registry, rosterStore, events)
	transcripts := transcript.NewBuilder(transStore)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.EnableLocalAuth))

		// Attendance sessions
		pr.With(rbac.Require("session:create")).
			Post("/sessions", api.CreateSessionHandler(attSvc))
		pr.With(rbac.Require("attendance:checkin")).
			Post("/attendance/checkin", api.CheckInHandler(attSvc))
		pr.With(rbac.Require("attendance:mark")).
			Post("/sessions/{sessionID}/records", api.ManualMarkHandler(attSvc))
		pr.With(rbac.Require("session:finalize")).
			Post("/sessions/{sessionID}/finalize", api.FinalizeSessionHandler(attSvc))
		pr.With(rbac.Require("session:reopen")).
			Post("/sessions/{sessionID}/reopen", api.ReopenSessionHandler(attSvc))
		pr.With(rbac.Require("session:list")).
			Get("/sessions/{sessionID}/records", api.ListRecordsHandler(attSvc))

		// Attendance roll-ups
		pr.With(rbac.Require("attendance:aggregate")).
			Get("/attendance/percentage", api.AttendancePercentageHandler(aggregator))
		pr.With(rbac.Require("attendance:aggregate")).
			Get("/attendance/class-aggregate", api.ClassAggregateHandler(aggregator))

		// Weight configuration
		pr.With(rbac.Require("config:update")).
			Put("/score-config", api.UpdateConfigHandler(registry))
		pr.With(rbac.RequireAny("config:view", "config:update")).
			Get("/score-config", api.GetConfigHandler(registry))

		// Score sheet workflow
		pr.With(rbac.Require("scores:edit")).
			Post("/score-sessions", api.InitScoreSessionHandler(workflow))
		pr.With(rbac.RequireAny("scores:edit", "scores:view")).
			Get("/score-sessions/{scoreSessionID}", api.GetScoreSessionHandler(workflow))
		pr.With(rbac.Require("scores:edit")).
			Put("/score-sessions/{scoreSessionID}/scores", api.BatchUpsertScoresHandler(workflow))
		pr.With(rbac.Require("scores:edit")).
			Post("/score-sessions/{scoreSessionID}/recalculate", api.RecalculateHandler(workflow))
		pr.With(rbac.Require("scores:submit")).
			Post("/score-sessions/{scoreSessionID}/submit", api.SubmitScoresHandler(workflow))
		pr.With(rbac.Require("scores:review")).
			Post("/score-sessions/{scoreSessionID}/review", api.ReviewScoresHandler(workflow))
		pr.With(rbac.Require("scores:reopen")).
			Post("/score-sessions/{scoreSessionID}/reopen", api.ReopenScoresHandler(workflow))

		// Transcripts (own-or-all enforced inside the handler)
		pr.With(rbac.RequireAny("transcript:view-own", "transcript:view-all")).
			Get("/transcripts/{studentID}", api.GetTranscriptHandler(transcripts))

		// Roster mirror (staff/admin)
		pr.With(rbac.Require("roster:manage")).
			Post("/roster/schedules/bulk", api.BulkUpsertSchedulesHandler(rosterStore))
		pr.With(rbac.Require("roster:manage")).
			Post("/roster/enrollments/bulk", api.BulkUpsertEnrollmentsHandler(rosterStore))

		// Users
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("users:update_role")).
			Patch("/users/{userID}/role", api.AdminUpdateUserRoleHandler(dbh))
		pr.Post("/users/change-password", api.ChangePasswordHandler(dbh))

		// Admin compliance surface
		pr.With(rbac.Require("admin:compliance")).
			Post("/admin/pii/export", api.HandleAdminPIIExport(dbh))
		pr.With(rbac.Require("admin:compliance")).
			Post("/admin/pii/delete", api.HandleAdminPIIDelete(dbh))
		pr.With(rbac.Require("admin:audit")).
			Get("/admin/audit", api.HandleAdminAuditSearch(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
