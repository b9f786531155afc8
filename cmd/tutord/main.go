package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/kinelab/biomech-tutor/internal/api/http"
	"github.com/kinelab/biomech-tutor/internal/auth"
	"github.com/kinelab/biomech-tutor/internal/config"
	"github.com/kinelab/biomech-tutor/internal/dataset"
	"github.com/kinelab/biomech-tutor/internal/db"
	"github.com/kinelab/biomech-tutor/internal/storage"
	"github.com/kinelab/biomech-tutor/internal/tutor"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- Dataset (loaded once, immutable, shared by all sessions) ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ds, problems, err := loadDataset(ctx, cfg)
	if err != nil {
		log.Fatalf("dataset load failed: %v", err)
	}
	for _, p := range problems {
		log.Printf("data integrity: %s", p)
	}
	log.Printf("dataset loaded: %d sections", len(ds.Sections()))

	ttl := time.Duration(cfg.SessionTTLMin) * time.Minute
	reg := tutor.NewRegistry(ds, ttl)
	reg.StartSweeper(context.Background(), time.Minute)

	tokens := auth.NewTokenService(cfg.SessionSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/api/sessions", api.CreateSessionHandler(reg, tokens, ttl))
	r.Get("/api/sections", api.ListSectionsHandler(ds))

	// Session routes (bearer token → session id in context)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.SessionMiddleware(tokens))
		pr.Get("/api/session", api.GetSessionHandler(reg))
		pr.Post("/api/session/section", api.SelectSectionHandler(reg))
		pr.Post("/api/session/question", api.SelectQuestionHandler(reg))
		pr.Post("/api/session/option", api.SelectOptionHandler(reg))
		pr.Post("/api/session/answer", api.SubmitAnswerHandler(reg))
	})

	bs, err := storage.NewFSStore(cfg.AssetBasePath)
	if err != nil {
		log.Fatalf("asset store: %v", err)
	}
	r.Route("/assets", func(ar chi.Router) {
		api.MountAssets(ar, bs)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	log.Printf("listening on %s (dataset=%s)", cfg.HTTPAddr, cfg.DatasetDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

func loadDataset(ctx context.Context, cfg config.Config) (*dataset.Dataset, []dataset.Problem, error) {
	switch cfg.DatasetDriver {
	case "sqlite", "postgres":
		dbh, err := db.Open(ctx, db.Driver(cfg.DatasetDriver), cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		defer dbh.Close()
		return dataset.LoadSQL(ctx, dbh)
	default:
		return dataset.LoadCSV(cfg.DatasetPath)
	}
}
