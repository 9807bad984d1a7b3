package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"notes-api/config"
	"notes-api/db"
	"notes-api/handlers"
	appmw "notes-api/middleware"
)

func newRouter(store db.NoteStore, cfg config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(appmw.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(appmw.CORS(cfg.AllowedOrigins))

	h := handlers.NewNoteHandler(store, logger)
	r.Get("/healthz", h.Health)
	h.Routes(r)

	return r
}
