package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ashureev/campus-assist/internal/api"
	"github.com/ashureev/campus-assist/internal/catalog"
	"github.com/ashureev/campus-assist/internal/chat"
	"github.com/ashureev/campus-assist/internal/config"
	"github.com/ashureev/campus-assist/internal/identity"
	"github.com/ashureev/campus-assist/internal/middleware"
	"github.com/ashureev/campus-assist/internal/store"
	"github.com/ashureev/campus-assist/web"
)

type routerDeps struct {
	cfg      *config.Config
	repo     store.Repository
	catalog  *catalog.Catalog
	sessions *chat.SessionManager
	chat     *chat.Service
	limiter  *chat.RateLimiter
}

func newRouter(d routerDeps) http.Handler {
	baseHandler := api.NewHandler(d.repo, d.catalog, d.sessions, d.cfg)
	campusHandler := api.NewCampusHandler(baseHandler)
	healthHandler := api.NewHealthHandler(d.repo, d.sessions)
	chatHandler := chat.NewHandler(d.chat, d.limiter, d.cfg.Chat.MaxRequestBodySize)
	wsHandler := chat.NewWebSocketHandler(d.chat, d.repo, d.limiter, d.cfg.FrontendURL, d.cfg.IsDevelopment())

	origins := []string{"*"}
	if d.cfg.FrontendURL != "" {
		origins = []string{d.cfg.FrontendURL}
	}

	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(origins))

	// Public routes. Readiness must not depend on the visitor store write path.
	healthHandler.RegisterHealth(r)

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(d.repo, d.cfg.IsDevelopment()))

		campusHandler.RegisterRoutes(r)
		chatHandler.RegisterRoutes(r)

		// WebSocket endpoint.
		r.Get("/ws/chat", wsHandler.ServeHTTP)
	})

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	return r
}
