// Package server assembles the route table and owns the http.Server.
package server

import (
	"context"
	"net/http"

	"moodtrack/internal/auth"
	"moodtrack/internal/config"
	"moodtrack/internal/handlers"
	"moodtrack/internal/web"
)

type Server struct {
	srv *http.Server
}

func New(cfg config.ServerConfig, h *handlers.Handlers, pages *web.Web, a *auth.Auth) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      Routes(h, pages, a),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Routes builds the full mux: the /api surface, the auth endpoints and the
// server-rendered pages.
func Routes(h *handlers.Handlers, pages *web.Web, a *auth.Auth) http.Handler {
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/moods", a.Middleware(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetMoods(w, r)
		case http.MethodPost:
			h.CreateMood(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}, false))

	mux.HandleFunc("/api/moods/detect", a.Middleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.DetectEmotion(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}, false))

	mux.HandleFunc("/api/moods/stats", a.Middleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.GetStats(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}, false))

	mux.HandleFunc("/api/moods/export", a.Middleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.ExportMoods(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}, false))

	mux.HandleFunc("/api/moods/", a.Middleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			h.DeleteMood(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}, false))

	mux.HandleFunc("/api/auth/check", a.Middleware(h.CheckAuth, false))
	mux.HandleFunc("/api/auth/logout", h.Logout)
	mux.HandleFunc("/api/", a.Middleware(h.Root, false))
	mux.HandleFunc("/auth/login", h.Login)

	// Pages
	mux.HandleFunc("/", pages.Dashboard)
	mux.HandleFunc("/add", pages.AddMood)
	mux.HandleFunc("/history", pages.History)
	mux.HandleFunc("/history/delete", pages.DeleteEntry)
	mux.HandleFunc("/stats", pages.Stats)

	return mux
}

func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
