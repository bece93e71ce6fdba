package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/medlens-ai/medlens/internal/api/handlers"
	appMiddleware "github.com/medlens-ai/medlens/internal/api/middlewares"
	"github.com/medlens-ai/medlens/internal/config"
	"github.com/medlens-ai/medlens/internal/core"
	"github.com/medlens-ai/medlens/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        *logrus.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, users *services.UserService, reports *services.ReportService, chat *services.ChatService, log *logrus.Logger) *Server {
	authHandler := handlers.NewAuthHandler(users, cfg.JWTSecret)
	sessionHandler := handlers.NewSessionHandler(db, log)
	reportHandler := handlers.NewReportHandler(db, reports, cfg.MaxUploadMB, log)
	chatHandler := handlers.NewChatHandler(db, chat, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))

			protected.Post("/sessions", sessionHandler.Create)
			protected.Get("/sessions", sessionHandler.List)
			protected.Get("/sessions/{session_id}/messages", sessionHandler.Messages)
			protected.Delete("/sessions/{session_id}", sessionHandler.Delete)

			protected.Post("/chat-messages", chatHandler.CreateMessage)
			protected.Post("/chat-messages/contextual", chatHandler.ContextualResponse)

			protected.Post("/medical-reports/upload/{session_id}", reportHandler.Upload)
			protected.Get("/medical-reports/{session_id}", reportHandler.Get)
			protected.Delete("/medical-reports/{session_id}", reportHandler.Delete)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, log: log}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	s.log.Infof("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
