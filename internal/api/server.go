package api

import (
	"context"
	"net/http"

	"github.com/Yishiba/animeko/internal/api/middleware"
	"github.com/Yishiba/animeko/internal/core"
	"github.com/Yishiba/animeko/internal/service"
)

// SessionService is the part of service.SessionService served over HTTP.
type SessionService interface {
	Login(ctx context.Context, req service.LoginRequest) (*service.LoginResult, error)
	Authenticate(ctx context.Context, token string) (*core.Claims, error)
	Providers() []string
}

type Server struct {
	sessions SessionService
}

func NewServer(sessions SessionService) *Server {
	return &Server{sessions: sessions}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)

	// session routes
	mux.HandleFunc("POST "+LoginRoute, s.handleLogin)
	mux.Handle("GET "+MeRoute, middleware.RequireSession(s.sessions)(http.HandlerFunc(s.handleMe)))

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				mux)))
}
