package api

import (
	"net/http"

	"github.com/Yishiba/animeko/internal/api/presenter"
	"github.com/Yishiba/animeko/internal/buildinfo"
)

type AboutResponse struct {
	buildinfo.Info
	Providers []string `json:"providers"`
}

// handleHealth responds with a simple OK status to indicate the server is healthy.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleAbout responds with service information and the configured identity providers.
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, AboutResponse{
		Info:      buildinfo.GetBuildInfo(),
		Providers: s.sessions.Providers(),
	}, http.StatusOK)
}
