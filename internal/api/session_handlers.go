package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Yishiba/animeko/internal/api/middleware"
	"github.com/Yishiba/animeko/internal/api/presenter"
	"github.com/Yishiba/animeko/internal/core"
	"github.com/Yishiba/animeko/internal/service"
)

// maxPayloadBytes bounds request bodies.
const maxPayloadBytes = 64 << 10

type LoginPayload struct {
	// Provider is the configured name of the external identity provider.
	Provider string `json:"provider"`

	// Credential is the external credential. If empty, the bearer token of the request is used.
	Credential string `json:"credential,omitempty"`
}

type LoginResponse struct {
	Token       string      `json:"token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	UserID      core.UserID `json:"user_id"`
	NewUser     bool        `json:"new_user"`
	DisplayName string      `json:"display_name,omitempty"`
}

type MeResponse struct {
	UserID    core.UserID `json:"user_id"`
	Provider  string      `json:"provider,omitempty"`
	Issuer    string      `json:"issuer"`
	Audience  []string    `json:"audience"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
	TokenID   string      `json:"token_id,omitempty"`
}

// DecodePayload strictly decodes a JSON request body into dest.
// A missing Content-Type is treated as JSON; media type parameters such as charset are ignored.
func DecodePayload(r *http.Request, dest any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return fmt.Errorf("parsing content type: %w", err)
		}
		if mediaType != "application/json" {
			return fmt.Errorf("unsupported content type %q", mediaType)
		}
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return err
	}
	// ensure there's no extra data
	if dec.More() {
		return errors.New("extra data in request body")
	}
	return nil
}

// handleLogin exchanges an external credential for a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxPayloadBytes)

	var payload LoginPayload
	if err := DecodePayload(r, &payload); err != nil {
		logger.Warn().Err(err).Msg("failed to decode login payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.Provider == "" {
		presenter.Error(w, r, "provider is required", http.StatusBadRequest)
		return
	}
	if payload.Credential == "" {
		payload.Credential = middleware.BearerToken(r)
	}
	if payload.Credential == "" {
		presenter.Error(w, r, "credential is required", http.StatusUnauthorized)
		return
	}

	res, err := s.sessions.Login(r.Context(), service.LoginRequest{
		Provider:   payload.Provider,
		Credential: payload.Credential,
	})
	if err != nil {
		presenter.Err(w, r, err, "login failed")
		return
	}

	presenter.JSON(w, r, LoginResponse{
		Token:       res.Token.Value,
		TokenType:   "Bearer",
		ExpiresAt:   res.Token.Claims.ExpiresAt,
		UserID:      res.UserID,
		NewUser:     res.NewUser,
		DisplayName: res.DisplayName,
	}, http.StatusCreated)
}

// handleMe returns the claims of the presented session token.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		presenter.Error(w, r, "login required", http.StatusUnauthorized)
		return
	}
	presenter.JSON(w, r, MeResponse{
		UserID:    claims.UserID,
		Provider:  claims.Provider,
		Issuer:    claims.Issuer,
		Audience:  claims.Audience,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
		TokenID:   claims.TokenID,
	}, http.StatusOK)
}
