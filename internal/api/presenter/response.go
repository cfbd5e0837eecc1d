package presenter

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/Yishiba/animeko/internal/core"
	"github.com/Yishiba/animeko/internal/logging"
)

// RetryAfterSeconds is suggested to clients when a provider is unavailable.
const RetryAfterSeconds = 5

type ErrorResponse struct {
	Error         string    `json:"error"`
	Kind          core.Kind `json:"kind,omitempty"`
	Retryable     bool      `json:"retryable,omitempty"`
	CorrelationID string    `json:"correlation_id"`
}

func JSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write json response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, msg string, status int) {
	JSON(w, r, ErrorResponse{
		Error:         msg,
		CorrelationID: logging.CorrelationID(r.Context()),
	}, status)
}

// StatusFor maps an error kind to the HTTP status presented to clients.
func StatusFor(kind core.Kind) int {
	switch {
	case kind == core.KindInvalidCredential, kind.IsTokenRejection():
		return http.StatusUnauthorized
	case kind == core.KindProviderUnavailable:
		return http.StatusServiceUnavailable
	case kind == core.KindUnknownProvider:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Err writes err with the status derived from its kind.
// Details of internal failures are logged, not returned.
func Err(w http.ResponseWriter, r *http.Request, err error, short string) {
	kind := core.KindOf(err)
	status := StatusFor(kind)

	msg := short + ": " + err.Error()
	if status >= http.StatusInternalServerError && kind != core.KindProviderUnavailable {
		msg = short
	}
	if kind.Retryable() {
		w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
	}

	JSON(w, r, ErrorResponse{
		Error:         msg,
		Kind:          kind,
		Retryable:     kind.Retryable(),
		CorrelationID: logging.CorrelationID(r.Context()),
	}, status)
}
