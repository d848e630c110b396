// Package response writes the JSON envelopes shared by every route.
package response

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/bookshelf-labs/bookshelf-api/internal/apperr"
	"github.com/bookshelf-labs/bookshelf-api/internal/observability"
)

const successStatus = "Success"

// Envelope is the body of every catalog and auth response.
type Envelope struct {
	Status     string   `json:"status"`
	StatusCode int      `json:"statusCode"`
	Message    []string `json:"message"`
	Data       any      `json:"data,omitempty"`
}

// JSON writes v as-is. Health probes use it since they are not enveloped.
func JSON(w http.ResponseWriter, _ *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Success(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	JSON(w, r, status, Envelope{
		Status:     successStatus,
		StatusCode: status,
		Message:    []string{message},
		Data:       data,
	})
}

// Error maps err to its envelope. Causes of internal failures are logged, never written.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(err)
	if kind == apperr.KindInternal {
		observability.Logger().ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	if retry := apperr.RetryAfter(err); retry > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
	}
	JSON(w, r, status, Envelope{
		Status:     apperr.ExceptionName(kind),
		StatusCode: status,
		Message:    apperr.Messages(err),
	})
}
