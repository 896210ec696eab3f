package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/Tiliavir/trivial-event-tracker/internal/logging"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// APIMeta carries request metadata and, for dashboard reads, whether the
// data is degraded.
type APIMeta struct {
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
	Count      *int      `json:"count,omitempty"`
	Notice     string    `json:"notice,omitempty"`
	Degraded   bool      `json:"degraded,omitempty"`
}

// Error codes
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeStoreFailed        = "STORE_FAILED"
)

// responseWriter writes enveloped responses for one request.
type responseWriter struct {
	w     http.ResponseWriter
	r     *http.Request
	start time.Time
}

func newResponseWriter(w http.ResponseWriter, r *http.Request) *responseWriter {
	return &responseWriter{w: w, r: r, start: time.Now()}
}

func (rw *responseWriter) meta(m *APIMeta) *APIMeta {
	if m == nil {
		m = &APIMeta{}
	}
	m.Timestamp = time.Now().UTC()
	m.DurationMs = time.Since(rw.start).Milliseconds()
	m.RequestID = logging.RequestIDFromContext(rw.r.Context())
	return m
}

func (rw *responseWriter) success(status int, data any, m *APIMeta) {
	rw.writeJSON(status, APIResponse{Success: true, Data: data, Meta: rw.meta(m)})
}

func (rw *responseWriter) fail(status int, code, message string, details any) {
	m := rw.meta(nil)
	rw.writeJSON(status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: m.RequestID,
		},
		Meta: m,
	})
}

func (rw *responseWriter) writeJSON(status int, body APIResponse) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("encoding response")
		http.Error(rw.w, `{"success":false}`, http.StatusInternalServerError)
		return
	}
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(status)
	_, _ = rw.w.Write(data)
}
