package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Tiliavir/trivial-event-tracker/internal/export"
	"github.com/Tiliavir/trivial-event-tracker/internal/model"
	"github.com/Tiliavir/trivial-event-tracker/internal/stats"
	"github.com/Tiliavir/trivial-event-tracker/internal/store"
	"github.com/Tiliavir/trivial-event-tracker/internal/timecalc"
	"github.com/Tiliavir/trivial-event-tracker/internal/validation"
)

const maxBodyBytes = 64 << 10

// eventRequest is the body of POST /api/v1/events.
type eventRequest struct {
	Name  string `json:"name"`
	Date  string `json:"date"`
	Notes string `json:"notes"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	newResponseWriter(w, r).success(http.StatusOK, map[string]string{"status": "ok"}, nil)
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)
	labels, ok := s.labels(rw)
	if !ok {
		return
	}
	d := s.tracker.Dashboard(r.Context(), labels)
	rows := d.Report.Rows
	if rows == nil {
		rows = []stats.Row{}
	}
	n := len(rows)
	rw.success(http.StatusOK, rows, &APIMeta{Count: &n, Notice: d.Notice, Degraded: d.Degraded})
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)

	var req eventRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		rw.fail(http.StatusBadRequest, ErrCodeBadRequest, "request body must be a JSON object with name, date and notes", nil)
		return
	}

	ev := model.NewEvent{Name: req.Name, Notes: req.Notes}
	if d := strings.TrimSpace(req.Date); d != "" {
		date, err := timecalc.ParseDate(d)
		if err != nil {
			rw.fail(http.StatusBadRequest, ErrCodeValidationFailed, "date must be YYYY-MM-DD", []validation.FieldError{{
				Field: "date", Tag: "date", Message: "date must be YYYY-MM-DD",
			}})
			return
		}
		ev.Date = date
	}
	ev = ev.Normalize()

	err := s.tracker.Record(r.Context(), ev)
	var verr *validation.RequestValidationError
	switch {
	case err == nil:
		rw.success(http.StatusCreated, export.Record{
			Date:  timecalc.FormatDate(ev.Date),
			Name:  ev.Name,
			Notes: ev.Notes,
		}, nil)
	case errors.As(err, &verr):
		rw.fail(http.StatusBadRequest, ErrCodeValidationFailed, verr.Error(), verr.Fields)
	case errors.Is(err, store.ErrUnavailable):
		rw.fail(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "event store is temporarily unavailable", nil)
	default:
		rw.fail(http.StatusBadGateway, ErrCodeStoreFailed, "event could not be saved", nil)
	}
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)
	labels, ok := s.labels(rw)
	if !ok {
		return
	}
	d := s.tracker.Dashboard(r.Context(), labels)
	rw.success(http.StatusOK, d.Report, &APIMeta{Notice: d.Notice, Degraded: d.Degraded})
}

// labels resolves ?locale=, falling back to the configured locale.
func (s *Server) labels(rw *responseWriter) (stats.Labels, bool) {
	code := rw.r.URL.Query().Get("locale")
	if code == "" {
		code = s.locale
	}
	l, err := stats.Locale(code)
	if err != nil {
		rw.fail(http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return stats.Labels{}, false
	}
	return l, true
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	newResponseWriter(w, r).fail(http.StatusNotFound, ErrCodeNotFound, "no such endpoint", nil)
}
