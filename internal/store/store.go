// Package store is the adapter for the remote events table.
//
// Two backends share the EventStore interface: a Supabase / PostgREST HTTP
// client and a direct PostgreSQL connection. Open wires the configured
// backend behind a circuit breaker and Prometheus instrumentation.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Tiliavir/trivial-event-tracker/internal/model"
	"github.com/Tiliavir/trivial-event-tracker/internal/validation"
)

// EventStore appends events to and reads the full history from the remote table.
type EventStore interface {
	// Insert appends one row. Name and date are required; notes may be empty.
	Insert(ctx context.Context, ev model.NewEvent) error
	// FetchAll returns every row in the table, unfiltered.
	FetchAll(ctx context.Context) ([]model.Event, error)
}

// ErrUnavailable is returned without contacting the backend while the
// circuit breaker is open.
var ErrUnavailable = errors.New("event store unavailable")

// APIError is a non-2xx response from the REST backend.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	s := fmt.Sprintf("store API error %d: %s", e.Status, msg)
	if e.Code != "" {
		s += " (" + e.Code + ")"
	}
	if e.Hint != "" {
		s += "; hint: " + e.Hint
	}
	return s
}

// ClientError reports whether the request itself was rejected (4xx), as
// opposed to the store being unreachable or failing.
func (e *APIError) ClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// prepare normalizes an insert and validates it before any I/O happens.
func prepare(ev model.NewEvent) (model.NewEvent, error) {
	ev = ev.Normalize()
	if err := validation.ValidateStruct(ev); err != nil {
		return ev, err
	}
	return ev, nil
}

// Handle opens the configured store on first use and hands out the same
// instance for the rest of the process.
type Handle struct {
	open func() (EventStore, error)

	once sync.Once
	s    EventStore
	err  error
}

// NewHandle returns a Handle that calls open at most once.
func NewHandle(open func() (EventStore, error)) *Handle {
	return &Handle{open: open}
}

// Get returns the shared store, opening it on the first call. A failed open
// is not retried.
func (h *Handle) Get() (EventStore, error) {
	h.once.Do(func() {
		h.s, h.err = h.open()
	})
	return h.s, h.err
}
