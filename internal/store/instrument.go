package store

import (
	"context"
	"errors"
	"time"

	"github.com/Tiliavir/trivial-event-tracker/internal/logging"
	"github.com/Tiliavir/trivial-event-tracker/internal/metrics"
	"github.com/Tiliavir/trivial-event-tracker/internal/model"
)

type instrumentedStore struct {
	next    EventStore
	backend string
}

// Instrument records request counts and latency for every call on s.
func Instrument(s EventStore, backend string) EventStore {
	return &instrumentedStore{next: s, backend: backend}
}

func (s *instrumentedStore) Insert(ctx context.Context, ev model.NewEvent) error {
	start := time.Now()
	err := s.next.Insert(ctx, ev)
	s.observe(ctx, "insert", start, err)
	return err
}

func (s *instrumentedStore) FetchAll(ctx context.Context) ([]model.Event, error) {
	start := time.Now()
	events, err := s.next.FetchAll(ctx)
	s.observe(ctx, "fetch_all", start, err)
	return events, err
}

func (s *instrumentedStore) observe(ctx context.Context, op string, start time.Time, err error) {
	elapsed := time.Since(start)
	metrics.StoreDuration.WithLabelValues(s.backend, op).Observe(elapsed.Seconds())

	outcome := "success"
	switch {
	case errors.Is(err, ErrUnavailable):
		outcome = "rejected"
	case err != nil:
		outcome = "failure"
	}
	metrics.StoreRequests.WithLabelValues(s.backend, op, outcome).Inc()

	logging.Ctx(ctx).Debug().
		Str("backend", s.backend).
		Str("operation", op).
		Str("outcome", outcome).
		Dur("elapsed", elapsed).
		Msg("store request")
}
