package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Tiliavir/trivial-event-tracker/internal/logging"
	"github.com/Tiliavir/trivial-event-tracker/internal/metrics"
	"github.com/Tiliavir/trivial-event-tracker/internal/model"
	"github.com/Tiliavir/trivial-event-tracker/internal/validation"
)

const (
	breakerThreshold = 5
	breakerTimeout   = 30 * time.Second
)

type breakerStore struct {
	next EventStore
	cb   *gobreaker.CircuitBreaker[[]model.Event]
	name string
}

// WithBreaker wraps s in a circuit breaker. After consecutive backend
// failures it fails fast with ErrUnavailable until the timeout elapses.
// Rejected input (validation errors, 4xx responses) does not count as a
// failure. Nothing is retried.
func WithBreaker(s EventStore, name string) EventStore {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]model.Event](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= breakerThreshold
			if trip {
				logging.Warn().Str("breaker", name).Uint32("failures", counts.ConsecutiveFailures).Msg("opening circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
		IsSuccessful: isSuccessful,
	})
	return &breakerStore{next: s, cb: cb, name: name}
}

func (b *breakerStore) Insert(ctx context.Context, ev model.NewEvent) error {
	_, err := b.cb.Execute(func() ([]model.Event, error) {
		return nil, b.next.Insert(ctx, ev)
	})
	return b.translate(err)
}

func (b *breakerStore) FetchAll(ctx context.Context) ([]model.Event, error) {
	events, err := b.cb.Execute(func() ([]model.Event, error) {
		return b.next.FetchAll(ctx)
	})
	return events, b.translate(err)
}

func (b *breakerStore) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, b.name, err)
	}
	return err
}

func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.ClientError()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
