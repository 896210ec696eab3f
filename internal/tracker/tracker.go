// Package tracker applies the boundary policy between the event store and
// its callers: reads degrade to "no data", writes fail visibly.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tiliavir/trivial-event-tracker/internal/logging"
	"github.com/Tiliavir/trivial-event-tracker/internal/metrics"
	"github.com/Tiliavir/trivial-event-tracker/internal/model"
	"github.com/Tiliavir/trivial-event-tracker/internal/stats"
	"github.com/Tiliavir/trivial-event-tracker/internal/store"
)

// Notices shown alongside a dashboard without data.
const (
	NoticeEmpty       = "No events recorded yet."
	NoticeUnavailable = "Events could not be loaded; showing no data."
)

// StoreProvider hands out the process-wide store. *store.Handle implements it.
type StoreProvider interface {
	Get() (store.EventStore, error)
}

// Tracker records events and builds dashboards from the full history.
type Tracker struct {
	stores StoreProvider
	now    func() time.Time
}

// New returns a Tracker reading and writing through stores.
func New(stores StoreProvider) *Tracker {
	return &Tracker{stores: stores, now: time.Now}
}

// Dashboard is one pipeline run plus what to tell the user about it.
type Dashboard struct {
	Report      stats.Report `json:"report"`
	Notice      string       `json:"notice,omitempty"`
	Degraded    bool         `json:"degraded"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Record inserts ev. Every failure is returned; the caller must report it.
func (t *Tracker) Record(ctx context.Context, ev model.NewEvent) error {
	s, err := t.stores.Get()
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("opening event store")
		return fmt.Errorf("opening event store: %w", err)
	}
	if err := s.Insert(ctx, ev); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("name", ev.Name).Msg("recording event failed")
		return fmt.Errorf("recording event: %w", err)
	}
	logging.Ctx(ctx).Info().Str("name", ev.Name).Time("date", ev.Date).Msg("event recorded")
	return nil
}

// Events returns the raw history. Unlike Dashboard it does not degrade.
func (t *Tracker) Events(ctx context.Context) ([]model.Event, error) {
	s, err := t.stores.Get()
	if err != nil {
		return nil, fmt.Errorf("opening event store: %w", err)
	}
	events, err := s.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}
	return events, nil
}

// Dashboard fetches the full history and runs the statistics pipeline. It
// always returns a report: a failed fetch is logged and yields the empty
// report with Degraded set. An empty history is not an error.
func (t *Tracker) Dashboard(ctx context.Context, labels stats.Labels) Dashboard {
	d := Dashboard{GeneratedAt: t.now().UTC()}

	events, err := t.Events(ctx)
	if err != nil {
		ev := logging.Ctx(ctx).Error().Err(err)
		if errors.Is(err, store.ErrUnavailable) {
			ev = ev.Bool("circuit_open", true)
		}
		ev.Msg("loading events failed, showing no data")
		metrics.PipelineRuns.WithLabelValues("degraded").Inc()
		events = nil
		d.Degraded = true
		d.Notice = NoticeUnavailable
	}

	d.Report = stats.Compute(events, labels)
	if d.Degraded {
		return d
	}
	metrics.EventsInHistory.Set(float64(len(events)))
	if d.Report.Empty {
		d.Notice = NoticeEmpty
		metrics.PipelineRuns.WithLabelValues("empty").Inc()
	} else {
		metrics.PipelineRuns.WithLabelValues("data").Inc()
	}
	return d
}
