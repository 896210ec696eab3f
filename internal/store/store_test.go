package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Tiliavir/trivial-event-tracker/internal/config"
	"github.com/Tiliavir/trivial-event-tracker/internal/model"
	"github.com/Tiliavir/trivial-event-tracker/internal/store"
	"github.com/Tiliavir/trivial-event-tracker/internal/validation"
)

type failingStore struct {
	calls atomic.Int32
	err   error
}

func (f *failingStore) Insert(context.Context, model.NewEvent) error {
	f.calls.Add(1)
	return f.err
}

func (f *failingStore) FetchAll(context.Context) ([]model.Event, error) {
	f.calls.Add(1)
	return nil, f.err
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	backend := &failingStore{err: errors.New("connection refused")}
	s := store.WithBreaker(backend, "test-open")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.FetchAll(ctx); errors.Is(err, store.ErrUnavailable) {
			t.Fatalf("call %d rejected early", i+1)
		}
	}
	_, err := s.FetchAll(ctx)
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("FetchAll() error = %v, want ErrUnavailable", err)
	}
	if got := backend.calls.Load(); got != 5 {
		t.Errorf("backend calls = %d, want 5", got)
	}
}

func TestBreakerIgnoresRejectedInput(t *testing.T) {
	backend := &failingStore{err: &validation.RequestValidationError{}}
	s := store.WithBreaker(backend, "test-input")

	for i := 0; i < 10; i++ {
		err := s.Insert(context.Background(), model.NewEvent{})
		if errors.Is(err, store.ErrUnavailable) {
			t.Fatalf("call %d: breaker opened on validation errors", i+1)
		}
	}

	backend.err = &store.APIError{Status: 409, Message: "duplicate"}
	for i := 0; i < 10; i++ {
		if err := s.Insert(context.Background(), model.NewEvent{}); errors.Is(err, store.ErrUnavailable) {
			t.Fatalf("call %d: breaker opened on 4xx responses", i+1)
		}
	}
	if got := backend.calls.Load(); got != 20 {
		t.Errorf("backend calls = %d, want 20", got)
	}
}

func TestInstrumentPassesThrough(t *testing.T) {
	backend := &failingStore{err: errors.New("boom")}
	s := store.Instrument(backend, "test")
	if _, err := s.FetchAll(context.Background()); err == nil || err.Error() != "boom" {
		t.Errorf("FetchAll() error = %v, want boom", err)
	}
	backend.err = nil
	if err := s.Insert(context.Background(), model.NewEvent{}); err != nil {
		t.Errorf("Insert() error = %v, want nil", err)
	}
}

func TestHandleOpensOnce(t *testing.T) {
	var opens atomic.Int32
	backend := &failingStore{}
	h := store.NewHandle(func() (store.EventStore, error) {
		opens.Add(1)
		return backend, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := h.Get()
			if err != nil || s != store.EventStore(backend) {
				t.Errorf("Get() = %v, %v", s, err)
			}
		}()
	}
	wg.Wait()
	if got := opens.Load(); got != 1 {
		t.Errorf("open called %d times, want 1", got)
	}
}

func TestHandleKeepsOpenError(t *testing.T) {
	var opens int
	h := store.NewHandle(func() (store.EventStore, error) {
		opens++
		return nil, errors.New("bad url")
	})
	for i := 0; i < 3; i++ {
		if _, err := h.Get(); err == nil {
			t.Fatal("Get() error = nil, want open error")
		}
	}
	if opens != 1 {
		t.Errorf("open called %d times, want 1", opens)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := store.Open(context.Background(), config.StoreConfig{Backend: "sqlite"})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestOpenREST(t *testing.T) {
	s, err := store.Open(context.Background(), config.StoreConfig{
		Backend: "rest", URL: "https://example.supabase.co", Key: "k", Table: "events",
	})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if s == nil {
		t.Fatal("Open() returned nil store")
	}
}
