package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/trivial-event-tracker/internal/logging"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := logging.Logger()
	prevLevel := zerolog.GlobalLevel()
	logging.SetLogger(logging.NewTestLogger(&buf))
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		logging.SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func TestCtxAddsRequestID(t *testing.T) {
	buf := capture(t)
	ctx := logging.ContextWithRequestID(context.Background(), "req-42")
	logging.Ctx(ctx).Info().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-42"`) {
		t.Errorf("log line %q missing request_id", out)
	}
	if !strings.Contains(out, `"message":"hello"`) {
		t.Errorf("log line %q missing message", out)
	}
}

func TestRequestIDFromEmptyContext(t *testing.T) {
	if got := logging.RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext = %q, want empty", got)
	}
	if id := logging.GenerateRequestID(); len(id) != 36 {
		t.Errorf("GenerateRequestID length = %d, want 36", len(id))
	}
}

func TestSlogAdapter(t *testing.T) {
	buf := capture(t)
	l := logging.NewSlogLogger().WithGroup("svc")
	l.Warn("restarting", "service", "http-server", "attempt", 2)

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"svc.service":"http-server"`, `"svc.attempt":2`, `"message":"restarting"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q missing %s", out, want)
		}
	}
}

func TestValidLevel(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"debug", true},
		{"WARN", true},
		{"disabled", true},
		{"verbose", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := logging.ValidLevel(tt.level); got != tt.want {
			t.Errorf("ValidLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
