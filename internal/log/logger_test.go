package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{" warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentStorage, Handler: NewHandler(&buf, FormatJSON, slog.LevelDebug)})

	l.InfoContext(context.Background(), "Opened", "driver", "sqlite")
	l.WithComponent(ComponentAMQP).Warn("Slow")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "storage", lines[0][FieldComponent])
	assert.Equal(t, "sqlite", lines[0]["driver"])
	assert.Equal(t, "amqp", lines[1][FieldComponent])
}

func TestRequestIDMiddlewareEnrichesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Component: ComponentHTTP, Handler: NewHandler(&buf, FormatJSON, slog.LevelInfo)})

	h := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "Handled")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "req-1", lines[0][FieldRequestID])
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Component: ComponentHTTP, Handler: NewHandler(&buf, FormatJSON, slog.LevelDebug)}))
	r := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)
	ctx := context.Background()

	sl.LogHTTPEnd(ctx, r, "req-2", http.StatusCreated, 3, "10.0.0.1")
	sl.LogHTTPEnd(ctx, r, "req-2", http.StatusUnprocessableEntity, 3, "10.0.0.1")
	sl.LogHTTPEnd(ctx, r, "req-2", http.StatusInternalServerError, 3, "10.0.0.1")
	sl.LogError(ctx, "Write failed", errors.New("boom"), ErrorTypeInternal, OpCreate, nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "WARN", lines[1]["level"])
	assert.Equal(t, "ERROR", lines[2]["level"])
	assert.Equal(t, float64(500), lines[2][FieldStatusCode])
	assert.Equal(t, "boom", lines[3][FieldError])
	assert.Equal(t, ErrorTypeInternal, lines[3][FieldErrorType])
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	assert.Equal(t, "unknown", l.Component())
}
