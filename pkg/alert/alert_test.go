package alert

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSend(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := NewService(srv.URL, testLogger()).Send(context.Background(), &Message{
		Title: "report layout drift",
		Body:  "page 4",
		Data:  map[string]any{"kind": "sequence"},
	})
	require.NoError(t, err)

	assert.Equal(t, "report layout drift", got.Title)
	assert.Equal(t, SeverityInfo, got.Severity)
	assert.Equal(t, "sequence", got.Data["kind"])
	assert.False(t, got.SentAt.IsZero())
}

func TestSend_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewService(srv.URL, testLogger())

	t.Run("title required", func(t *testing.T) {
		assert.Error(t, svc.Send(context.Background(), &Message{Body: "x"}))
	})

	t.Run("rejected", func(t *testing.T) {
		err := svc.Send(context.Background(), &Message{Title: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})
}
