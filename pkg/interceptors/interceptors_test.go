package interceptors

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type ping struct{}

func okUnary(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
	return connect.NewResponse(&ping{}), nil
}

func panicUnary(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
	panic("boom")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRateLimitInterceptor(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(0), 2)
	call := NewRateLimitInterceptor(limiter)(okUnary)
	req := connect.NewRequest(&ping{})

	for i := 0; i < 2; i++ {
		_, err := call(context.Background(), req)
		require.NoError(t, err)
	}

	_, err := call(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))
}

func TestRecoveryInterceptor(t *testing.T) {
	call := NewRecoveryInterceptor(testLogger())(panicUnary)

	_, err := call(context.Background(), connect.NewRequest(&ping{}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
}

func TestLoggingInterceptor(t *testing.T) {
	call := NewLoggingInterceptor(testLogger())(okUnary)

	resp, err := call(context.Background(), connect.NewRequest(&ping{}))
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestWithCORS(t *testing.T) {
	h := WithCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), []string{"https://ocf.example"})

	req := httptest.NewRequest(http.MethodOptions, "/filing.v1.FilingService/ParseReport", nil)
	req.Header.Set("Origin", "https://ocf.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type,Connect-Protocol-Version")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://ocf.example", rec.Header().Get("Access-Control-Allow-Origin"))

	other := httptest.NewRequest(http.MethodOptions, "/filing.v1.FilingService/ParseReport", nil)
	other.Header.Set("Origin", "https://evil.example")
	other.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
