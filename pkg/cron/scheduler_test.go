package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filingservice "github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/service"
)

type countingIngester struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (c *countingIngester) IngestInbox(ctx context.Context) (filingservice.IngestSummary, error) {
	c.calls.Add(1)
	if c.release != nil {
		<-c.release
	}
	return filingservice.IngestSummary{Processed: 1}, c.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_StartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&countingIngester{}, "not a schedule", testLogger())
	assert.Error(t, s.Start())
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(&countingIngester{}, "*/5 * * * *", testLogger())
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)

	select {
	case <-s.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_RunNow(t *testing.T) {
	ing := &countingIngester{err: errors.New("inbox unavailable")}
	s := NewScheduler(ing, "@hourly", testLogger())

	s.RunNow()
	assert.Eventually(t, func() bool { return ing.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	ing := &countingIngester{release: make(chan struct{})}
	s := NewScheduler(ing, "@hourly", testLogger())

	s.RunNow()
	require.Eventually(t, func() bool { return ing.calls.Load() == 1 }, time.Second, 10*time.Millisecond)

	s.ingestInbox()
	assert.Equal(t, int32(1), ing.calls.Load())

	close(ing.release)
}
