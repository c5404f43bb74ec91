package sync

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/project-dashboard/internal/apperr"
	"github.com/nhle/project-dashboard/internal/testutil"
)

func nextResult(t *testing.T, p *Poller) SyncResultMsg {
	t.Helper()
	done := make(chan SyncResultMsg, 1)
	go func() {
		if msg, ok := p.WaitForNextResult()().(SyncResultMsg); ok {
			done <- msg
		}
	}()
	select {
	case msg := <-done:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for sync result")
		return SyncResultMsg{}
	}
}

func TestPollerRunsJobOnStartAndRecordsSync(t *testing.T) {
	c := testutil.NewTestCache(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := New(zerolog.Nop(), c)
	p.now = func() time.Time { return at }

	var runs atomic.Int32
	p.Register("tasks", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NotNil(t, p.Start())
	t.Cleanup(p.Stop)

	msg := nextResult(t, p)
	assert.Equal(t, "tasks", msg.Name)
	assert.NoError(t, msg.Error)
	assert.EqualValues(t, 1, runs.Load())

	statuses := p.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, SyncIdle, statuses[0].State)
	assert.True(t, statuses[0].LastSync.Equal(at))

	last, lastErr, err := c.LastSync(context.Background(), "tasks")
	require.NoError(t, err)
	assert.True(t, last.Equal(at))
	assert.Empty(t, lastErr)

	assert.Nil(t, p.Start(), "second start is a no-op")
}

func TestPollerRefreshTriggersNamedJob(t *testing.T) {
	p := New(zerolog.Nop(), nil)
	var tasks, notes atomic.Int32
	p.Register("tasks", time.Hour, func(context.Context) error { tasks.Add(1); return nil })
	p.Register("notifications", time.Hour, func(context.Context) error { notes.Add(1); return nil })
	p.Start()
	t.Cleanup(p.Stop)

	nextResult(t, p)
	nextResult(t, p)

	p.Refresh("notifications")
	msg := nextResult(t, p)
	assert.Equal(t, "notifications", msg.Name)
	assert.EqualValues(t, 1, tasks.Load())
	assert.EqualValues(t, 2, notes.Load())

	p.Refresh("unknown")
	p.RefreshAll()
	names := map[string]bool{nextResult(t, p).Name: true, nextResult(t, p).Name: true}
	assert.True(t, names["tasks"])
	assert.True(t, names["notifications"])

	statuses := p.Statuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "tasks", statuses[0].Name)
	assert.Equal(t, "notifications", statuses[1].Name)
}

func TestPollerReportsErrorsAndAuthFailures(t *testing.T) {
	c := testutil.NewTestCache(t)
	p := New(zerolog.Nop(), c)
	p.Register("projects", time.Hour, func(context.Context) error {
		return errors.New("listing projects: boom")
	})
	p.Register("notifications", time.Hour, func(context.Context) error {
		return apperr.Server(http.StatusUnauthorized, "Not authenticated")
	})
	p.Start()
	t.Cleanup(p.Stop)

	results := map[string]SyncResultMsg{}
	for i := 0; i < 2; i++ {
		msg := nextResult(t, p)
		results[msg.Name] = msg
	}

	require.Error(t, results["projects"].Error)
	assert.Nil(t, results["projects"].AuthError)
	require.NotNil(t, results["notifications"].AuthError)
	assert.Contains(t, results["notifications"].AuthError.Message, "notifications")

	for _, st := range p.Statuses() {
		assert.Equal(t, SyncError, st.State, st.Name)
		assert.True(t, st.LastSync.IsZero(), st.Name)
	}

	_, lastErr, err := c.LastSync(context.Background(), "projects")
	require.NoError(t, err)
	assert.Contains(t, lastErr, "boom")
}

func TestPollerRestoresLastSyncFromLog(t *testing.T) {
	c := testutil.NewTestCache(t)
	earlier := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, c.RecordSync(context.Background(), "tasks", earlier, nil))

	block := make(chan struct{})
	p := New(zerolog.Nop(), c)
	p.Register("tasks", time.Hour, func(ctx context.Context) error {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return nil
	})
	p.Start()
	t.Cleanup(func() {
		close(block)
		p.Stop()
	})

	assert.Eventually(t, func() bool {
		st := p.Statuses()[0]
		return st.State == SyncRunning && st.LastSync.Equal(earlier)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSyncStateString(t *testing.T) {
	assert.Equal(t, "idle", SyncIdle.String())
	assert.Equal(t, "syncing", SyncRunning.String())
	assert.Equal(t, "error", SyncError.String())
}
