package refresh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerAdd(t *testing.T) {
	s := NewScheduler(time.Second)

	require.NoError(t, s.Add("refresh", "*/15 * * * *", func(ctx context.Context) error { return nil }))
	require.NoError(t, s.Add("sync", "@every 5m", func(ctx context.Context) error { return nil }))
	require.NoError(t, s.Add("disabled", "", func(ctx context.Context) error { return nil }))
	assert.Equal(t, 2, s.Len())

	assert.Error(t, s.Add("bad", "every now and then", func(ctx context.Context) error { return nil }))
}

func TestSchedulerRunsJobs(t *testing.T) {
	s := NewScheduler(time.Second)
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add("tick", "@every 1s", func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}))

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestSchedulerStopCancelsJobs(t *testing.T) {
	s := NewScheduler(time.Minute)
	started := make(chan struct{})
	cancelled := make(chan struct{})
	require.NoError(t, s.Add("slow", "@every 1s", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}))

	s.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not start")
	}
	s.Stop()

	select {
	case <-cancelled:
	default:
		t.Error("expected Stop to cancel and wait for the running job")
	}
}
