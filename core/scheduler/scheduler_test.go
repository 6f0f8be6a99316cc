package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestScheduler_RunsJobs(t *testing.T) {
	s := New(context.Background(), Config{RunTimeoutSeconds: 1}, nil)

	var runs int32
	require.NoError(t, s.Add("tick", "* * * * * *", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		atomic.AddInt32(&runs, 1)
		return nil
	}))
	assert.Equal(t, []string{"tick"}, s.Jobs())

	s.Start()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestScheduler_EmptySpecSkipsJob(t *testing.T) {
	s := New(context.Background(), Config{}, nil)
	require.NoError(t, s.Add("disabled", "", func(ctx context.Context) error { return nil }))
	assert.Empty(t, s.Jobs())
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := New(context.Background(), Config{}, nil)
	assert.Error(t, s.Add("bad", "not a spec", func(ctx context.Context) error { return nil }))
}

func TestScheduler_RecoversAndLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := New(context.Background(), Config{RunTimeoutSeconds: 1}, zap.New(core))

	require.NoError(t, s.Add("fails", "* * * * * *", func(ctx context.Context) error {
		return errors.New("boom")
	}))
	require.NoError(t, s.Add("panics", "* * * * * *", func(ctx context.Context) error {
		panic("kaboom")
	}))

	s.Start()
	assert.Eventually(t, func() bool {
		return logs.FilterMessage("Job failed").Len() > 0
	}, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}
