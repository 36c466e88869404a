package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/manobot/internal/logger"
)

func TestAfterRunsOnce(t *testing.T) {
	s, err := New(logger.NewTestLogger())
	require.NoError(t, err)
	s.Start()
	t.Cleanup(func() { _ = s.Stop() })

	var runs atomic.Int32
	require.NoError(t, s.After("cleanup", 50*time.Millisecond, func() { runs.Add(1) }))

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestEveryRepeats(t *testing.T) {
	s, err := New(logger.NewTestLogger())
	require.NoError(t, err)
	s.Start()
	t.Cleanup(func() { _ = s.Stop() })

	var runs atomic.Int32
	require.NoError(t, s.Every("sweep", 50*time.Millisecond, func() { runs.Add(1) }))

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 3*time.Second, 20*time.Millisecond)
}
