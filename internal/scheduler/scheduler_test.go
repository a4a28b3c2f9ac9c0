package scheduler

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	mu    sync.Mutex
	calls int
	ttls  []time.Duration
}

func (s *countingSweeper) EvictIdle(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.ttls = append(s.ttls, ttl)
	return 2
}

func (s *countingSweeper) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweepNow(t *testing.T) {
	sweeper := &countingSweeper{}
	s := New(sweeper, time.Minute, 3*time.Hour, testLogger())

	assert.Equal(t, 2, s.SweepNow())
	assert.Equal(t, []time.Duration{3 * time.Hour}, sweeper.ttls)
}

func TestNewAppliesDefaults(t *testing.T) {
	s := New(&countingSweeper{}, 0, -time.Second, testLogger())
	assert.Equal(t, DefaultSweepInterval, s.interval)
	assert.Equal(t, DefaultSessionTTL, s.ttl)
}

func TestStartRunsPeriodically(t *testing.T) {
	sweeper := &countingSweeper{}
	s := New(sweeper, 50*time.Millisecond, time.Hour, testLogger())
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return sweeper.Calls() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}
