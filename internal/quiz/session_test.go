package quiz

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestEvictIdle(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	e := newTestEngine(t, newMemoryStats(testSayings()))
	e.Sessions().now = clock.Now

	handle(t, e, 1, Start())
	clock.Advance(30 * time.Minute)
	handle(t, e, 2, Start())
	clock.Advance(45 * time.Minute)

	st := session(t, e, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), st.LastActivity)

	evicted := e.Sessions().EvictIdle(time.Hour)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, e.Sessions().Len())

	_, ok := e.Sessions().Get(1)
	assert.False(t, ok, "idle chat is evicted")
	_, ok = e.Sessions().Get(2)
	assert.True(t, ok, "recent chat is kept")

	// An evicted chat starts over from idle.
	_, err := e.Handle(context.Background(), 1, SelectDifficulty(0))
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestEvictIdleKeepsActiveChats(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	e := newTestEngine(t, newMemoryStats(testSayings()))
	e.Sessions().now = clock.Now

	handle(t, e, 1, Start())
	clock.Advance(50 * time.Minute)
	handle(t, e, 1, SelectDifficulty(0))
	clock.Advance(50 * time.Minute)

	assert.Zero(t, e.Sessions().EvictIdle(time.Hour))
	assert.Equal(t, StateAwaitingAnswer, session(t, e, 1).State)
}

func TestEvictIdleSkipsLockedEntries(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewSessionStore()
	store.now = clock.Now

	entry := store.acquire(1)
	entry.active = true
	store.release(1, entry)
	clock.Advance(2 * time.Hour)

	locked := store.acquire(1)
	assert.Zero(t, store.EvictIdle(time.Hour), "entry in use is not evicted")
	store.release(1, locked)

	assert.Zero(t, store.EvictIdle(time.Hour), "release refreshed the activity time")
	clock.Advance(2 * time.Hour)
	assert.Equal(t, 1, store.EvictIdle(time.Hour))
}

func TestInactiveEntriesAreNotRetained(t *testing.T) {
	store := NewSessionStore()
	for i := int64(0); i < 10; i++ {
		entry := store.acquire(i)
		store.release(i, entry)
	}
	assert.Zero(t, store.Len())
}

func TestGetReturnsCopy(t *testing.T) {
	e := newTestEngine(t, newMemoryStats(testSayings()))
	handle(t, e, 1, Start())

	st := session(t, e, 1)
	st.Score = 99
	st.State = StateRunComplete

	fresh := session(t, e, 1)
	assert.Zero(t, fresh.Score)
	assert.Equal(t, StateAwaitingDifficulty, fresh.State)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "awaiting_difficulty", StateAwaitingDifficulty.String())
	assert.Equal(t, "awaiting_answer", StateAwaitingAnswer.String())
	assert.Equal(t, "run_complete", StateRunComplete.String())
}

func TestParseCallback(t *testing.T) {
	difficulties := DefaultDifficulties()
	tests := []struct {
		data string
		want Action
	}{
		{"easy", SelectDifficulty(0)},
		{"medium", SelectDifficulty(1)},
		{"correct", Answer(true)},
		{"incorrect", Answer(false)},
		{"repeat", Repeat()},
		{"end", EndRun()},
		{"", Unrecognized()},
		{"hard", Unrecognized()},
		{"EASY", Unrecognized()},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.data), func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCallback(tt.data, difficulties))
		})
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "start", Start().String())
	assert.Equal(t, "select_difficulty(1)", SelectDifficulty(1).String())
	assert.Equal(t, "answer(correct)", Answer(true).String())
	assert.Equal(t, "answer(incorrect)", Answer(false).String())
	assert.Equal(t, "end_run", EndRun().String())
	assert.Equal(t, "unrecognized", Unrecognized().String())
}

func TestErrorReply(t *testing.T) {
	wrapped := fmt.Errorf("%w: answer in state idle", ErrInvalidStateTransition)
	assert.Equal(t, Reply{Text: "Я вас не понимаю"}, ErrorReply(wrapped))
	assert.Equal(t, Reply{Text: "Что-то пошло не так. Начните тест заново: /start"}, ErrorReply(errors.New("boom")))
}

func TestInvalidTransitionMessage(t *testing.T) {
	e := newTestEngine(t, newMemoryStats(testSayings()))
	_, err := e.Handle(context.Background(), 1, Answer(true))
	require.Error(t, err)
	assert.EqualError(t, err, "invalid state transition: answer(correct) in state idle")
}
