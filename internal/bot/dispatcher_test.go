package bot

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestDispatcherKeepsPerChatOrder(t *testing.T) {
	var mu sync.Mutex
	seen := map[int64][]int{}

	d := newDispatcher(4, 8, func(_ context.Context, u tgbotapi.Update) {
		chatID, _ := chatOf(u)
		mu.Lock()
		seen[chatID] = append(seen[chatID], u.UpdateID)
		mu.Unlock()
	})

	updates := make(chan tgbotapi.Update)
	done := make(chan struct{})
	go func() {
		d.Run(context.Background(), updates)
		close(done)
	}()

	const perChat = 50
	for i := 0; i < perChat; i++ {
		for _, chatID := range []int64{1, 2, 3, -100500} {
			u := textUpdate(chatID, "x")
			u.UpdateID = i
			updates <- u
		}
	}
	close(updates)
	<-done

	for _, chatID := range []int64{1, 2, 3, -100500} {
		ids := seen[chatID]
		assert.Len(t, ids, perChat)
		for i, id := range ids {
			assert.Equal(t, i, id, "chat %d out of order", chatID)
		}
	}
}

func TestDispatcherStopsOnCancel(t *testing.T) {
	d := newDispatcher(2, 0, func(context.Context, tgbotapi.Update) {})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		d.Run(ctx, make(chan tgbotapi.Update))
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

func TestShardIsStable(t *testing.T) {
	d := newDispatcher(3, 0, nil)
	assert.Equal(t, d.shard(textUpdate(7, "a")), d.shard(callbackUpdate(7, "easy")))
	for _, chatID := range []int64{-7, -100500, math.MinInt64, math.MaxInt64} {
		idx := d.shard(textUpdate(chatID, "a"))
		assert.GreaterOrEqual(t, idx, 0, "chat %d", chatID)
		assert.Less(t, idx, 3, "chat %d", chatID)
	}
}

func TestDispatcherHandlesExtremeChatIDs(t *testing.T) {
	var mu sync.Mutex
	var got []int64
	d := newDispatcher(3, 0, func(_ context.Context, u tgbotapi.Update) {
		chatID, _ := chatOf(u)
		mu.Lock()
		got = append(got, chatID)
		mu.Unlock()
	})

	updates := make(chan tgbotapi.Update, 2)
	updates <- textUpdate(math.MinInt64, "a")
	updates <- textUpdate(math.MaxInt64, "b")
	close(updates)

	assert.NotPanics(t, func() { d.Run(context.Background(), updates) })
	assert.ElementsMatch(t, []int64{math.MinInt64, math.MaxInt64}, got)
}
