package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type updateHandler func(ctx context.Context, update tgbotapi.Update)

// dispatcher fans updates out to a fixed set of workers. Updates of one chat
// always go to the same worker, so they are processed in arrival order while
// different chats run in parallel.
type dispatcher struct {
	queues []chan tgbotapi.Update
	handle updateHandler
}

func newDispatcher(workers, queueSize int, handle updateHandler) *dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	queues := make([]chan tgbotapi.Update, workers)
	for i := range queues {
		queues[i] = make(chan tgbotapi.Update, queueSize)
	}
	return &dispatcher{queues: queues, handle: handle}
}

// Run consumes updates until the channel closes or ctx is cancelled, then
// waits for the queued updates to drain.
func (d *dispatcher) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	var wg sync.WaitGroup
	for _, q := range d.queues {
		wg.Add(1)
		go func(q <-chan tgbotapi.Update) {
			defer wg.Done()
			for update := range q {
				d.handle(ctx, update)
			}
		}(q)
	}

	defer func() {
		for _, q := range d.queues {
			close(q)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			q := d.queues[d.shard(update)]
			select {
			case q <- update:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (d *dispatcher) shard(update tgbotapi.Update) int {
	chatID, _ := chatOf(update)
	return int(uint64(chatID) % uint64(len(d.queues)))
}
