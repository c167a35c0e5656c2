package api

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const screenChannel = "visits:screen"

// RedisBroker implements EventBroker over Redis Pub/Sub so several replicas
// can serve the same screen stream.
type RedisBroker struct {
	rdb *redis.Client

	mu   sync.Mutex
	subs map[chan ScreenEvent]*redis.PubSub
}

// NewRedisBroker connects using REDIS_URL.
func NewRedisBroker() (*RedisBroker, error) {
	opt, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		return nil, err
	}
	return &RedisBroker{rdb: redis.NewClient(opt), subs: map[chan ScreenEvent]*redis.PubSub{}}, nil
}

func (b *RedisBroker) Subscribe() chan ScreenEvent {
	ch := make(chan ScreenEvent, 16)
	ctx := context.Background()
	ps := b.rdb.Subscribe(ctx, screenChannel)
	// initial consume to ensure the subscription is live
	_, _ = ps.Receive(ctx)
	b.mu.Lock()
	b.subs[ch] = ps
	b.mu.Unlock()
	go func() {
		defer close(ch)
		for msg := range ps.Channel() {
			var evt ScreenEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil {
				select {
				case ch <- evt:
				default:
				}
			}
		}
	}()
	return ch
}

func (b *RedisBroker) Unsubscribe(ch chan ScreenEvent) {
	b.mu.Lock()
	ps := b.subs[ch]
	delete(b.subs, ch)
	b.mu.Unlock()
	if ps != nil {
		// Closing the PubSub ends the fanout goroutine, which closes ch.
		_ = ps.Close()
	}
}

func (b *RedisBroker) Publish(evt ScreenEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, _ := json.Marshal(evt)
	_ = b.rdb.Publish(ctx, screenChannel, data).Err()
}
