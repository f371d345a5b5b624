package notify

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "doctrack:"

// RedisListener subscribes to the per-table change channels on Redis and
// forwards every delivery into the in-process Broadcaster. The payload is
// not relied upon beyond "something changed"; subscribers re-fetch.
type RedisListener struct {
	client      *redis.Client
	broadcaster *Broadcaster
	pubsub      *redis.PubSub
	cancel      context.CancelFunc
	done        sync.WaitGroup
	closeOnce   sync.Once
}

// NewRedisListener connects and subscribes to all change topics. The
// subscription is confirmed before returning, so a write published right
// after construction is not lost.
func NewRedisListener(addr, password string, broadcaster *Broadcaster) (*RedisListener, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	ctx, cancel := context.WithCancel(context.Background())

	channels := []string{
		channelPrefix + TopicCustomers,
		channelPrefix + TopicDocuments,
		channelPrefix + TopicStatsHistory,
		channelPrefix + TopicSettings,
		channelPrefix + TopicStatsUpdate,
	}
	pubsub := client.Subscribe(ctx, channels...)
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		client.Close()
		return nil, err
	}

	l := &RedisListener{
		client:      client,
		broadcaster: broadcaster,
		pubsub:      pubsub,
		cancel:      cancel,
	}
	l.done.Add(1)
	go l.run(ctx)
	return l, nil
}

func (l *RedisListener) run(ctx context.Context) {
	defer l.done.Done()
	ch := l.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			topic := strings.TrimPrefix(msg.Channel, channelPrefix)
			l.broadcaster.Publish(topic)
		}
	}
}

// Notify publishes a change signal both in-process (synchronously, so local
// views refresh without waiting for the round trip) and over Redis for other
// instances. The views' refresh debounce coalesces the duplicate delivery.
func (l *RedisListener) Notify(ctx context.Context, topic string) {
	l.broadcaster.Publish(topic)
	if err := l.client.Publish(ctx, channelPrefix+topic, "changed").Err(); err != nil {
		log.Println("notify: publish failed:", err)
	}
}

// Close tears the subscription down and waits for the forwarding goroutine.
func (l *RedisListener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.cancel()
		err = l.pubsub.Close()
		l.done.Wait()
		if cerr := l.client.Close(); err == nil {
			err = cerr
		}
	})
	return err
}
