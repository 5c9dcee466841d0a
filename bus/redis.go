package bus

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Channel is the single fixed name all sync traffic shares.
const Channel = "clinicmock:sync"

// RedisTransport is the native pub/sub channel for tabs spread across
// processes, built on Redis publish/subscribe.
type RedisTransport struct {
	client *redis.Client
	ctx    context.Context

	mu      sync.Mutex
	pubsubs []*redis.PubSub
}

func NewRedisTransport(client *redis.Client) *RedisTransport {
	return &RedisTransport{client: client, ctx: context.Background()}
}

func (r *RedisTransport) Publish(env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, Channel, string(data)).Err()
}

func (r *RedisTransport) Subscribe(fn func(Envelope)) (cancel func()) {
	pubsub := r.client.Subscribe(r.ctx, Channel)
	r.mu.Lock()
	r.pubsubs = append(r.pubsubs, pubsub)
	r.mu.Unlock()

	go func() {
		for msg := range pubsub.Channel() {
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("bus: bad envelope on %s: %v", Channel, err)
				continue
			}
			fn(env)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := pubsub.Close(); err != nil {
				log.Printf("bus: close pubsub: %v", err)
			}
		})
	}
}

func (r *RedisTransport) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pubsubs {
		_ = p.Close()
	}
	r.pubsubs = nil
}
