package storage

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage backs the storage slots with a Redis instance so
// simulated tabs can live in separate processes. Watch polls the key;
// cross-process push delivery is the bus.RedisTransport's job.
type RedisStorage struct {
	client   *redis.Client
	ctx      context.Context
	interval time.Duration

	mu   sync.Mutex
	last map[string]string
}

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{
		client:   client,
		ctx:      context.Background(),
		interval: 250 * time.Millisecond,
		last:     make(map[string]string),
	}
}

func (r *RedisStorage) Get(key string) (string, bool) {
	v, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (r *RedisStorage) Set(key, value string) error {
	return r.client.Set(r.ctx, key, value, 0).Err()
}

func (r *RedisStorage) Delete(key string) error {
	return r.client.Del(r.ctx, key).Err()
}

func (r *RedisStorage) Watch(key string, fn func(string)) (cancel func()) {
	stop := make(chan struct{})
	if v, ok := r.Get(key); ok {
		r.mu.Lock()
		r.last[key] = v
		r.mu.Unlock()
	}
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				v, ok := r.Get(key)
				if !ok {
					continue
				}
				r.mu.Lock()
				changed := r.last[key] != v
				if changed {
					r.last[key] = v
				}
				r.mu.Unlock()
				if changed {
					fn(v)
				}
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(stop) }) }
}
