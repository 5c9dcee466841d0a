package bus

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/clinic-app/storage"
)

const (
	// MasterKey is overwritten on every event with the name of the
	// fresh event key. Storage change notification only fires when a
	// value actually changes, so each event needs a unique key name.
	MasterKey = "clinicmock:sync:latest"

	eventKeyPrefix = "clinicmock:sync:event"

	// eventTTL bounds storage growth: event keys delete themselves
	// shortly after publication.
	eventTTL = 5 * time.Second
)

// StorageTransport is the fallback path for environments without a
// native broadcast channel: each envelope is written under a unique,
// timestamp-and-random-suffixed key, and the master key is pointed at
// it to trigger the receivers' watch.
type StorageTransport struct {
	medium storage.Storage

	mu      sync.Mutex
	cancels []func()
	timers  []*time.Timer
}

func NewStorageTransport(medium storage.Storage) *StorageTransport {
	return &StorageTransport{medium: medium}
}

func (s *StorageTransport) Publish(env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	key := fmt.Sprintf("%s:%d:%s", eventKeyPrefix, env.Timestamp, uuid.NewString()[:8])
	if err := s.medium.Set(key, string(data)); err != nil {
		return fmt.Errorf("write event key: %w", err)
	}
	if err := s.medium.Set(MasterKey, key); err != nil {
		return fmt.Errorf("write master key: %w", err)
	}
	t := time.AfterFunc(eventTTL, func() {
		if err := s.medium.Delete(key); err != nil {
			log.Printf("bus: expire event key %s: %v", key, err)
		}
	})
	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.mu.Unlock()
	return nil
}

func (s *StorageTransport) Subscribe(fn func(Envelope)) (cancel func()) {
	// Deliver off the watcher's goroutine: storage change callbacks run
	// on the writer's stack, and a merge handler taking its tab's lock
	// there could deadlock two tabs publishing at once.
	queue := make(chan Envelope, 16)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case env := <-queue:
				fn(env)
			case <-done:
				return
			}
		}
	}()

	c := s.medium.Watch(MasterKey, func(eventKey string) {
		raw, ok := s.medium.Get(eventKey)
		if !ok {
			// Already expired; a delayed receiver simply misses it.
			return
		}
		var env Envelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			log.Printf("bus: bad envelope under %s: %v", eventKey, err)
			return
		}
		select {
		case queue <- env:
		default:
			log.Printf("bus: fallback subscriber backed up, dropping %s", env.Type)
		}
	})

	var once sync.Once
	cancel = func() {
		once.Do(func() {
			c()
			close(done)
		})
	}
	s.mu.Lock()
	s.cancels = append(s.cancels, cancel)
	s.mu.Unlock()
	return cancel
}

func (s *StorageTransport) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cancels {
		c()
	}
	s.cancels = nil
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}
